package analyzer

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/nlp"
)

// Feature scaling constants, tuned alongside the pattern calibration
const (
	subjectivityScale = 15.0
	emotionScale      = 10.0
	certaintyScale    = 8.0

	subjectiveVerbWeight      = 2.0
	subjectiveAdjectiveWeight = 1.5
	hedgeAdverbWeight         = 1.0
	superlativeWeight         = 1.0

	extremeEmotionWeight  = 3.0
	moderateEmotionWeight = 1.5

	highCertaintyWeight   = 5.0
	mediumCertaintyWeight = 3.0
	lowCertaintyWeight    = 1.0

	formalConnectiveWeight = 2.0
	formalWordMinRunes     = 6

	// neutralFormality is returned when no formality marker is found or no
	// annotation is available
	neutralFormality = 0.5

	// maxDependencyDepth bounds governor-chain walks on ill-formed parses
	maxDependencyDepth = 20
)

// FeatureExtractor computes semantic and syntactic feature vectors
type FeatureExtractor struct {
	lex       *lexicon.Store
	sentiment nlp.SentimentClassifier
	logger    *slog.Logger

	subjectiveVerbs wordSet
	subjectiveAdjs  wordSet
	hedges          wordSet
	intensifiers    wordSet
	modals          wordSet
	formal          wordSet
	informal        wordSet
}

// NewFeatureExtractor builds an extractor over the lexicon. sentiment may be nil.
func NewFeatureExtractor(lex *lexicon.Store, sentiment nlp.SentimentClassifier, logger *slog.Logger) *FeatureExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureExtractor{
		lex:             lex,
		sentiment:       sentiment,
		logger:          logger,
		subjectiveVerbs: newWordSet(lex.Group(lexicon.GroupSubjectiveVerbs)),
		subjectiveAdjs:  newWordSet(lex.Group(lexicon.GroupSubjectiveAdjectives)),
		hedges:          newWordSet(lex.Group(lexicon.GroupHedges)),
		intensifiers:    newWordSet(lex.Group(lexicon.GroupIntensifiers)),
		modals:          newWordSet(lex.Group(lexicon.GroupModals)),
		formal:          newWordSet(lex.Group(lexicon.GroupFormalConnectives)),
		informal:        newWordSet(lex.Group(lexicon.GroupInformalMarkers)),
	}
}

// Semantic computes the semantic feature vector of a sentence. tokens may be
// nil when no annotation is available. Without a sentiment classifier the
// sentiment fields are 0, and without tokens formality is the neutral 0.5.
// Subjectivity is the exception: without tokens it is estimated from the
// same lexical classes matched on surface words, not set to a constant.
func (f *FeatureExtractor) Semantic(ctx context.Context, text string, tokens []nlp.Token) models.SemanticFeatures {
	lower := strings.ToLower(text)
	polarity, confidence := f.sentimentOf(ctx, text)

	return models.SemanticFeatures{
		SentimentPolarity:   polarity,
		SentimentConfidence: confidence,
		Subjectivity:        f.subjectivity(lower, tokens),
		EmotionalIntensity:  f.emotionalIntensity(lower, wordCount(text)),
		Certainty:           f.certainty(lower, wordCount(text)),
		Formality:           f.formality(tokens),
	}
}

func (f *FeatureExtractor) sentimentOf(ctx context.Context, text string) (float64, float64) {
	if f.sentiment == nil {
		return 0, 0
	}
	s, err := f.sentiment.Classify(ctx, text)
	if err != nil {
		f.logger.Debug("sentiment capability unavailable", "error", err)
		return 0, 0
	}
	score := clamp01(s.Score)
	if s.Positive() {
		return score, score
	}
	return -score, score
}

func (f *FeatureExtractor) subjectivity(lower string, tokens []nlp.Token) float64 {
	var markers float64
	total := 0

	if len(tokens) == 0 {
		// Surface estimate: same lexical classes, no part-of-speech constraints
		for _, w := range surfaceWords(lower) {
			total++
			if f.subjectiveVerbs.has(w) {
				markers += subjectiveVerbWeight
			}
			if f.subjectiveAdjs.has(w) {
				markers += subjectiveAdjectiveWeight
			}
			if f.hedges.has(w) {
				markers += hedgeAdverbWeight
			}
			if isSuperlative(w) {
				markers += superlativeWeight
			}
		}
	} else {
		for _, tok := range tokens {
			if tok.IsSpace {
				continue
			}
			total++
			lemma := strings.ToLower(tok.Lemma)
			if f.subjectiveVerbs.has(lemma) {
				markers += subjectiveVerbWeight
			}
			if f.subjectiveAdjs.has(lemma) {
				markers += subjectiveAdjectiveWeight
			}
			if tok.POS == "ADV" && f.hedges.has(lemma) {
				markers += hedgeAdverbWeight
			}
			if tok.POS == "ADJ" && isSuperlative(strings.ToLower(tok.Text)) {
				markers += superlativeWeight
			}
		}
	}

	if total == 0 {
		return 0
	}
	return clamp01(markers / float64(total) * subjectivityScale)
}

func isSuperlative(word string) bool {
	return strings.Contains(word, "íssimo") || strings.Contains(word, "érrimo")
}

func (f *FeatureExtractor) emotionalIntensity(lower string, words int) float64 {
	var weight float64
	for _, g := range []struct {
		group  string
		weight float64
	}{
		{lexicon.GroupPositiveExtreme, extremeEmotionWeight},
		{lexicon.GroupPositiveModerate, moderateEmotionWeight},
		{lexicon.GroupNegativeExtreme, extremeEmotionWeight},
		{lexicon.GroupNegativeModerate, moderateEmotionWeight},
	} {
		weight += float64(len(findTerms(lower, f.lex.Group(g.group)))) * g.weight
	}
	return clamp01(weight / float64(max(words, 1)) * emotionScale)
}

func (f *FeatureExtractor) certainty(lower string, words int) float64 {
	var weight float64
	weight += float64(len(findTerms(lower, f.lex.Group(lexicon.GroupCertaintyHigh)))) * highCertaintyWeight
	weight += float64(len(findTerms(lower, f.lex.Group(lexicon.GroupCertaintyMedium)))) * mediumCertaintyWeight
	weight += float64(len(findTerms(lower, f.lex.Group(lexicon.GroupCertaintyLow)))) * lowCertaintyWeight
	return clamp01(weight / float64(max(words, 1)) * certaintyScale)
}

func (f *FeatureExtractor) formality(tokens []nlp.Token) float64 {
	var formal, informal float64
	for _, tok := range tokens {
		lemma := strings.ToLower(tok.Lemma)
		if (tok.POS == "NOUN" || tok.POS == "ADJ") && utf8.RuneCountInString(tok.Text) > formalWordMinRunes {
			formal++
		}
		if f.formal.has(lemma) {
			formal += formalConnectiveWeight
		}
		if f.informal.has(lemma) {
			informal++
		}
	}
	if formal+informal == 0 {
		return neutralFormality
	}
	return formal / (formal + informal)
}

// Syntactic computes the syntactic feature vector from annotated tokens.
// Without tokens it returns the zero vector with Annotated unset.
func (f *FeatureExtractor) Syntactic(tokens []nlp.Token) models.SyntacticFeatures {
	if len(tokens) == 0 {
		return models.SyntacticFeatures{}
	}

	var depthSum float64
	posTags := make(map[string]bool)
	nonSpace, verbs, modals, passives, hedges, intensifiers := 0, 0, 0, 0, 0, 0

	for i, tok := range tokens {
		depthSum += float64(dependencyDepth(tokens, i))

		lemma := strings.ToLower(tok.Lemma)
		if !tok.IsSpace {
			nonSpace++
			posTags[tok.POS] = true
		}
		if tok.POS == "VERB" {
			verbs++
		}
		if f.modals.has(lemma) {
			modals++
		}
		if tok.Voice == "Pass" {
			passives++
		}
		if f.hedges.has(lemma) {
			hedges++
		}
		if f.intensifiers.has(lemma) {
			intensifiers++
		}
	}

	return models.SyntacticFeatures{
		DependencyComplexity: depthSum / float64(len(tokens)),
		POSDiversity:         ratio(len(posTags), nonSpace),
		ModalRatio:           ratio(modals, verbs),
		PassiveRatio:         ratio(passives, verbs),
		HedgeRatio:           ratio(hedges, len(tokens)),
		IntensifierRatio:     ratio(intensifiers, len(tokens)),
		Annotated:            true,
	}
}

// dependencyDepth walks the governor chain of token i until the root
func dependencyDepth(tokens []nlp.Token, i int) int {
	depth := 0
	for cur := i; depth < maxDependencyDepth; depth++ {
		head := tokens[cur].Head
		if head == cur || head < 0 || head >= len(tokens) {
			break
		}
		cur = head
	}
	return depth
}

// ratio divides n by d (at least 1) and clamps to [0, 1]
func ratio(n, d int) float64 {
	return clamp01(float64(n) / float64(max(d, 1)))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
