package analyzer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
)

// Reporting thresholds. A category is reported only when its combined
// score is strictly greater than its threshold.
const (
	defaultThreshold      = 0.3
	loadedThreshold       = 0.4
	subjectiveThreshold   = 0.4
	opinionThreshold      = 0.5
	counterpointThreshold = defaultThreshold

	// polarityTrigger is the mean absolute domain polarity above which the
	// polarity itself counts as loaded language
	polarityTrigger = 0.3
)

// featureRule derives a category score from the feature vectors
type featureRule func(sem models.SemanticFeatures, syn models.SyntacticFeatures) float64

// categoryRule is the dispatch entry of one category
type categoryRule struct {
	threshold   float64
	feature     featureRule
	whitelisted bool // whitelist hits remove the category from every source
	minLength   int  // rune length the sentence must exceed, 0 for none
}

var categoryRules = [...]categoryRule{
	models.TechnologicalDeterminism: {threshold: defaultThreshold},
	models.Anthropomorphism:         {threshold: defaultThreshold},
	models.HypeLanguage:             {threshold: defaultThreshold},
	models.FearMongering:            {threshold: defaultThreshold},
	models.FalseCertainty:           {threshold: defaultThreshold},
	models.LoadedLanguage:           {threshold: loadedThreshold, feature: loadedFeature, whitelisted: true},
	models.SubjectiveTerms:          {threshold: subjectiveThreshold, feature: subjectivityFeature},
	models.OpinionAsFact:            {threshold: opinionThreshold, feature: opinionFeature},
	models.EmotionalLanguage:        {threshold: defaultThreshold, feature: emotionFeature},
	models.MissingCounterpoint:      {threshold: counterpointThreshold, feature: counterpointFeature, minLength: counterpointMinLength},
}

// Adding a category without a rule fails to compile here.
var _ = [1]struct{}{}[len(categoryRules)-int(models.NumCategories)]

func loadedFeature(sem models.SemanticFeatures, _ models.SyntacticFeatures) float64 {
	if sem.Certainty > 0.4 && sem.EmotionalIntensity > 0.2 {
		return sem.Certainty * sem.EmotionalIntensity
	}
	return 0
}

func subjectivityFeature(sem models.SemanticFeatures, _ models.SyntacticFeatures) float64 {
	if sem.Subjectivity > 0.3 {
		return sem.Subjectivity
	}
	return 0
}

func opinionFeature(sem models.SemanticFeatures, _ models.SyntacticFeatures) float64 {
	if sem.Formality < 0.4 && sem.Certainty > 0.5 {
		return 1 - sem.Formality
	}
	return 0
}

func emotionFeature(sem models.SemanticFeatures, _ models.SyntacticFeatures) float64 {
	if sem.EmotionalIntensity > 0.3 {
		return sem.EmotionalIntensity
	}
	return 0
}

func counterpointFeature(sem models.SemanticFeatures, syn models.SyntacticFeatures) float64 {
	if syn.Annotated && syn.POSDiversity < 0.4 && sem.Certainty > 0.4 {
		return sem.Certainty
	}
	return 0
}

// frameIncrement is the score a rhetorical frame hit adds to a category
type frameIncrement struct {
	category models.Category
	amount   float64
}

var frameIncrements = map[string][]frameIncrement{
	lexicon.FrameTechnologicalDeterminism: {
		{models.TechnologicalDeterminism, 0.4},
		{models.LoadedLanguage, 0.4},
	},
	lexicon.FrameAnthropomorphism: {
		{models.Anthropomorphism, 0.5},
		{models.OpinionAsFact, 0.5},
	},
	lexicon.FrameFearMongering: {
		{models.FearMongering, 0.6},
		{models.EmotionalLanguage, 0.6},
	},
	lexicon.FrameHypeLanguage: {
		{models.HypeLanguage, 0.5},
		{models.LoadedLanguage, 0.5},
	},
	lexicon.FramePoliticalBias: {
		{models.OpinionAsFact, 0.4},
	},
	lexicon.FrameAbsoluteLanguage: {
		{models.LoadedLanguage, 0.25},
	},
	lexicon.FrameEmotionalAppeals: {
		{models.EmotionalLanguage, 0.35},
	},
}

// ErrNonFiniteScore is wrapped by RuleError when a rule produces NaN or Inf
var ErrNonFiniteScore = errors.New("non-finite score")

// ErrRulePanic is the cause of a RuleError for a rule that panicked
var ErrRulePanic = errors.New("rule panicked")

// RuleError reports a failed category rule. The category is left out of the
// segment's results; the rest of the analysis continues.
type RuleError struct {
	Category models.Category
	Err      error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Category, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// CategoryScore is a category that passed its reporting threshold
type CategoryScore struct {
	Category   models.Category
	Confidence float64

	Pattern MatchResult
	Frame   float64
	Feature float64
	Frames  []string // "frame: phrase" hits that fed this category
}

// frameSignals holds the frame and polarity contributions of one sentence
type frameSignals struct {
	scores [models.NumCategories]float64
	hits   [models.NumCategories][]string
}

// Scorer merges pattern, frame and feature signals into category scores
type Scorer struct {
	lex     *lexicon.Store
	matcher *Matcher
}

// NewScorer creates a scorer over the lexicon and matcher
func NewScorer(lex *lexicon.Store, matcher *Matcher) *Scorer {
	return &Scorer{lex: lex, matcher: matcher}
}

// Score evaluates every category for a sentence. Categories whose rule
// failed are returned as errors instead of scores.
func (s *Scorer) Score(sentence string, sem models.SemanticFeatures, syn models.SyntacticFeatures) ([]CategoryScore, []*RuleError) {
	lower := strings.ToLower(sentence)
	frames := s.frameSignals(lower)
	length := utf8.RuneCountInString(strings.TrimSpace(sentence))

	var scores []CategoryScore
	var errs []*RuleError
	for _, c := range models.Categories() {
		score, err := s.scoreCategory(c, sentence, length, frames, sem, syn)
		if err != nil {
			errs = append(errs, &RuleError{Category: c, Err: err})
			continue
		}
		if score.Confidence > categoryRules[c].threshold {
			scores = append(scores, score)
		}
	}
	return scores, errs
}

func (s *Scorer) scoreCategory(c models.Category, sentence string, length int, frames frameSignals,
	sem models.SemanticFeatures, syn models.SyntacticFeatures) (score CategoryScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = CategoryScore{Category: c}, fmt.Errorf("%w: %v", ErrRulePanic, r)
		}
	}()

	rule := categoryRules[c]
	score = CategoryScore{Category: c}

	if rule.minLength > 0 && length <= rule.minLength {
		return score, nil
	}

	score.Pattern = s.matcher.Match(sentence, c)
	if rule.whitelisted && score.Pattern.Whitelisted {
		return score, nil
	}

	score.Frame = frames.scores[c]
	score.Frames = frames.hits[c]
	if rule.feature != nil {
		score.Feature = rule.feature(sem, syn)
	}

	for _, v := range []float64{score.Pattern.Confidence, score.Frame, score.Feature} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return CategoryScore{Category: c}, ErrNonFiniteScore
		}
	}

	score.Confidence = min(max(score.Pattern.Confidence, score.Frame, score.Feature), 1.0)
	return score, nil
}

func (s *Scorer) frameSignals(lower string) frameSignals {
	var sig frameSignals

	for _, frame := range s.lex.Frames() {
		for _, phrase := range frame.Phrases {
			if !hasTerm(lower, phrase) {
				continue
			}
			for _, inc := range frameIncrements[frame.Name] {
				sig.scores[inc.category] += inc.amount
				sig.hits[inc.category] = append(sig.hits[inc.category], frame.Name+": "+phrase)
			}
		}
	}

	var polaritySum float64
	terms := 0
	for _, p := range s.lex.Polarity() {
		if hasTerm(lower, p.Term) {
			polaritySum += math.Abs(p.Polarity)
			terms++
		}
	}
	if terms > 0 {
		if avg := polaritySum / float64(terms); avg > polarityTrigger {
			sig.scores[models.LoadedLanguage] += avg
			sig.hits[models.LoadedLanguage] = append(sig.hits[models.LoadedLanguage],
				fmt.Sprintf("domain polarity: %.2f", avg))
		}
	}

	for c := range sig.scores {
		sig.scores[c] = min(sig.scores[c], 1.0)
	}
	return sig
}
