package analyzer

import (
	"fmt"
	"strings"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
)

var patternExplanations = [...]string{
	models.TechnologicalDeterminism: "Technological determinism detected: %s. Technology is presented as an inevitable force that will dictate change.",
	models.Anthropomorphism:         "Anthropomorphism detected: %s. Machines are described with human characteristics.",
	models.HypeLanguage:             "Hype language detected: %s. Exaggerated terms are used to promote the technology.",
	models.FearMongering:            "Fear-mongering detected: %s. The wording creates unwarranted fear about AI.",
	models.FalseCertainty:           "False certainty detected: %s. Categorical claims are made without adequate evidence.",
	models.LoadedLanguage:           "Loaded language detected: %s. These terms can steer the reader's perception.",
	models.SubjectiveTerms:          "Subjective indicators found: %s. They introduce uncertainty or personal opinion without a clear scientific basis.",
	models.OpinionAsFact:            "Categorical claims without cited evidence: %s. They may be opinions presented as facts.",
	models.EmotionalLanguage:        "Emotional language detected: %s. Emotionally charged terms can undermine objectivity.",
	models.MissingCounterpoint:      "Categorical statements detected: %s. They could benefit from counterpoints or nuance.",
}

var _ = [1]struct{}{}[len(patternExplanations)-int(models.NumCategories)]

// explain builds the explanation of a scored category from every signal
// source that fired, pattern first
func explain(sc CategoryScore, sem models.SemanticFeatures, syn models.SyntacticFeatures) string {
	var parts []string

	if len(sc.Pattern.Matches) > 0 && sc.Pattern.Confidence > 0 {
		parts = append(parts, fmt.Sprintf(patternExplanations[sc.Category], strings.Join(sc.Pattern.Matches, ", ")))
		if sc.Pattern.Discounted {
			parts = append(parts, "Confidence reduced for scientific context.")
		}
	}
	if sc.Frame > 0 && len(sc.Frames) > 0 {
		parts = append(parts, fmt.Sprintf("Rhetorical frames found: %s.", strings.Join(sc.Frames, "; ")))
	}
	if sc.Feature > 0 {
		parts = append(parts, featureExplanation(sc.Category, sem, syn))
	}
	return strings.Join(parts, " ")
}

func featureExplanation(c models.Category, sem models.SemanticFeatures, syn models.SyntacticFeatures) string {
	switch c {
	case models.LoadedLanguage:
		return fmt.Sprintf("High certainty (%.2f) combined with emotional intensity (%.2f).",
			sem.Certainty, sem.EmotionalIntensity)
	case models.SubjectiveTerms:
		return fmt.Sprintf("Subjectivity score %.2f, hedge word ratio %.2f.",
			sem.Subjectivity, syn.HedgeRatio)
	case models.EmotionalLanguage:
		return fmt.Sprintf("Emotional intensity %.2f, sentiment polarity %.2f.",
			sem.EmotionalIntensity, sem.SentimentPolarity)
	case models.OpinionAsFact:
		return fmt.Sprintf("Low formality (%.2f) with high certainty (%.2f).",
			sem.Formality, sem.Certainty)
	case models.MissingCounterpoint:
		return fmt.Sprintf("Low part-of-speech diversity (%.2f) with high certainty (%.2f).",
			syn.POSDiversity, sem.Certainty)
	}
	return ""
}

// suggestions returns rewrite advice for a segment
func suggestions(categories []models.Category, sem models.SemanticFeatures) []string {
	var out []string
	if sem.Certainty > 0.6 {
		out = append(out, "Add qualifiers such as 'segundo estudos', 'evidências sugerem' or 'de acordo com pesquisas'.")
	}
	if sem.EmotionalIntensity > 0.5 {
		out = append(out, "Replace emotionally charged terms with neutral, descriptive alternatives.")
	}
	if sem.Subjectivity > 0.4 {
		out = append(out, "Rephrase subjective statements to cite specific sources or evidence.")
	}
	for _, c := range categories {
		switch c {
		case models.MissingCounterpoint:
			out = append(out, "Include alternative perspectives or limitations of the technologies mentioned.")
		case models.OpinionAsFact:
			out = append(out, "Clearly separate verifiable facts from interpretation or opinion.")
		}
	}
	return out
}

// linguisticMarkers lists the lexicon words found in a segment
func (a *Analyzer) linguisticMarkers(lower string) map[string][]string {
	lex := a.lex
	groups := map[string][][]string{
		"certainty": {
			lex.Group(lexicon.GroupCertaintyHigh),
			lex.Group(lexicon.GroupCertaintyMedium),
			lex.Group(lexicon.GroupCertaintyLow),
		},
		"emotional": {
			lex.Group(lexicon.GroupPositiveExtreme),
			lex.Group(lexicon.GroupPositiveModerate),
			lex.Group(lexicon.GroupNegativeExtreme),
			lex.Group(lexicon.GroupNegativeModerate),
		},
		"hedge":        {lex.Group(lexicon.GroupHedges)},
		"intensifiers": {lex.Group(lexicon.GroupIntensifiers)},
	}

	out := make(map[string][]string)
	for name, lists := range groups {
		var found []string
		for _, list := range lists {
			found = append(found, findTerms(lower, list)...)
		}
		if len(found) > 0 {
			out[name] = dedupeStrings(found)
		}
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
