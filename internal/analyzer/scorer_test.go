package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
)

func newTestScorer(t *testing.T) (*Scorer, *FeatureExtractor) {
	t.Helper()
	lex := lexicon.Default()
	m, err := NewMatcher(lex)
	require.NoError(t, err)
	return NewScorer(lex, m), NewFeatureExtractor(lex, nil, nil)
}

func scoreOf(scores []CategoryScore, c models.Category) (CategoryScore, bool) {
	for _, sc := range scores {
		if sc.Category == c {
			return sc, true
		}
	}
	return CategoryScore{}, false
}

func TestScoreDeterministicClaim(t *testing.T) {
	s, fe := newTestScorer(t)
	sentence := "A IA certamente vai dominar tudo e substituirá todos os empregos."
	sem := fe.Semantic(context.Background(), sentence, nil)

	scores, errs := s.Score(sentence, sem, fe.Syntactic(nil))
	require.Empty(t, errs)

	want := map[models.Category]float64{
		models.TechnologicalDeterminism: 0.7,
		models.LoadedLanguage:           0.55,
		models.MissingCounterpoint:      0.55,
	}
	require.Len(t, scores, len(want))
	for c, conf := range want {
		sc, ok := scoreOf(scores, c)
		if !ok {
			t.Errorf("missing %s score", c)
			continue
		}
		assert.InDelta(t, conf, sc.Confidence, 1e-9, "category %s", c)
	}

	// evaluation order is the category order
	for i := 1; i < len(scores); i++ {
		if scores[i-1].Category >= scores[i].Category {
			t.Errorf("scores out of order: %s before %s", scores[i-1].Category, scores[i].Category)
		}
	}
}

func TestScoreFrames(t *testing.T) {
	s, fe := newTestScorer(t)
	sentence := "Trata-se de uma ameaça existencial para o emprego."
	sem := fe.Semantic(context.Background(), sentence, nil)

	scores, _ := s.Score(sentence, sem, fe.Syntactic(nil))

	fear, ok := scoreOf(scores, models.FearMongering)
	require.True(t, ok)
	assert.InDelta(t, 0.85, fear.Confidence, 1e-9)
	assert.InDelta(t, 0.6, fear.Frame, 1e-9)

	emotional, ok := scoreOf(scores, models.EmotionalLanguage)
	require.True(t, ok, "fear frame should feed emotional language")
	assert.InDelta(t, 0.6, emotional.Confidence, 1e-9)
	assert.Contains(t, emotional.Frames, lexicon.FrameFearMongering+": ameaça existencial")
}

func TestScorePolarity(t *testing.T) {
	s, fe := newTestScorer(t)

	tests := []struct {
		name     string
		sentence string
		reported bool
		want     float64
	}{
		// mean polarity 0.4 equals the loaded threshold and is not reported
		{"at threshold", "Houve uma melhoria clara no processo de produção.", false, 0},
		{"with absolute frame", "Sempre existe viés e falha nos sistemas atuais.", true, 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem := fe.Semantic(context.Background(), tt.sentence, nil)
			scores, _ := s.Score(tt.sentence, sem, fe.Syntactic(nil))
			sc, ok := scoreOf(scores, models.LoadedLanguage)
			if ok != tt.reported {
				t.Fatalf("loaded language reported = %v, want %v", ok, tt.reported)
			}
			if ok {
				assert.InDelta(t, tt.want, sc.Confidence, 1e-9)
				assert.Contains(t, sc.Frames, "domain polarity: 0.40")
			}
		})
	}
}

func TestScoreWhitelistSuppressesLoadedLanguage(t *testing.T) {
	s, fe := newTestScorer(t)
	// "sempre" fires the absolute-language frame, the whitelist must still win
	sentence := "O estudo mostra uma forte correlação e sempre vai mudar."
	sem := fe.Semantic(context.Background(), sentence, nil)

	scores, _ := s.Score(sentence, sem, fe.Syntactic(nil))
	if _, ok := scoreOf(scores, models.LoadedLanguage); ok {
		t.Error("whitelisted sentence must not report loaded language")
	}
}

func TestScoreFeatureRules(t *testing.T) {
	s, _ := newTestScorer(t)
	sentence := "Uma frase qualquer sem marcadores."

	tests := []struct {
		name     string
		sem      models.SemanticFeatures
		syn      models.SyntacticFeatures
		category models.Category
		want     float64
	}{
		{
			name:     "opinion from informal certainty",
			sem:      models.SemanticFeatures{Formality: 0, Certainty: 0.6},
			category: models.OpinionAsFact,
			want:     1.0,
		},
		{
			name:     "opinion needs low formality",
			sem:      models.SemanticFeatures{Formality: 0.5, Certainty: 0.9},
			category: models.OpinionAsFact,
		},
		{
			name:     "emotion from intensity",
			sem:      models.SemanticFeatures{EmotionalIntensity: 0.7},
			category: models.EmotionalLanguage,
			want:     0.7,
		},
		{
			name:     "subjectivity above threshold",
			sem:      models.SemanticFeatures{Subjectivity: 0.5},
			category: models.SubjectiveTerms,
			want:     0.5,
		},
		{
			name:     "subjectivity at threshold",
			sem:      models.SemanticFeatures{Subjectivity: 0.4},
			category: models.SubjectiveTerms,
		},
		{
			name:     "loaded from certainty and emotion",
			sem:      models.SemanticFeatures{Certainty: 0.9, EmotionalIntensity: 0.6},
			category: models.LoadedLanguage,
			want:     0.54,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, errs := s.Score(sentence, tt.sem, tt.syn)
			require.Empty(t, errs)
			sc, ok := scoreOf(scores, tt.category)
			if tt.want == 0 {
				assert.False(t, ok, "unexpected %s score %v", tt.category, sc.Confidence)
				return
			}
			require.True(t, ok)
			assert.InDelta(t, tt.want, sc.Confidence, 1e-9)
			assert.InDelta(t, tt.want, sc.Feature, 1e-9)
		})
	}
}

func TestCounterpointFeatureNeedsAnnotation(t *testing.T) {
	s, _ := newTestScorer(t)
	sentence := "Esta frase longa descreve uma situação comum do cotidiano sem qualquer marcador relevante."
	sem := models.SemanticFeatures{Certainty: 0.9}

	scores, _ := s.Score(sentence, sem, models.SyntacticFeatures{POSDiversity: 0.1})
	if _, ok := scoreOf(scores, models.MissingCounterpoint); ok {
		t.Error("unannotated syntax must not trigger the counterpoint rule")
	}

	scores, _ = s.Score(sentence, sem, models.SyntacticFeatures{POSDiversity: 0.1, Annotated: true})
	sc, ok := scoreOf(scores, models.MissingCounterpoint)
	require.True(t, ok)
	assert.InDelta(t, 0.9, sc.Confidence, 1e-9)
}

func TestScoreNonFinite(t *testing.T) {
	s, _ := newTestScorer(t)
	sem := models.SemanticFeatures{EmotionalIntensity: math.Inf(1)}

	scores, errs := s.Score("Uma frase qualquer sem marcadores.", sem, models.SyntacticFeatures{})
	require.Len(t, errs, 1)
	assert.Equal(t, models.EmotionalLanguage, errs[0].Category)
	assert.True(t, errors.Is(errs[0], ErrNonFiniteScore))

	if _, ok := scoreOf(scores, models.EmotionalLanguage); ok {
		t.Error("failed rule must not produce a score")
	}
}

func TestScoreRulePanic(t *testing.T) {
	s, _ := newTestScorer(t)

	saved := categoryRules[models.EmotionalLanguage]
	t.Cleanup(func() { categoryRules[models.EmotionalLanguage] = saved })
	categoryRules[models.EmotionalLanguage].feature = func(models.SemanticFeatures, models.SyntacticFeatures) float64 {
		panic("broken rule")
	}

	scores, errs := s.Score("A IA substituirá todos os empregos.", models.SemanticFeatures{}, models.SyntacticFeatures{})
	require.Len(t, errs, 1)
	assert.Equal(t, models.EmotionalLanguage, errs[0].Category)
	assert.True(t, errors.Is(errs[0], ErrRulePanic))
	assert.Contains(t, errs[0].Error(), "broken rule")

	if _, ok := scoreOf(scores, models.EmotionalLanguage); ok {
		t.Error("panicking rule must not produce a score")
	}
	_, ok := scoreOf(scores, models.TechnologicalDeterminism)
	assert.True(t, ok, "other categories are still scored")
}

func TestCalibrationValues(t *testing.T) {
	tests := []struct {
		category models.Category
		want     calibration
	}{
		{models.TechnologicalDeterminism, calibration{0.40, 0.30, 1.0}},
		{models.FearMongering, calibration{0.45, 0.40, 1.0}},
		{models.SubjectiveTerms, calibration{0.20, 0.30, 0.85}},
		{models.OpinionAsFact, calibration{0.30, 0.40, 0.90}},
		{models.MissingCounterpoint, calibration{0.20, 0.35, 0.85}},
	}
	for _, tt := range tests {
		if got := patternCalibration[tt.category]; got != tt.want {
			t.Errorf("%s calibration = %+v, want %+v", tt.category, got, tt.want)
		}
	}
}
