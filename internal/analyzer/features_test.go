package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/nlp"
)

type fakeSentiment struct {
	result nlp.Sentiment
	err    error
}

func (f fakeSentiment) Classify(ctx context.Context, text string) (nlp.Sentiment, error) {
	return f.result, f.err
}

func TestSemanticWithoutCapabilities(t *testing.T) {
	fe := NewFeatureExtractor(lexicon.Default(), nil, nil)
	sem := fe.Semantic(context.Background(), "A IA certamente vai dominar tudo e substituirá todos os empregos.", nil)

	assert.Equal(t, 1.0, sem.Certainty)
	assert.Equal(t, 0.0, sem.SentimentPolarity)
	assert.Equal(t, 0.0, sem.SentimentConfidence)
	assert.Equal(t, neutralFormality, sem.Formality)
	assert.Equal(t, 0.0, sem.EmotionalIntensity)
}

func TestSemanticSentiment(t *testing.T) {
	tests := []struct {
		name       string
		classifier nlp.SentimentClassifier
		polarity   float64
		confidence float64
	}{
		{"positive", fakeSentiment{result: nlp.Sentiment{Label: "POSITIVE", Score: 0.9}}, 0.9, 0.9},
		{"negative", fakeSentiment{result: nlp.Sentiment{Label: "NEGATIVE", Score: 0.8}}, -0.8, 0.8},
		{"portuguese label", fakeSentiment{result: nlp.Sentiment{Label: "positivo", Score: 0.6}}, 0.6, 0.6},
		{"score clamped", fakeSentiment{result: nlp.Sentiment{Label: "pos", Score: 1.7}}, 1.0, 1.0},
		{"classifier error", fakeSentiment{err: errors.New("unavailable")}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := NewFeatureExtractor(lexicon.Default(), tt.classifier, nil)
			sem := fe.Semantic(context.Background(), "O sistema foi lançado ontem.", nil)
			assert.InDelta(t, tt.polarity, sem.SentimentPolarity, 1e-9)
			assert.InDelta(t, tt.confidence, sem.SentimentConfidence, 1e-9)
		})
	}
}

func TestEmotionalIntensity(t *testing.T) {
	fe := NewFeatureExtractor(lexicon.Default(), nil, nil)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"extreme terms", "Um resultado terrível e horrível.", 1.0},
		{"neutral", "O relatório foi publicado na segunda-feira.", 0},
		// one moderate term over ten words: 1.5 / 10 * 10, clamped
		{"moderate term", "O relatório descreve um caso problemático ocorrido na cidade vizinha.", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem := fe.Semantic(context.Background(), tt.text, nil)
			assert.InDelta(t, tt.want, sem.EmotionalIntensity, 1e-9)
		})
	}
}

func TestSubjectivitySurfaceFallback(t *testing.T) {
	fe := NewFeatureExtractor(lexicon.Default(), nil, nil)

	sem := fe.Semantic(context.Background(), "Acredito que o resultado é incrível", nil)
	if sem.Subjectivity != 1.0 {
		t.Errorf("expected clamped subjectivity 1.0, got %v", sem.Subjectivity)
	}

	// the other annotation-dependent feature keeps its neutral default
	assert.Equal(t, neutralFormality, sem.Formality)

	sem = fe.Semantic(context.Background(), "O relatório foi publicado na segunda-feira.", nil)
	if sem.Subjectivity != 0 {
		t.Errorf("expected zero subjectivity, got %v", sem.Subjectivity)
	}
}

func TestSubjectivityWithTokens(t *testing.T) {
	fe := NewFeatureExtractor(lexicon.Default(), nil, nil)
	tokens := []nlp.Token{
		{Text: "Eu", Lemma: "eu", POS: "PRON", Head: 1},
		{Text: "acredito", Lemma: "acreditar", POS: "VERB", Head: 1},
		{Text: "nisso", Lemma: "nisso", POS: "PRON", Head: 1},
		{Text: " ", Lemma: " ", POS: "SPACE", Head: 1, IsSpace: true},
	}

	// one subjective verb over three non-space tokens: 2 / 3 * 15, clamped
	sem := fe.Semantic(context.Background(), "Eu acredito nisso ", tokens)
	assert.Equal(t, 1.0, sem.Subjectivity)
}

func TestFormality(t *testing.T) {
	fe := NewFeatureExtractor(lexicon.Default(), nil, nil)

	tests := []struct {
		name   string
		tokens []nlp.Token
		want   float64
	}{
		{"no tokens", nil, neutralFormality},
		{"no markers", []nlp.Token{{Text: "foi", Lemma: "ser", POS: "AUX"}}, neutralFormality},
		{
			name: "connective and informal marker",
			tokens: []nlp.Token{
				{Text: "contudo", Lemma: "contudo", POS: "CCONJ"},
				{Text: "né", Lemma: "né", POS: "INTJ"},
			},
			want: 2.0 / 3.0,
		},
		{
			name: "long nouns",
			tokens: []nlp.Token{
				{Text: "metodologia", Lemma: "metodologia", POS: "NOUN"},
				{Text: "bem", Lemma: "bem", POS: "ADV"},
			},
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem := fe.Semantic(context.Background(), "texto", tt.tokens)
			assert.InDelta(t, tt.want, sem.Formality, 1e-9)
		})
	}
}

func TestSyntactic(t *testing.T) {
	fe := NewFeatureExtractor(lexicon.Default(), nil, nil)

	t.Run("no annotation", func(t *testing.T) {
		syn := fe.Syntactic(nil)
		assert.Equal(t, models.SyntacticFeatures{}, syn)
		assert.False(t, syn.Annotated)
	})

	t.Run("annotated sentence", func(t *testing.T) {
		tokens := []nlp.Token{
			{Text: "O", Lemma: "o", POS: "DET", Head: 1},
			{Text: "modelo", Lemma: "modelo", POS: "NOUN", Head: 3},
			{Text: "pode", Lemma: "pode", POS: "AUX", Head: 3},
			{Text: "ser", Lemma: "ser", POS: "VERB", Head: 3},
			{Text: "treinado", Lemma: "treinar", POS: "VERB", Voice: "Pass", Head: 3},
		}
		syn := fe.Syntactic(tokens)

		assert.True(t, syn.Annotated)
		assert.InDelta(t, 1.0, syn.DependencyComplexity, 1e-9)
		assert.InDelta(t, 0.8, syn.POSDiversity, 1e-9)
		assert.InDelta(t, 0.5, syn.ModalRatio, 1e-9)
		assert.InDelta(t, 0.5, syn.PassiveRatio, 1e-9)
		assert.Equal(t, 0.0, syn.HedgeRatio)
		assert.Equal(t, 0.0, syn.IntensifierRatio)
	})

	t.Run("no verbs", func(t *testing.T) {
		tokens := []nlp.Token{
			{Text: "muito", Lemma: "muito", POS: "ADV", Head: 0},
		}
		syn := fe.Syntactic(tokens)
		assert.Equal(t, 0.0, syn.ModalRatio)
		assert.Equal(t, 1.0, syn.IntensifierRatio)
	})
}

func TestDependencyDepthBounded(t *testing.T) {
	cyclic := []nlp.Token{
		{Text: "a", Head: 1},
		{Text: "b", Head: 0},
	}
	if got := dependencyDepth(cyclic, 0); got != maxDependencyDepth {
		t.Errorf("expected depth capped at %d, got %d", maxDependencyDepth, got)
	}

	outOfRange := []nlp.Token{{Text: "a", Head: 7}}
	if got := dependencyDepth(outOfRange, 0); got != 0 {
		t.Errorf("expected depth 0 for invalid head, got %d", got)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.4, 0.4},
		{3, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
