package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zombar/biasanalyzer/internal/models"
)

func TestFallbackRewrite(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category models.Category
		want     string
	}{
		{
			name:     "certainty adverb and adjective",
			text:     "Obviamente o resultado é Incrível.",
			category: models.LoadedLanguage,
			want:     "de acordo com os dados o resultado é relevante.",
		},
		{
			name:     "whole words only",
			text:     "Um avanço incrivelmente rápido.",
			category: models.HypeLanguage,
			want:     "Um avanço notavelmente rápido.",
		},
		{
			name:     "space delimited absolute",
			text:     "Ele sempre acerta e nunca erra.",
			category: models.MissingCounterpoint,
			want:     "Ele frequentemente acerta e raramente erra.",
		},
		{
			name:     "absolute at sentence start is kept",
			text:     "Sempre acerta.",
			category: models.MissingCounterpoint,
			want:     "Sempre acerta.",
		},
		{
			name:     "certainty phrase",
			text:     "É claro que funciona, sem dúvida.",
			category: models.OpinionAsFact,
			want:     "sugere que funciona, segundo análises.",
		},
		{
			name:     "emotional neutralization",
			text:     "Os números tiveram ganhos reais no período.",
			category: models.EmotionalLanguage,
			want:     "Os números registraram crescimento no período.",
		},
		{
			name:     "emotional neutralization needs category",
			text:     "Os números tiveram ganhos reais no período.",
			category: models.HypeLanguage,
			want:     "Os números tiveram ganhos reais no período.",
		},
		{
			name:     "loaded neutralization",
			text:     "Foi uma decisão polêmica do governo.",
			category: models.LoadedLanguage,
			want:     "Foi uma decisão que dividiu opiniões do governo.",
		},
		{
			name:     "nothing to replace",
			text:     "O relatório foi publicado ontem.",
			category: models.LoadedLanguage,
			want:     "O relatório foi publicado ontem.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackRewrite(tt.text, tt.category))
		})
	}
}

func TestFallbackSummary(t *testing.T) {
	empty := FallbackSummary("Robótica", NoBiasReport())
	assert.Contains(t, empty, "No significant bias")
	assert.Contains(t, empty, "Robótica")

	report := Aggregate([]models.Finding{
		finding(0, models.HypeLanguage, 0.6),
		finding(20, models.HypeLanguage, 0.7),
		finding(40, models.FearMongering, 0.8),
	})
	summary := FallbackSummary("Inteligência artificial", report)
	assert.Contains(t, summary, `"Inteligência artificial" found 3 passages`)
	assert.Contains(t, summary, "- 2 cases of hype language")
	assert.Contains(t, summary, "- 1 cases of fear-mongering")
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "base", Summarize("base", NoBiasReport()))

	f := finding(0, models.EmotionalLanguage, 0.6)
	f.Semantic = models.SemanticFeatures{SentimentPolarity: -0.5, Certainty: 0.25, Formality: 0.75}
	report := Aggregate([]models.Finding{f})

	out := Summarize("Resumo da análise.\n", report)
	assert.Contains(t, out, "Resumo da análise.\n\n**Quantitative metrics:**")
	assert.Contains(t, out, "- Mean sentiment polarity: -0.50 (-1 to 1)")
	assert.Contains(t, out, "- Mean certainty: 0.25 (0 to 1)")
	assert.Contains(t, out, "- Mean formality: 0.75 (0 to 1)")
	assert.Contains(t, out, "- emotionally charged language: 1 occurrence(s)")
}

func TestCategoryLabel(t *testing.T) {
	for _, c := range models.Categories() {
		if CategoryLabel(c) == "" {
			t.Errorf("category %s has no label", c)
		}
	}
	assert.Equal(t, "biased text", CategoryLabel(models.NumCategories))
}
