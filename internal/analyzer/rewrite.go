package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zombar/biasanalyzer/internal/models"
)

type substitution struct {
	from, to string
}

// fallbackSubstitutions are applied in order. Entries delimited by spaces are
// replaced literally; all others match whole words, ignoring case.
var fallbackSubstitutions = []substitution{
	// certainty adverbs
	{"obviamente", "de acordo com os dados"},
	{"claramente", "conforme observado"},
	{"certamente", "segundo evidências"},
	{"definitivamente", "com base em"},
	{"absolutamente", "segundo análises"},

	// exaggerated adjectives
	{"revolucionário", "inovador"},
	{"extraordinário", "notável"},
	{"fantástico", "significativo"},
	{"incrível", "relevante"},
	{"terrível", "problemático"},
	{"horrível", "inadequado"},

	// intensifiers
	{"significativamente", "de forma considerável"},
	{"drasticamente", "de maneira acentuada"},
	{"extremamente", "muito"},
	{"tremendamente", "consideravelmente"},
	{"incrivelmente", "notavelmente"},

	// judgement
	{"controverso", "objeto de debate"},
	{"polêmico", "que gera discussão"},
	{"questionável", "passível de análise"},
	{"duvidoso", "incerto"},
	{"suspeito", "que requer verificação"},

	// absolutes, only mid-sentence
	{" sempre ", " frequentemente "},
	{" nunca ", " raramente "},
	{" todos ", " a maioria dos "},
	{" ninguém ", " poucos "},
	{" completamente ", " amplamente "},
	{" totalmente ", " substancialmente "},

	// opinion markers
	{"deve ser", "pode ser considerado"},
	{"precisa ser", "seria recomendável que seja"},
	{"é essencial", "é considerado importante"},
	{"é fundamental", "é relevante"},

	// certainty phrases
	{"sem dúvida", "segundo análises"},
	{"com certeza", "provavelmente"},
	{"é óbvio que", "indica que"},
	{"é claro que", "sugere que"},
}

var emotionalNeutralizations = []substitution{
	{"caíram significativamente", "apresentaram redução"},
	{"tiveram ganhos reais", "registraram crescimento"},
	{"se expandiram", "aumentaram"},
	{"melhorias significativas", "melhorias observadas"},
	{"avanços consideráveis", "progressos registrados"},
	{"progressos extraordinários", "progressos notáveis"},
}

var loadedNeutralizations = []substitution{
	{"em um julgamento controverso", "em um julgamento que gerou debate"},
	{"operação controversa", "operação que foi objeto de discussão"},
	{"decisão polêmica", "decisão que dividiu opiniões"},
	{"medida questionável", "medida que gerou questionamentos"},
	{"atitude suspeita", "atitude que levantou questões"},
	{"completamente inadequado", "inadequado"},
	{"totalmente inaceitável", "inaceitável"},
	{"absolutamente necessário", "necessário"},
}

type compiledSubstitution struct {
	literal string
	re      pattern
	bounded bool
	to      string
}

var (
	fallbackRules  = compileSubstitutions(fallbackSubstitutions)
	emotionalRules = compileSubstitutions(emotionalNeutralizations)
	loadedRules    = compileSubstitutions(loadedNeutralizations)
)

func compileSubstitutions(subs []substitution) []compiledSubstitution {
	out := make([]compiledSubstitution, len(subs))
	for i, s := range subs {
		out[i] = compiledSubstitution{literal: s.from, to: s.to}
		if strings.TrimSpace(s.from) != s.from {
			continue
		}
		p, err := compilePattern(`\b` + regexp.QuoteMeta(s.from) + `\b`)
		if err != nil {
			panic(fmt.Sprintf("analyzer: bad substitution %q: %v", s.from, err))
		}
		out[i].re = p
		out[i].bounded = true
	}
	return out
}

func applySubstitutions(text string, rules []compiledSubstitution) string {
	for _, r := range rules {
		if r.bounded {
			text = r.re.replaceAll(text, r.to)
		} else {
			text = strings.ReplaceAll(text, r.literal, r.to)
		}
	}
	return text
}

// FallbackRewrite produces a neutral version of a segment with local
// substitutions when no rewrite provider is available
func FallbackRewrite(text string, category models.Category) string {
	out := applySubstitutions(text, fallbackRules)
	switch category {
	case models.EmotionalLanguage:
		out = applySubstitutions(out, emotionalRules)
	case models.LoadedLanguage:
		out = applySubstitutions(out, loadedRules)
	}
	return out
}

var categoryLabels = [...]string{
	models.TechnologicalDeterminism: "technological determinism",
	models.Anthropomorphism:         "anthropomorphism",
	models.HypeLanguage:             "hype language",
	models.FearMongering:            "fear-mongering",
	models.FalseCertainty:           "false certainty",
	models.LoadedLanguage:           "loaded language",
	models.SubjectiveTerms:          "subjective terms",
	models.OpinionAsFact:            "opinion presented as fact",
	models.EmotionalLanguage:        "emotionally charged language",
	models.MissingCounterpoint:      "missing counterpoints",
}

var _ = [1]struct{}{}[len(categoryLabels)-int(models.NumCategories)]

// CategoryLabel returns the human readable name of a category
func CategoryLabel(c models.Category) string {
	if !c.Valid() {
		return "biased text"
	}
	return categoryLabels[c]
}

// FallbackSummary is the deterministic document summary used when no summary
// provider is available
func FallbackSummary(title string, report models.Report) string {
	if report.TotalFindings == 0 {
		return fmt.Sprintf("No significant bias was detected in %q.", title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The analysis of %q found %d passages with possible bias:\n\n", title, report.TotalFindings)
	for _, c := range models.Categories() {
		if n := report.CategoryCounts[c]; n > 0 {
			fmt.Fprintf(&b, "- %d cases of %s\n", n, CategoryLabel(c))
		}
	}
	b.WriteString("\nReview these passages to improve the neutrality and objectivity of the content.")
	return b.String()
}

// Summarize appends the quantitative metrics block and the category
// distribution of a report to a base summary
func Summarize(base string, report models.Report) string {
	if report.TotalFindings == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	b.WriteString("\n\n**Quantitative metrics:**\n")
	if sem, syn := report.SemanticProfile, report.SyntacticProfile; sem != nil && syn != nil {
		fmt.Fprintf(&b, "- Mean sentiment polarity: %.2f (-1 to 1)\n", sem.AvgSentimentPolarity)
		fmt.Fprintf(&b, "- Mean emotional intensity: %.2f (0 to 1)\n", sem.AvgEmotionalIntensity)
		fmt.Fprintf(&b, "- Mean syntactic complexity: %.2f (0 to 1)\n", syn.AvgDependencyComplexity)
		fmt.Fprintf(&b, "- Mean certainty: %.2f (0 to 1)\n", sem.AvgCertainty)
		fmt.Fprintf(&b, "- Mean formality: %.2f (0 to 1)\n", sem.AvgFormality)
	}

	b.WriteString("\n**Bias type distribution:**\n")
	for _, c := range models.Categories() {
		if n := report.CategoryCounts[c]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d occurrence(s)\n", CategoryLabel(c), n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
