package llm

import (
	"fmt"
	"strings"

	"github.com/zombar/biasanalyzer/internal/models"
)

// System messages
const (
	RewriteSystemPrompt = "Você é um especialista em escrita neutra e objetiva para textos acadêmicos e científicos. Sempre responda em português brasileiro."
	SummarySystemPrompt = "Você é um especialista em análise de texto e neutralidade editorial. Sempre responda em português brasileiro de forma clara e objetiva."
)

var categoryDescriptions = [...]string{
	models.TechnologicalDeterminism: "determinismo tecnológico",
	models.Anthropomorphism:         "antropomorfização de sistemas",
	models.HypeLanguage:             "linguagem de exagero promocional",
	models.FearMongering:            "alarmismo",
	models.FalseCertainty:           "falsa certeza",
	models.LoadedLanguage:           "linguagem carregada ou tendenciosa",
	models.SubjectiveTerms:          "termos subjetivos ou incertos",
	models.OpinionAsFact:            "opinião apresentada como fato",
	models.EmotionalLanguage:        "linguagem emocionalmente carregada",
	models.MissingCounterpoint:      "falta de contrapontos ou nuances",
}

var _ = [1]struct{}{}[len(categoryDescriptions)-int(models.NumCategories)]

var categoryInstructions = map[models.Category]string{
	models.EmotionalLanguage: `• Substitua advérbios intensificadores por versões mais neutras (ex: "significativamente" → "de forma considerável")
• Transforme verbos carregados emocionalmente (ex: "tiveram ganhos reais" → "registraram crescimento")
• Use termos mais técnicos e menos emocionais para descrever mudanças e resultados
• Evite palavras que implicam julgamento de valor implícito`,

	models.LoadedLanguage: `• Substitua termos que implicam julgamento por descrições neutras (ex: "controverso" → "que gerou debate")
• Remova qualificadores absolutos desnecessários (ex: "completamente" → remover se possível)
• Use linguagem descritiva em vez de avaliativa
• Substitua opiniões implícitas por fatos observáveis`,

	models.OpinionAsFact: `• Adicione qualificadores que indiquem fonte ou perspectiva (ex: "é claro que" → "segundo análises")
• Transforme afirmações categóricas em declarações condicionais
• Use verbos que indiquem probabilidade ou evidência em vez de certeza absoluta`,

	models.SubjectiveTerms: `• Substitua termos vagos por descrições mais específicas quando possível
• Remova ou qualifique expressões de incerteza excessiva
• Use linguagem mais precisa e técnica`,

	models.MissingCounterpoint: `• Adicione qualificadores que reconheçam possíveis limitações ou perspectivas alternativas
• Use linguagem que não exclua outras possibilidades
• Adicione contexto quando apropriado`,

	models.TechnologicalDeterminism: `• Apresente a tecnologia como uma entre várias forças que influenciam mudanças
• Substitua previsões inevitáveis por possibilidades condicionadas (ex: "substituirá todos" → "pode afetar parte dos")`,

	models.Anthropomorphism: `• Descreva sistemas em termos de processamento e saídas, não de intenções ou sentimentos
• Troque verbos mentais (pensa, decide, quer) por verbos técnicos (calcula, classifica, gera)`,

	models.HypeLanguage: `• Remova superlativos promocionais e termos como "revolução" ou "santo graal"
• Descreva ganhos concretos e mensuráveis em vez de promessas`,

	models.FearMongering: `• Substitua cenários catastróficos por riscos descritos de forma proporcional
• Cite incertezas e medidas de mitigação quando apropriado`,

	models.FalseCertainty: `• Troque afirmações de prova absoluta por referências às evidências disponíveis
• Indique o grau de consenso em vez de afirmar unanimidade`,
}

const defaultInstruction = "• Torne o texto mais neutro e objetivo, removendo linguagem tendenciosa."

// CategoryDescription returns the Portuguese description of a category used
// in prompts
func CategoryDescription(c models.Category) string {
	if !c.Valid() {
		return "texto tendencioso"
	}
	return categoryDescriptions[c]
}

func categoryInstruction(c models.Category) string {
	if s, ok := categoryInstructions[c]; ok {
		return s
	}
	return defaultInstruction
}

// BuildRewritePrompt constructs the rewrite prompt of a biased segment
func BuildRewritePrompt(text string, category models.Category, explanation string) string {
	return fmt.Sprintf(`Você é um especialista em escrita neutra e objetiva. Sua tarefa é reformular textos para remover viés e torná-los mais neutros e factuais.

TEXTO ORIGINAL:
"%s"

TIPO DE VIÉS DETECTADO:
%s

EXPLICAÇÃO DO PROBLEMA:
%s

INSTRUÇÕES GERAIS PARA REFORMULAÇÃO:
1. Mantenha todas as informações factuais do texto original
2. Remova ou substitua termos tendenciosos por alternativas neutras
3. Adicione qualificadores quando necessário (ex: "segundo estudos", "de acordo com")
4. Evite afirmações categóricas sem evidência
5. Use linguagem mais objetiva e científica
6. Mantenha o texto em português brasileiro
7. Preserve o comprimento aproximado do texto original

INSTRUÇÕES ESPECÍFICAS PARA ESTE TIPO DE VIÉS:
%s

IMPORTANTE: Você DEVE modificar o texto. NÃO retorne o texto original inalterado. Faça as mudanças necessárias para torná-lo mais neutro.

TEXTO REFORMULADO:`, text, CategoryDescription(category), explanation, categoryInstruction(category))
}

// BuildSummaryPrompt constructs the executive summary prompt of a report
func BuildSummaryPrompt(title string, report models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analise os seguintes dados sobre viés detectado no artigo %q e crie um resumo executivo em português brasileiro:\n\n", title)
	b.WriteString("ESTATÍSTICAS DE VIÉS DETECTADO:\n")
	for _, c := range models.Categories() {
		if n := report.CategoryCounts[c]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d ocorrências\n", CategoryDescription(c), n)
		}
	}
	fmt.Fprintf(&b, "\nTOTAL DE TRECHOS ANALISADOS: %d\n\n", report.TotalFindings)
	b.WriteString(`Crie um resumo de 2-3 parágrafos que:
1. Descreva os principais tipos de viés encontrados
2. Explique o impacto potencial na neutralidade do artigo
3. Forneça recomendações gerais para melhorar a objetividade

RESUMO:`)
	return b.String()
}

var rewritePrefixes = []string{
	"TEXTO REFORMULADO:",
	"Reformulação:",
	"Versão neutra:",
	"Texto reformulado:",
}

// CleanRewrite strips answer prefixes and enclosing quotes from a model
// rewrite
func CleanRewrite(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range rewritePrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
		}
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return s
}
