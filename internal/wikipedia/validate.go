package wikipedia

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// aiContextWindow is the number of leading content characters inspected by
// IsAIRelated
const aiContextWindow = 2000

var forbiddenTitleChars = `<>{}[]|\`

// ValidateTitle reports whether title is an acceptable article title
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < 2 {
		return ErrInvalidTitle
	}
	if strings.ContainsAny(title, forbiddenTitleChars) {
		return ErrInvalidTitle
	}
	return nil
}

var aiPhrases = []string{
	"inteligência artificial", "machine learning", "aprendizado de máquina",
	"deep learning", "aprendizado profundo", "redes neurais",
	"processamento de linguagem natural", "visão computacional",
	"data science", "ciência de dados", "big data",
	"mineração de dados", "reconhecimento de padrões", "chatbot",
	"neural network", "algoritmo genético", "sistema especialista",

	// unaccented spellings
	"algoritmo de aprendizado", "rede neural", "inteligencia artificial",
	"automacao inteligente", "sistema cognitivo", "computacao cognitiva",
	"aprendizagem automatica", "reconhecimento automatico",
	"classificacao automatica", "predicao automatica",
}

var aiTokens = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(ia|bot|pln|ml)($|[^\p{L}\p{N}_])`)

// IsAIRelated reports whether an article is about artificial intelligence,
// looking at the title and the first 2000 characters of content
func IsAIRelated(title, content string) bool {
	if n := utf8.RuneCountInString(content); n > aiContextWindow {
		content = string([]rune(content)[:aiContextWindow])
	}
	text := strings.ToLower(title + " " + content)

	for _, phrase := range aiPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return aiTokens.MatchString(text)
}

// Normalize returns text in NFC form with control characters removed and
// whitespace runs collapsed to a single space
func Normalize(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
