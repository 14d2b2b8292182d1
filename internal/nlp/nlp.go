// Package nlp defines the external language-annotation capabilities the
// analyzer consumes. Implementations live elsewhere; any of them may be nil.
package nlp

import (
	"context"
	"strings"
)

// Token is one annotated token of a sentence
type Token struct {
	Text    string `json:"text"`
	Lemma   string `json:"lemma"`
	POS     string `json:"pos"`   // coarse universal tag: NOUN, VERB, ADJ, ADV, AUX, ...
	Voice   string `json:"voice"` // morphological voice, "Pass" for passive
	Head    int    `json:"head"`  // index of the governor within the sentence; equal to own index at the root
	IsSpace bool   `json:"is_space"`
}

// Sentence is a sentence span with its tokens. Start and End are byte offsets
// into the annotated text.
type Sentence struct {
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Tokens []Token `json:"tokens"`
}

// Annotator segments text into sentences and annotates tokens
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]Sentence, error)
}

// Sentiment is a classifier verdict
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Positive reports whether the label denotes positive sentiment
func (s Sentiment) Positive() bool {
	switch strings.ToLower(strings.TrimSpace(s.Label)) {
	case "positive", "pos", "positivo":
		return true
	}
	return false
}

// SentimentClassifier labels the sentiment of a sentence
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}
