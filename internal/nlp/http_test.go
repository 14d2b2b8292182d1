package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPAnnotator(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8090/annotate", false},
		{"https", "https://nlp.example.com/annotate", false},
		{"bad scheme", "ftp://nlp.example.com", true},
		{"unparseable", "://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPAnnotator(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPAnnotatorAnnotate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req annotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "A IA decide.", req.Text)

		_ = json.NewEncoder(w).Encode(annotateResponse{Sentences: []Sentence{{
			Text: "A IA decide.", Start: 0, End: 12,
			Tokens: []Token{
				{Text: "A", Lemma: "o", POS: "DET", Head: 1},
				{Text: "IA", Lemma: "ia", POS: "NOUN", Head: 2},
				{Text: "decide", Lemma: "decidir", POS: "VERB", Head: 2},
				{Text: ".", Lemma: ".", POS: "PUNCT", Head: 2},
			},
		}}})
	}))
	defer srv.Close()

	a, err := NewHTTPAnnotator(srv.URL)
	require.NoError(t, err)

	sents, err := a.Annotate(context.Background(), "A IA decide.")
	require.NoError(t, err)
	require.Len(t, sents, 1)
	assert.Equal(t, 12, sents[0].End)
	assert.Len(t, sents[0].Tokens, 4)
	assert.Equal(t, "decidir", sents[0].Tokens[2].Lemma)
}

func TestHTTPAnnotatorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a, err := NewHTTPAnnotator(srv.URL)
	require.NoError(t, err)

	_, err = a.Annotate(context.Background(), "texto")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSentimentPositive(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"POSITIVE", true},
		{"positivo", true},
		{"pos", true},
		{"NEGATIVE", false},
		{"neutral", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment{Label: tt.label}.Positive())
		})
	}
}
