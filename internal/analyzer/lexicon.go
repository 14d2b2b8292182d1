package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordSet is a membership view over a lexicon group, used for lemma lookups
type wordSet map[string]bool

func newWordSet(groups ...[]string) wordSet {
	set := make(wordSet)
	for _, words := range groups {
		for _, w := range words {
			set[w] = true
		}
	}
	return set
}

func (s wordSet) has(word string) bool {
	return s[strings.ToLower(word)]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// boundaryOK reports whether s[start:end] sits on word boundaries on the
// requested sides. Unlike regexp's \b it treats accented letters as letters.
func boundaryOK(s string, start, end int, left, right bool) bool {
	if left && start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if right && end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// hasTerm reports whether lower contains term as a whole word or phrase.
// A trailing plural "s" is tolerated so "limitado" also finds "limitados".
func hasTerm(lower, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; offset < len(lower); {
		idx := strings.Index(lower[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		if boundaryOK(lower, start, end, true, true) {
			return true
		}
		if end < len(lower) && lower[end] == 's' && boundaryOK(lower, start, end+1, true, true) {
			return true
		}
		_, size := utf8.DecodeRuneInString(lower[start:])
		offset = start + size
	}
	return false
}

// hasPrefixTerm reports whether a word in lower starts with term
func hasPrefixTerm(lower, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; offset < len(lower); {
		idx := strings.Index(lower[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		if boundaryOK(lower, start, start+len(term), true, false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(lower[start:])
		offset = start + size
	}
	return false
}

// findTerms returns the terms present in lower, in lexicon order
func findTerms(lower string, terms []string) []string {
	var found []string
	for _, t := range terms {
		if hasTerm(lower, t) {
			found = append(found, t)
		}
	}
	return found
}

func anyPrefixTerm(lower string, terms ...[]string) bool {
	for _, group := range terms {
		for _, t := range group {
			if hasPrefixTerm(lower, t) {
				return true
			}
		}
	}
	return false
}

// surfaceWords splits text into lowercased words, dropping punctuation
func surfaceWords(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !isWordRune(r) && r != '-'
	})
}

// wordCount counts whitespace-separated words, as the normalizers of the
// lexical features expect
func wordCount(text string) int {
	return len(strings.Fields(text))
}
