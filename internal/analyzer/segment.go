package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/nlp"
)

// sentenceTerminator ends a fallback segment: a run of sentence punctuation
// or a blank line
var sentenceTerminator = regexp.MustCompile(`[.!?]+|\n[ \t\r]*\n`)

// segmentInput is a segment together with its tokens, if annotated
type segmentInput struct {
	segment models.Segment
	tokens  []nlp.Token
}

// runeOffsets converts byte offsets of text into character offsets. Offsets
// are expected in increasing order; the count resumes from the last one.
type runeOffsets struct {
	text  string
	bytes int
	runes int
}

func (o *runeOffsets) at(off int) int {
	if off < o.bytes {
		o.bytes, o.runes = 0, 0
	}
	o.runes += utf8.RuneCountInString(o.text[o.bytes:off])
	o.bytes = off
	return o.runes
}

// splitSentences is the punctuation-based segmentation used when no
// annotator is available. Segments are trimmed; offsets follow the trim.
func splitSentences(text string) []models.Segment {
	var segments []models.Segment
	offsets := &runeOffsets{text: text}
	prev := 0
	for _, loc := range sentenceTerminator.FindAllStringIndex(text, -1) {
		if seg, ok := trimmedSegment(text, prev, loc[1], offsets); ok {
			segments = append(segments, seg)
		}
		prev = loc[1]
	}
	if seg, ok := trimmedSegment(text, prev, len(text), offsets); ok {
		segments = append(segments, seg)
	}
	return segments
}

// trimmedSegment returns text[start:end] without surrounding whitespace.
// start and end are byte offsets.
func trimmedSegment(text string, start, end int, offsets *runeOffsets) (models.Segment, bool) {
	if start < 0 || end > len(text) || start >= end {
		return models.Segment{}, false
	}
	raw := text[start:end]
	left := strings.TrimLeftFunc(raw, unicode.IsSpace)
	start += len(raw) - len(left)
	trimmed := strings.TrimRightFunc(left, unicode.IsSpace)
	if trimmed == "" {
		return models.Segment{}, false
	}
	end = start + len(trimmed)
	return models.Segment{
		Text:      trimmed,
		Start:     offsets.at(start),
		End:       offsets.at(end),
		ByteStart: start,
		ByteEnd:   end,
	}, true
}

// annotatedSegments converts annotator sentences, whose spans are byte
// offsets, into segments. It reports
// false when the spans are out of range or overlap, so the caller can fall
// back to punctuation splitting.
func annotatedSegments(text string, sents []nlp.Sentence) ([]segmentInput, bool) {
	out := make([]segmentInput, 0, len(sents))
	offsets := &runeOffsets{text: text}
	prevEnd := 0
	for _, s := range sents {
		if s.Start < prevEnd || s.End > len(text) || s.Start >= s.End {
			return nil, false
		}
		prevEnd = s.End
		seg, ok := trimmedSegment(text, s.Start, s.End, offsets)
		if !ok {
			continue
		}
		out = append(out, segmentInput{segment: seg, tokens: s.Tokens})
	}
	return out, true
}
