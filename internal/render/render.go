// Package render writes analysis results for the command line: JSON for
// scripts, GitHub flavored Markdown for reports and an aligned table for the
// terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/zombar/biasanalyzer/internal/models"
)

// Document is one analyzed input. Source names it: a file path, "-" for
// standard input or an article title.
type Document struct {
	Source   string              `json:"source"`
	Title    string              `json:"title,omitempty"`
	URL      string              `json:"url,omitempty"`
	Summary  string              `json:"summary,omitempty"`
	Error    string              `json:"error,omitempty"`
	Analysis models.TextAnalysis `json:"analysis"`
}

// FromText wraps a free text analysis
func FromText(source string, a models.TextAnalysis) Document {
	return Document{Source: source, Analysis: a}
}

// FromArticle wraps an article analysis. The article content is dropped.
func FromArticle(a *models.ArticleAnalysis) Document {
	return Document{
		Source:  a.Article.Title,
		Title:   a.Article.Title,
		URL:     a.Article.URL,
		Summary: a.Summary,
		Analysis: models.TextAnalysis{
			Findings:         a.Findings,
			Report:           a.Report,
			SegmentsAnalyzed: a.SegmentsAnalyzed,
			Detailed:         a.Detailed,
		},
	}
}

// Render writes docs to w in the named format
func Render(w io.Writer, format string, docs []Document) error {
	switch format {
	case "json":
		return JSON(w, docs)
	case "markdown":
		return Markdown(w, docs)
	case "table":
		return Table(w, docs)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// JSON writes a single document as an object and several as an array
func JSON(w io.Writer, docs []Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	var v any = docs
	if len(docs) == 1 {
		v = docs[0]
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

type categoryCount struct {
	category models.Category
	count    int
}

// sortedCounts orders category counts by count, then category order
func sortedCounts(counts map[models.Category]int) []categoryCount {
	out := make([]categoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, categoryCount{c, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].category < out[j].category
	})
	return out
}
