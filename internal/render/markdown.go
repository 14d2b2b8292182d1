package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/zombar/biasanalyzer/internal/models"
)

// Markdown writes a GitHub flavored Markdown report
func Markdown(w io.Writer, docs []Document) error {
	md := markdown.NewMarkdown(w)
	md.H1("Bias Analysis Report")
	md.PlainText("")

	for _, doc := range docs {
		writeMarkdownDocument(md, doc)
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by biasctl*")

	if err := md.Build(); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

func writeMarkdownDocument(md *markdown.Markdown, doc Document) {
	md.H2(doc.Source)
	md.PlainText("")

	if doc.Error != "" {
		md.Cautionf("Analysis failed: %s", doc.Error)
		md.PlainText("")
		return
	}
	if doc.URL != "" {
		md.PlainTextf("[%s](%s)", doc.URL, doc.URL)
		md.PlainText("")
	}

	report := doc.Analysis.Report
	if report.Status == models.StatusNoBiasDetected {
		md.Tip(report.Summary)
	} else {
		md.Warningf("%s", report.Summary)
	}
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Segments analyzed", strconv.Itoa(doc.Analysis.SegmentsAnalyzed)},
			{"Segments flagged", strconv.Itoa(report.TotalSegmentsFlagged)},
			{"Findings", strconv.Itoa(report.TotalFindings)},
			{"Average confidence", fmt.Sprintf("%.2f", report.AverageConfidence)},
		},
	})
	md.PlainText("")

	if len(report.CategoryCounts) > 0 {
		md.H3("Categories")
		md.PlainText("")
		rows := make([][]string, 0, len(report.CategoryCounts))
		for _, cc := range sortedCounts(report.CategoryCounts) {
			rows = append(rows, []string{cc.category.String(), strconv.Itoa(cc.count)})
		}
		md.Table(markdown.TableSet{Header: []string{"Category", "Findings"}, Rows: rows})
		md.PlainText("")
	}

	if len(doc.Analysis.Findings) > 0 {
		md.H3("Findings")
		md.PlainText("")
		rows := make([][]string, 0, len(doc.Analysis.Findings))
		for _, f := range doc.Analysis.Findings {
			rows = append(rows, []string{
				f.Category.String(),
				fmt.Sprintf("%.2f", f.Confidence),
				fmt.Sprintf("%d-%d", f.Segment.Start, f.Segment.End),
				escapeCell(f.Segment.Text),
				escapeCell(f.Explanation),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Confidence", "Offsets", "Segment", "Explanation"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, f := range doc.Analysis.Findings {
			if f.Rewrite == "" && len(f.Suggestions) == 0 {
				continue
			}
			var body strings.Builder
			if f.Rewrite != "" {
				body.WriteString("Rewrite: " + f.Rewrite)
			}
			for _, s := range f.Suggestions {
				if body.Len() > 0 {
					body.WriteString("<br>")
				}
				body.WriteString("- " + s)
			}
			md.Details(f.Category.String()+" at "+strconv.Itoa(f.Segment.Start), body.String())
		}
		md.PlainText("")
	}

	if len(report.Recommendations) > 0 {
		md.H3("Recommendations")
		md.PlainText("")
		md.BulletList(report.Recommendations...)
		md.PlainText("")
	}

	if doc.Summary != "" {
		md.H3("Summary")
		md.PlainText("")
		md.PlainText(doc.Summary)
		md.PlainText("")
	}
}

// escapeCell keeps segment text from breaking the table layout
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
