package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxSegmentWidth is the display width of the segment column
const maxSegmentWidth = 60

// Table writes an aligned plain text table per document. Widths are display
// widths, so accented and wide characters line up.
func Table(w io.Writer, docs []Document) error {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeTableDocument(&sb, doc)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func writeTableDocument(sb *strings.Builder, doc Document) {
	fmt.Fprintf(sb, "== %s ==\n", doc.Source)
	if doc.Error != "" {
		fmt.Fprintf(sb, "error: %s\n", doc.Error)
		return
	}

	report := doc.Analysis.Report
	fmt.Fprintf(sb, "status: %s  findings: %d  segments: %d/%d flagged  avg confidence: %.2f\n",
		report.Status, report.TotalFindings,
		report.TotalSegmentsFlagged, doc.Analysis.SegmentsAnalyzed,
		report.AverageConfidence)
	fmt.Fprintf(sb, "%s\n", report.Summary)

	if len(doc.Analysis.Findings) > 0 {
		rows := [][]string{{"CATEGORY", "CONF", "OFFSETS", "SEGMENT"}}
		for _, f := range doc.Analysis.Findings {
			rows = append(rows, []string{
				f.Category.String(),
				fmt.Sprintf("%.2f", f.Confidence),
				fmt.Sprintf("%d-%d", f.Segment.Start, f.Segment.End),
				runewidth.Truncate(strings.Join(strings.Fields(f.Segment.Text), " "), maxSegmentWidth, "..."),
			})
		}
		sb.WriteString("\n")
		for _, line := range alignColumns(rows) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("\nrecommendations:\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(sb, "  - %s\n", r)
		}
	}
	if doc.Summary != "" {
		fmt.Fprintf(sb, "\nsummary:\n%s\n", doc.Summary)
	}
}

// alignColumns pads every cell but the last to its column's display width
func alignColumns(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
			line.WriteString("  ")
		}
		lines = append(lines, line.String())
	}
	return lines
}
