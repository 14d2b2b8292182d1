package wikipedia

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	referenceMarker = regexp.MustCompile(`\[\d+\]`)
	blankLines      = regexp.MustCompile(`\n\s*\n`)
	repeatedSpaces  = regexp.MustCompile(` +`)
	numberedItem    = regexp.MustCompile(`^\d+\.`)
)

// trailingSections are headings after which an article carries only
// apparatus, not prose
var trailingSections = []string{
	"referências", "referencias", "notas", "notas e referências",
	"notas de rodapé", "referências gerais", "ligações externas",
	"ligacoes externas", "links externos", "ver também", "ver tambem",
	"bibliografia", "bibliografia adicional", "leitura adicional", "fontes",
}

// boilerplateMarkers flag paragraphs that are page furniture
var boilerplateMarkers = []string{
	"esta página foi editada", "este artigo carece de", "esta seção não cita",
	"ver artigo principal", "artigo principal:", "coordenadas:",
	"predefinição:", "editar código-fonte",
	"a wikipédia não é", "ficheiro:", "arquivo:", "imagem:",
	"categoria:", "wikimedia commons", "wikcionário",
}

// paragraphVerdict is the outcome of inspecting one paragraph
type paragraphVerdict struct {
	Text    string
	Keep    bool
	Reasons []string
}

// Clean turns an extract into analysis-ready prose: stray markup and
// reference markers are removed, trailing apparatus sections are dropped,
// page furniture paragraphs are filtered and whitespace is collapsed.
func Clean(content string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	content = stripHTML(content)
	content = referenceMarker.ReplaceAllString(content, "")
	content = dropTrailingSections(content)

	paragraphs := splitIntoParagraphs(content)
	kept := make([]string, 0, len(paragraphs))
	for i, para := range paragraphs {
		v := inspectParagraph(para)
		if !v.Keep {
			logger.Debug("dropped paragraph", "index", i, "reasons", strings.Join(v.Reasons, ","))
			continue
		}
		kept = append(kept, v.Text)
	}

	content = strings.Join(kept, "\n\n")
	content = blankLines.ReplaceAllString(content, "\n\n")
	content = repeatedSpaces.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// stripHTML removes markup that leaked into a plain-text extract, keeping
// text content and decoding entities. Script and style bodies are dropped.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				skip++
			case atom.Br, atom.P, atom.Div, atom.Li:
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			case atom.P, atom.Div:
				b.WriteByte('\n')
			}
		}
	}
}

// dropTrailingSections cuts the content at the first apparatus heading.
// Headings are lines of their own in plain section format.
func dropTrailingSections(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		heading := strings.ToLower(strings.Trim(strings.TrimSpace(line), "= "))
		if slices.Contains(trailingSections, heading) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return content
}

// splitIntoParagraphs splits on blank lines, then splits overlong
// paragraphs on single newlines
func splitIntoParagraphs(text string) []string {
	var result []string
	for _, para := range blankLines.Split(text, -1) {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}
		if len(trimmed) <= 1000 {
			result = append(result, trimmed)
			continue
		}
		for _, line := range strings.Split(trimmed, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				result = append(result, line)
			}
		}
	}
	return result
}

// inspectParagraph decides whether a paragraph is article prose. Headings
// and short lines are kept; the segment analyzer skips them on its own.
func inspectParagraph(para string) paragraphVerdict {
	v := paragraphVerdict{Text: para, Keep: true}
	lower := strings.ToLower(para)
	words := strings.Fields(para)

	for _, marker := range boilerplateMarkers {
		if strings.Contains(lower, marker) {
			v.Keep = false
			v.Reasons = append(v.Reasons, "boilerplate")
			break
		}
	}

	links := strings.Count(lower, "http://") + strings.Count(lower, "https://") +
		strings.Count(lower, "www.") + strings.Count(para, "→") + strings.Count(para, "»")
	if len(words) > 0 && float64(links)/float64(len(words)) > 0.1 {
		v.Keep = false
		v.Reasons = append(v.Reasons, "high_link_density")
	}

	if (strings.HasPrefix(para, "•") || numberedItem.MatchString(para)) && links > 0 {
		v.Keep = false
		v.Reasons = append(v.Reasons, "link_list_item")
	}
	return v
}
