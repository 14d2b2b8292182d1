package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxInputSize bounds a single text input
const maxInputSize = 10 << 20

var (
	errEmptyInput   = errors.New("input is empty")
	errInvalidUTF8  = errors.New("input is not valid UTF-8 text")
	errInputTooLong = errors.New("input exceeds 10 MiB")
)

// readInput returns the text of path. "-" reads stdin and .pdf files are
// converted to plain text; anything else is read as UTF-8 text.
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		text string
		err  error
	)
	switch {
	case path == "-":
		text, err = readText(stdin)
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		text, err = readPDF(path)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		text, err = readText(f)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyInput
	}
	return text, nil
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > maxInputSize {
		return "", errInputTooLong
	}
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}

// readPDF extracts the plain text of every page, one page per paragraph
func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(strings.TrimSpace(content))
		b.WriteString("\n\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	if b.Len() > maxInputSize {
		return "", errInputTooLong
	}
	return b.String(), nil
}
