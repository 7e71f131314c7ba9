// Package document turns uploaded bytes into plain text for the extractors.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned when no text can be recovered from an upload.
var ErrUnreadable = errors.New("document unreadable")

// Kind is the detected format of an upload.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindHTML Kind = "html"
)

var pdfMagic = []byte("%PDF-")

// Detect guesses the format from the content, falling back to the file
// extension.
func Detect(data []byte, filename string) Kind {
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return KindPDF
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		return KindPDF
	}
	head := strings.ToLower(string(data[:min(len(data), 2048)]))
	if strings.Contains(head, "<table") || strings.Contains(head, "<html") || ext == ".html" || ext == ".htm" {
		return KindHTML
	}
	return KindText
}

// Text returns the text content of an upload.  PDFs are read page by page;
// anything else is decoded as text.
func Text(data []byte, filename string) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrUnreadable)
	}
	if Detect(data, filename) == KindPDF {
		return PDFText(data)
	}
	return DecodeText(data)
}

// DecodeText validates plain text.  Input that is not UTF-8 is read as
// Latin-1, which is what diary exports use.  Binary content is rejected.
func DecodeText(data []byte) (string, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content", ErrUnreadable)
	}
	var s string
	if utf8.Valid(data) {
		s = string(data)
	} else {
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		s = string(runes)
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: no text", ErrUnreadable)
	}
	return s, nil
}

// PDFText extracts the text of every page, one output line per text row.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadable, err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %v", ErrUnreadable, i, err)
		}
		for _, row := range rows {
			if line := joinRow(row.Content); strings.TrimSpace(line) != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: pdf has no extractable text", ErrUnreadable)
	}
	return b.String(), nil
}

// joinRow glues the text runs of one row.  Runs that start at a new x
// position are separate blocks and get a space; runs sharing a position are
// pieces of one kerned string.
func joinRow(runs pdf.TextHorizontal) string {
	var b strings.Builder
	for i, t := range runs {
		if i > 0 && t.X != runs[i-1].X {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
