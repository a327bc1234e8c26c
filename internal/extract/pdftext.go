package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the text scraped from an uploaded PDF.
type Document struct {
	Text  string
	Pages int
}

// ReadPDF extracts plain text from PDF bytes. A PDF with no extractable
// text (typically a scanned document) is an error: there is nothing for
// the field extractor to work with.
func ReadPDF(data []byte) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var text strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(content)
		text.WriteString(" ")
	}

	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("no text found in pdf, possibly a scanned document")
	}

	return &Document{Text: text.String(), Pages: pages}, nil
}
