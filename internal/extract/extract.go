// Package extract pulls plain text out of uploaded PDF documents.
package extract

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// PageSpan records where a page's text landed in the joined document text.
// Start and End are character (rune) offsets, matching the chunker's
// offsets. Page numbers are 1-based.
type PageSpan struct {
	Page  int
	Start int
	End   int
}

// Extractor produces per-page text from raw PDF bytes.
// It is a thin adapter over the PDF library and holds no state.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one string per page of the document, in page order.
// Pages with no extractable characters are kept as empty strings so page
// indexes stay aligned. Returns ErrInvalidPDF if the payload cannot be
// parsed and ErrNoText if no page yields any text (e.g. image-only scans).
func (e *Extractor) Extract(data []byte) (pages []string, err error) {
	// The PDF library panics on some malformed inputs; uploads are untrusted.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	hasText := false

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		// A page that fails to extract degrades to empty rather than
		// failing the whole document.
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}

		pages = append(pages, text)
		if len(text) > 0 {
			hasText = true
		}
	}

	if !hasText {
		return nil, ErrNoText
	}

	return pages, nil
}

// JoinPages concatenates the non-empty pages into a single chunking input,
// separated by newlines, and reports the character span each page occupies
// in the result. Empty pages contribute nothing and get no span.
func JoinPages(pages []string) (string, []PageSpan) {
	var buf bytes.Buffer
	var spans []PageSpan
	offset := 0

	for i, page := range pages {
		if page == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
			offset++
		}
		start := offset
		buf.WriteString(page)
		offset += utf8.RuneCountInString(page)
		spans = append(spans, PageSpan{
			Page:  i + 1,
			Start: start,
			End:   offset,
		})
	}

	return buf.String(), spans
}

// PageFor returns the 1-based page containing the given character offset of
// the joined text, or 0 if the offset falls outside every span.
func PageFor(spans []PageSpan, offset int) int {
	for _, span := range spans {
		if offset >= span.Start && offset < span.End {
			return span.Page
		}
	}
	// Offsets landing on a separator belong to the following page.
	for _, span := range spans {
		if offset < span.Start {
			return span.Page
		}
	}
	if n := len(spans); n > 0 {
		return spans[n-1].Page
	}
	return 0
}
