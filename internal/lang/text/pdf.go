package text

import (
	"bytes"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/sloangwaltney/rlm/internal/lang"
)

// PDF chunks a document by page, one chunk per non-empty page, grounded on
// original_source's ingest/text/pdf.rs PdfParser. original_source extracts
// whole-document text with pdf_extract and then splits on form-feed bytes
// to recover page boundaries; ledongthuc/pdf exposes pages directly, so
// this walks the page tree instead of re-deriving it from a flattened
// string.
type PDF struct{}

func (PDF) Language() lang.Tag { return lang.PDF }
func (PDF) IsCode() bool       { return false }

func (PDF) Extract(path string, src []byte) (lang.ParseResult, error) {
	r, err := pdflib.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return lang.ParseResult{}, fmt.Errorf("open pdf %s: %w", path, err)
	}

	var chunks []lang.RawChunk
	var byteOffset uint32
	lineOffset := 1

	n := r.NumPage()
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if trimmedEmpty(text) {
			continue
		}
		lineCount := countLines(text)
		chunks = append(chunks, lang.RawChunk{
			Kind:      lang.KindPage,
			Ident:     fmt.Sprintf("page %d", i),
			StartLine: lineOffset,
			EndLine:   lineOffset + maxInt(lineCount-1, 0),
			StartByte: byteOffset,
			EndByte:   byteOffset + uint32(len(text)),
			Content:   text,
		})
		lineOffset += lineCount
		byteOffset += uint32(len(text))
	}

	quality := lang.QualityComplete
	if len(chunks) == 0 {
		quality = lang.QualityNotParsed
	}
	return lang.ParseResult{Chunks: chunks, Quality: quality}, nil
}

func (PDF) HasErrors(src []byte) (bool, []lang.ErrorSpan) { return false, nil }

func trimmedEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
