// Package text holds the non-tree-sitter Capability implementations:
// markdown (heading sections via goldmark), structured data (YAML/TOML/JSON
// top-level keys), PDF (page text), and the plaintext whole-file fallback
// that answers for every extension nothing else claims.
package text

import (
	"strings"

	"github.com/sloangwaltney/rlm/internal/lang"
)

// Plaintext treats an entire file as one chunk. Grounded on
// original_source's ingest/text/plaintext.rs PlaintextParser, which exists
// purely so every extension gets FTS5 searchability even without a
// dedicated format parser.
type Plaintext struct{}

func (Plaintext) Language() lang.Tag { return lang.Plaintext }
func (Plaintext) IsCode() bool       { return false }

func (Plaintext) Extract(path string, src []byte) (lang.ParseResult, error) {
	if strings.TrimSpace(string(src)) == "" {
		return lang.ParseResult{Quality: lang.QualityNotParsed}, nil
	}
	lines := strings.Split(string(src), "\n")
	chunk := lang.RawChunk{
		Kind:      lang.KindFile,
		Ident:     "(document)",
		StartLine: 1,
		EndLine:   len(lines),
		StartByte: 0,
		EndByte:   uint32(len(src)),
		Content:   string(src),
	}
	return lang.ParseResult{Chunks: []lang.RawChunk{chunk}, Quality: lang.QualityNotParsed}, nil
}

func (Plaintext) HasErrors(src []byte) (bool, []lang.ErrorSpan) { return false, nil }
