package surgery

import (
	"github.com/sloangwaltney/rlm/internal/rlmerr"
	"github.com/sloangwaltney/rlm/internal/store"
)

// Selector identifies the chunk an edit targets, either by a symbol name
// (plus optional kind) or by an explicit line range — spec.md §4.7's
// "selector (either a symbol name plus optional kind, or an explicit line
// range)." A (path, kind, identifier) triple must uniquely identify a
// chunk; Ident empty means "use the line range instead."
type Selector struct {
	Ident     string
	Kind      string
	StartLine int // 1-based, inclusive; used when Ident == ""
	EndLine   int // 1-based, inclusive
}

// resolveByIdentifier finds the single chunk in chunks matching sel,
// failing on zero or more than one match — spec.md §4.7's replace/insert
// failure model.
func resolveByIdentifier(chunks []store.Chunk, sel Selector) (*store.Chunk, error) {
	var matches []store.Chunk
	for _, c := range chunks {
		if c.Ident != sel.Ident {
			continue
		}
		if sel.Kind != "" && c.Kind != sel.Kind {
			continue
		}
		matches = append(matches, c)
	}
	switch len(matches) {
	case 0:
		return nil, rlmerr.NotFound(sel.Ident, "selector matched no chunk")
	case 1:
		return &matches[0], nil
	default:
		return nil, rlmerr.Ambiguous(sel.Ident, "selector matched more than one chunk")
	}
}

// byteRangeForLines converts a 1-based, inclusive line range to a byte
// range within src, used when a Selector gives an explicit line range
// rather than a symbol name.
func byteRangeForLines(src []byte, startLine, endLine int) (start, end uint32, err error) {
	if startLine < 1 || endLine < startLine {
		return 0, 0, rlmerr.New(rlmerr.KindNotFound, "invalid line range")
	}
	lineStart := lineOffsets(src)
	totalLines := len(lineStart)
	if startLine > totalLines {
		return 0, 0, rlmerr.New(rlmerr.KindNotFound, "start line beyond end of file")
	}
	start = uint32(lineStart[startLine-1])
	if endLine >= totalLines {
		end = uint32(len(src))
	} else {
		end = uint32(lineStart[endLine])
	}
	return start, end, nil
}

// lineOffsets returns the byte offset each line of src begins at (0-based
// index i holds the start of 1-based line i+1).
func lineOffsets(src []byte) []int {
	offsets := make([]int, 0, 64)
	offsets = append(offsets, 0)
	for i, b := range src {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
