package surgery

import (
	"bytes"

	"github.com/sloangwaltney/rlm/internal/lang"
	"github.com/sloangwaltney/rlm/internal/rlmerr"
)

// maxGuardSpans bounds how many error ranges a rejection reports, per
// spec.md §4.7's "structured error containing the first few error byte
// ranges."
const maxGuardSpans = 5

// checkSyntax validates candidate entirely in memory via cap.HasErrors,
// with no bypass — grounded almost line-for-line on
// _examples/original_source/src/edit/syntax_guard.rs::SyntaxGuard::validate,
// restated as a standalone function instead of a struct since this module's
// Capability already carries HasErrors and needs no dispatcher indirection.
func checkSyntax(cap lang.Capability, path string, candidate []byte) error {
	hasErrors, spans := cap.HasErrors(candidate)
	if !hasErrors {
		return nil
	}
	if len(spans) > maxGuardSpans {
		spans = spans[:maxGuardSpans]
	}
	out := make([]rlmerr.ErrorSpan, len(spans))
	for i, s := range spans {
		line, col := lineCol(candidate, s.StartByte)
		out[i] = rlmerr.ErrorSpan{StartByte: s.StartByte, EndByte: s.EndByte, StartLine: line, StartCol: col}
	}
	return rlmerr.ParseRejected(path, out)
}

// lineCol maps a byte offset to a 1-based line and column within src.
func lineCol(src []byte, offset uint32) (line, col int) {
	if int(offset) > len(src) {
		offset = uint32(len(src))
	}
	prefix := src[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	if i := bytes.LastIndexByte(prefix, '\n'); i >= 0 {
		col = len(prefix) - i
	} else {
		col = len(prefix) + 1
	}
	return line, col
}
