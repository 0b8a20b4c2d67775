package surgery

import (
	"github.com/sloangwaltney/rlm/internal/rlmerr"
)

// Replace substitutes newCode for the chunk sel identifies in relPath,
// validates the result with the Syntax Guard, and either returns a preview
// diff or writes the file atomically and enqueues a reindex — spec.md
// §4.7's replace operation, grounded on
// _examples/original_source/src/edit/replacer.rs::replace_symbol /
// preview_replace, generalized from replacer.rs's identifier-only lookup
// to Selector's symbol-or-line-range resolution.
func (e *Editor) Replace(relPath string, sel Selector, newCode string, preview bool) (*EditResult, error) {
	unlock := e.locks.Acquire(relPath)
	defer unlock()

	cap, err := e.capabilityFor(relPath)
	if err != nil {
		return nil, err
	}

	src, absPath, err := e.readFile(relPath)
	if err != nil {
		return nil, err
	}

	start, end, err := e.resolveRange(relPath, sel, src)
	if err != nil {
		return nil, err
	}

	modified := spliceBytes(src, start, end, []byte(newCode))

	if err := checkSyntax(cap, relPath, modified); err != nil {
		e.logger.Warn("replace rejected by syntax guard", "path", relPath, "ident", sel.Ident, "err", err)
		return nil, err
	}

	if preview {
		diff, err := unifiedDiff(relPath, string(src), string(modified))
		if err != nil {
			return nil, err
		}
		return &EditResult{Path: relPath, Preview: true, Diff: diff}, nil
	}

	if err := writeAtomic(absPath, modified); err != nil {
		return nil, err
	}
	if e.reindexer != nil {
		if err := e.reindexer.ReindexFile(relPath); err != nil {
			e.logger.Error("file written but reindex failed; store is stale for this path", "path", relPath, "err", err)
			return nil, err
		}
	}

	return &EditResult{Path: relPath, NewContent: string(modified)}, nil
}

// resolveRange turns sel into a byte range within src: a chunk lookup by
// identifier, or a direct line-to-byte conversion for an explicit range.
func (e *Editor) resolveRange(relPath string, sel Selector, src []byte) (start, end uint32, err error) {
	if sel.Ident != "" {
		file, err := e.store.GetFileByPath(relPath)
		if err != nil {
			return 0, 0, err
		}
		if file == nil {
			return 0, 0, rlmerr.NotFound(relPath, "file is not indexed")
		}
		chunks, err := e.store.ListChunks(file.ID)
		if err != nil {
			return 0, 0, err
		}
		chunk, err := resolveByIdentifier(chunks, sel)
		if err != nil {
			return 0, 0, err
		}
		return chunk.StartByte, chunk.EndByte, nil
	}
	return byteRangeForLines(src, sel.StartLine, sel.EndLine)
}

// spliceBytes returns a new slice equal to src with src[start:end] replaced
// by replacement, never mutating src.
func spliceBytes(src []byte, start, end uint32, replacement []byte) []byte {
	out := make([]byte, 0, len(src)-int(end-start)+len(replacement))
	out = append(out, src[:start]...)
	out = append(out, replacement...)
	out = append(out, src[end:]...)
	return out
}
