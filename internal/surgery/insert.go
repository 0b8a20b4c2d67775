package surgery

import "github.com/sloangwaltney/rlm/internal/rlmerr"

// Position is one of the four insertion anchors spec.md §4.7 names,
// generalized from
// _examples/original_source/src/edit/inserter.rs::InsertPosition's
// Top/Bottom/BeforeLine/AfterLine to the container-aware body_start/
// body_end pair spec.md asks for instead of whole-file Top/Bottom.
type Position struct {
	Kind PositionKind
	Line int // 1-based; used only by PositionBeforeLine/PositionAfterLine
}

// PositionKind is the closed set of insertion anchors.
type PositionKind string

const (
	PositionBodyStart  PositionKind = "body_start"
	PositionBodyEnd    PositionKind = "body_end"
	PositionBeforeLine PositionKind = "before_line"
	PositionAfterLine  PositionKind = "after_line"
)

// containerKinds are the chunk kinds spec.md §4.7 allows a container
// selector to address: "a class/impl/module/interface/struct."
var containerKinds = map[string]bool{
	"class": true, "impl": true, "module": true, "interface": true, "struct": true,
}

// Insert splices code into relPath at position, anchored either to a
// container selector's body (body_start/body_end) or to an explicit line
// (before_line/after_line), validates with the Syntax Guard, and either
// returns a preview diff or writes atomically and enqueues a reindex.
func (e *Editor) Insert(relPath string, container Selector, position Position, code string, preview bool) (*EditResult, error) {
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

	offset, text, err := e.resolveInsertion(relPath, container, position, code, src)
	if err != nil {
		return nil, err
	}

	modified := spliceBytes(src, offset, offset, []byte(text))

	if err := checkSyntax(cap, relPath, modified); err != nil {
		e.logger.Warn("insert rejected by syntax guard", "path", relPath, "err", err)
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

// resolveInsertion returns the byte offset to splice at and the exact text
// to insert there (code wrapped with the newlines/indentation its position
// requires).
func (e *Editor) resolveInsertion(relPath string, container Selector, position Position, code string, src []byte) (uint32, string, error) {
	switch position.Kind {
	case PositionBeforeLine, PositionAfterLine:
		offsets := lineOffsets(src)
		line := position.Line
		if position.Kind == PositionAfterLine {
			line++
		}
		if line < 1 || line > len(offsets) {
			return 0, "", rlmerr.New(rlmerr.KindNotFound, "line is beyond end of file")
		}
		offset := offsets[line-1]
		return uint32(offset), code + "\n", nil

	case PositionBodyStart, PositionBodyEnd:
		file, err := e.store.GetFileByPath(relPath)
		if err != nil {
			return 0, "", err
		}
		if file == nil {
			return 0, "", rlmerr.NotFound(relPath, "file is not indexed")
		}
		chunks, err := e.store.ListChunks(file.ID)
		if err != nil {
			return 0, "", err
		}
		if container.Kind != "" && !containerKinds[container.Kind] {
			return 0, "", rlmerr.New(rlmerr.KindNotFound, "selector kind is not a container")
		}
		chunk, err := resolveByIdentifier(chunks, container)
		if err != nil {
			return 0, "", err
		}

		bodyStart, bodyEnd, indent, ok := bodyBounds([]byte(chunk.Content))
		if !ok {
			return 0, "", rlmerr.New(rlmerr.KindUnsupportedForEdit, "container has no recognizable body")
		}

		if position.Kind == PositionBodyStart {
			return chunk.StartByte + uint32(bodyStart), "\n" + indent + code, nil
		}
		return chunk.StartByte + uint32(bodyEnd), indent + code + "\n", nil

	default:
		return 0, "", rlmerr.New(rlmerr.KindNotFound, "unknown insert position")
	}
}
