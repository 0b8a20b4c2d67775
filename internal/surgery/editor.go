// Package surgery implements the Surgical Editor: selector resolution,
// the Syntax Guard, byte-range splicing for replace/insert, and the
// atomic write sequence — spec.md §4.7.
package surgery

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sloangwaltney/rlm/internal/lang"
	"github.com/sloangwaltney/rlm/internal/rlmerr"
	"github.com/sloangwaltney/rlm/internal/store"
)

// Reindexer enqueues a reindex of one path after a successful write, so
// the Store reflects reality — spec.md §4.7's "enqueue a reindex of this
// path." internal/broker wires this to internal/pipeline.
type Reindexer interface {
	ReindexFile(relPath string) error
}

// EditResult is the outcome of a replace or insert: either a unified diff
// (preview mode) or the full new file content (written mode).
type EditResult struct {
	Path       string
	Preview    bool
	Diff       string
	NewContent string
}

// Editor performs Syntax-Guarded edits against files under root, backed by
// store for chunk lookups and registry for language capabilities.
type Editor struct {
	root      string
	store     store.Store
	registry  *lang.Registry
	locks     *LockSet
	reindexer Reindexer
	logger    *slog.Logger
}

// New returns an Editor rooted at root.
func New(root string, s store.Store, reg *lang.Registry, reindexer Reindexer) *Editor {
	return &Editor{root: root, store: s, registry: reg, locks: NewLockSet(), reindexer: reindexer, logger: slog.Default()}
}

// WithLogger overrides the default logger the Editor reports diagnostics
// (Syntax Guard rejections, post-write reindex failures) through.
func (e *Editor) WithLogger(l *slog.Logger) *Editor {
	e.logger = l
	return e
}

// capabilityFor resolves relPath's language capability, rejecting
// non-code and unknown languages per spec.md §4.7's failure model
// ("parser unavailable for the language ... plain-text files cannot be
// surgically edited").
func (e *Editor) capabilityFor(relPath string) (lang.Capability, error) {
	cap, tag := e.registry.Lookup(relPath)
	if cap == nil {
		return nil, rlmerr.UnsupportedForEdit(string(tag))
	}
	if !cap.IsCode() {
		return nil, rlmerr.UnsupportedForEdit(string(tag))
	}
	return cap, nil
}

func (e *Editor) readFile(relPath string) ([]byte, string, error) {
	absPath := filepath.Join(e.root, relPath)
	src, err := os.ReadFile(absPath)
	if err != nil {
		return nil, "", rlmerr.IO(relPath, err)
	}
	return src, absPath, nil
}

// writeAtomic writes content to absPath via a sibling temp file, fsync,
// rename, and a directory fsync — spec.md §4.7's atomic-write sequence,
// restated from _examples/original_source/src/edit/syntax_guard.rs's
// temp-write-then-rename (which never fsyncs either the file or the
// directory, since a single-filesystem Rust process didn't need to
// demonstrate that step explicitly; Go's os.File exposes Sync directly).
func writeAtomic(absPath string, content []byte) error {
	dir := filepath.Dir(absPath)
	tmp, err := os.CreateTemp(dir, ".rlm_tmp_*")
	if err != nil {
		return rlmerr.IO(absPath, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return rlmerr.IO(absPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return rlmerr.IO(absPath, err)
	}
	if err := tmp.Close(); err != nil {
		return rlmerr.IO(absPath, err)
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		return rlmerr.IO(absPath, err)
	}

	dirHandle, err := os.Open(dir)
	if err != nil {
		return rlmerr.IO(absPath, err)
	}
	defer dirHandle.Close()
	return dirHandle.Sync()
}
