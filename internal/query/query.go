// Package query is a thin adapter over internal/store: it resolves
// symbolic requests ("read file X, symbol Y") to a concrete chunk,
// assembles best-effort call-graph/impact views, and serves the
// progressive-disclosure projections (tree, map, peek) purely from indexed
// data — spec.md §4.6. There is no pack analog for this layer; synapse has
// no equivalent query-resolution step, so its shape follows spec.md's prose
// directly rather than an existing file.
package query

import (
	"sort"
	"strings"

	"github.com/sloangwaltney/rlm/internal/rlmerr"
	"github.com/sloangwaltney/rlm/internal/store"
)

// kindPriority orders chunk kinds spec.md §4.6 prefers when a symbol name
// resolves to more than one kind: "prefer kinds function/method/class/
// struct/trait/interface/enum." Kinds absent from this list sort last.
var kindPriority = map[string]int{
	"function":  0,
	"method":    1,
	"class":     2,
	"struct":    3,
	"trait":     4,
	"interface": 5,
	"enum":      6,
}

func priorityOf(kind string) int {
	if p, ok := kindPriority[kind]; ok {
		return p
	}
	return len(kindPriority)
}

// Engine answers symbol-resolution and projection queries against a Store.
type Engine struct {
	store store.Store
}

// New returns an Engine backed by s.
func New(s store.Store) *Engine {
	return &Engine{store: s}
}

// ResolveSymbol finds the single chunk named symbol, scoped to path if
// path is non-empty. Identifiers match exactly (guaranteed by the lookup).
// With a path, candidates are limited to that file and ordered by earliest
// line, then kind preference; without one, by kind preference, then
// earliest line.
func (e *Engine) ResolveSymbol(path, symbol string) (*store.Chunk, error) {
	if path != "" {
		return e.resolveInFile(path, symbol)
	}

	candidates, err := e.store.FindByIdentifier(symbol, true, nil)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, rlmerr.NotFound(symbol, "no chunk with this identifier is indexed")
	}

	best := bestCandidate(candidates)
	return e.loadChunk(best.FilePath, best.ID)
}

func (e *Engine) resolveInFile(path, symbol string) (*store.Chunk, error) {
	file, err := e.store.GetFileByPath(path)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, rlmerr.NotFound(path, "file is not indexed")
	}

	chunks, err := e.store.ListChunks(file.ID)
	if err != nil {
		return nil, err
	}

	matches := make([]store.Chunk, 0, 1)
	for _, c := range chunks {
		if c.Ident == symbol {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, rlmerr.NotFound(path, "no chunk named "+symbol+" in this file")
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].StartLine != matches[j].StartLine {
			return matches[i].StartLine < matches[j].StartLine
		}
		return priorityOf(matches[i].Kind) < priorityOf(matches[j].Kind)
	})
	winner := matches[0]
	return &winner, nil
}

// bestCandidate picks the winning summary from a cross-repo candidate set
// using kind preference first, then earliest line — the file-scope
// criterion never applies here since no path was given.
func bestCandidate(candidates []store.ChunkSummary) store.ChunkSummary {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if priorityOf(c.Kind) < priorityOf(best.Kind) {
			best = c
			continue
		}
		if priorityOf(c.Kind) == priorityOf(best.Kind) && c.StartLine < best.StartLine {
			best = c
		}
	}
	return best
}

func (e *Engine) loadChunk(path string, chunkID int64) (*store.Chunk, error) {
	file, err := e.store.GetFileByPath(path)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, rlmerr.NotFound(path, "file is not indexed")
	}
	chunks, err := e.store.ListChunks(file.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.ID == chunkID {
			return &c, nil
		}
	}
	return nil, rlmerr.NotFound(path, "resolved chunk no longer exists")
}

// Read resolves path/symbol to its full chunk, content included — the
// costliest of the progressive-disclosure operations.
func (e *Engine) Read(path, symbol string) (*store.Chunk, error) {
	return e.ResolveSymbol(path, symbol)
}

// peekPreviewLines bounds how much of a chunk's content Peek returns.
const peekPreviewLines = 3

// PeekResult is a cheap preview of a chunk: its summary, signature and doc
// (if the language capability extracted them), and a short content
// preview, without the chunk's full body.
type PeekResult struct {
	store.ChunkSummary
	Signature string
	Doc       string
	Preview   string
}

// Peek resolves path/symbol and returns a short preview rather than full
// content, for callers following spec.md's progressive-disclosure
// discipline (tree, map, peek before read).
func (e *Engine) Peek(path, symbol string) (*PeekResult, error) {
	c, err := e.ResolveSymbol(path, symbol)
	if err != nil {
		return nil, err
	}
	lines := strings.SplitN(c.Content, "\n", peekPreviewLines+1)
	if len(lines) > peekPreviewLines {
		lines = lines[:peekPreviewLines]
	}
	return &PeekResult{
		ChunkSummary: store.ChunkSummary{
			ID: c.ID, FilePath: path, Kind: c.Kind, Ident: c.Ident,
			StartLine: c.StartLine, EndLine: c.EndLine,
		},
		Signature: c.Signature,
		Doc:       c.Doc,
		Preview:   strings.Join(lines, "\n"),
	}, nil
}

// FileMap is a per-file symbol listing: spec.md §4.6's "map" projection.
type FileMap struct {
	Path     string
	Language string
	Quality  string
	Chunks   []store.ChunkSummary
}

// Map lists every chunk in path without content, erroring if path is not
// indexed rather than reading the filesystem — spec.md §4.6.
func (e *Engine) Map(path string) (*FileMap, error) {
	file, err := e.store.GetFileByPath(path)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, rlmerr.NotFound(path, "file is not indexed")
	}
	chunks, err := e.store.ListChunks(file.ID)
	if err != nil {
		return nil, err
	}
	summaries := make([]store.ChunkSummary, len(chunks))
	for i, c := range chunks {
		summaries[i] = store.ChunkSummary{
			ID: c.ID, FilePath: path, Kind: c.Kind, Ident: c.Ident,
			StartLine: c.StartLine, EndLine: c.EndLine,
		}
	}
	return &FileMap{Path: path, Language: file.Language, Quality: file.Quality, Chunks: summaries}, nil
}

// ImpactView is the best-effort call-graph/impact result spec.md §4.6
// requires be marked heuristic in its response, since it has no static
// type information to resolve overloads or shadowed names.
type ImpactView struct {
	Name        string
	Definitions []store.ChunkSummary
	References  []store.ReferenceHit
	BestEffort  bool
}

// Impact builds a best-effort call-graph/impact view for name by combining
// definitions (find_by_identifier) with use sites (scan_for_references) —
// spec.md §4.6.
func (e *Engine) Impact(name string) (*ImpactView, error) {
	defs, err := e.store.FindByIdentifier(name, true, nil)
	if err != nil {
		return nil, err
	}
	refs, err := e.store.ScanForReferences(name)
	if err != nil {
		return nil, err
	}
	return &ImpactView{Name: name, Definitions: defs, References: refs, BestEffort: true}, nil
}
