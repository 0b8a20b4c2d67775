package broker

import (
	"github.com/sloangwaltney/rlm/internal/query"
	"github.com/sloangwaltney/rlm/internal/store"
)

// Tree returns the hierarchical path listing under prefix, annotated with
// per-file chunk-kind counts — spec.md §4.5.
func (b *Broker) Tree(prefix string) ([]store.TreeNode, error) {
	return b.query.Tree(prefix)
}

// Map lists every chunk in path without content — spec.md §4.6's map
// projection.
func (b *Broker) Map(path string) (*query.FileMap, error) {
	return b.query.Map(path)
}

// Peek returns a short preview of the chunk path/symbol resolves to —
// spec.md §4.6's peek projection.
func (b *Broker) Peek(path, symbol string) (*query.PeekResult, error) {
	return b.query.Peek(path, symbol)
}

// Read resolves path/symbol to its full chunk, content included.
func (b *Broker) Read(path, symbol string) (*store.Chunk, error) {
	return b.query.Read(path, symbol)
}

// Search runs a full-text search over indexed chunk content and
// identifiers — spec.md §4.5's search_full_text.
func (b *Broker) Search(q string, limit, offset int) ([]store.SearchHit, error) {
	return b.store.SearchFullText(q, limit, offset)
}

// FindByIdentifier returns every chunk named name, optionally restricted
// to kinds — spec.md §4.5's find_by_identifier.
func (b *Broker) FindByIdentifier(name string, caseSensitive bool, kinds []string) ([]store.ChunkSummary, error) {
	return b.store.FindByIdentifier(name, caseSensitive, kinds)
}

// References reports every use site of name, excluding its own
// definition — spec.md §4.5's scan_for_references.
func (b *Broker) References(name string) ([]store.ReferenceHit, error) {
	return b.store.ScanForReferences(name)
}

// Impact builds a best-effort call-graph/impact view for name — spec.md
// §4.6.
func (b *Broker) Impact(name string) (*query.ImpactView, error) {
	return b.query.Impact(name)
}
