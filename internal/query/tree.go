package query

import "github.com/sloangwaltney/rlm/internal/store"

// Tree returns the hierarchical path listing under prefix, annotated with
// per-file chunk-kind counts — spec.md §4.5's tree_view, restated here so
// callers go through the Query Engine like every other projection rather
// than reaching into internal/store directly. Grounded on
// _examples/original_source/src/search/tree.rs::build_tree's directory
// assembly, here just a pass-through since internal/store.TreeView already
// does the grouping and sort.
func (e *Engine) Tree(prefix string) ([]store.TreeNode, error) {
	return e.store.TreeView(prefix)
}
