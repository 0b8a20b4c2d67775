package broker

import "github.com/sloangwaltney/rlm/internal/surgery"

// Replace substitutes new-code for the chunk selector identifies in path —
// spec.md §4.7's replace operation.
func (b *Broker) Replace(path string, selector surgery.Selector, newCode string, preview bool) (*surgery.EditResult, error) {
	return b.editor.Replace(path, selector, newCode, preview)
}

// Insert splices code into path at position, anchored to container when
// position is body_start/body_end — spec.md §4.7's insert operation.
func (b *Broker) Insert(path string, container surgery.Selector, position surgery.Position, code string, preview bool) (*surgery.EditResult, error) {
	return b.editor.Insert(path, container, position, code, preview)
}
