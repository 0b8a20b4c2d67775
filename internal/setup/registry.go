// Package setup builds the shared lang.Registry once, wiring every
// AST-aware language (internal/lang/languages) and every text-based
// capability (internal/lang/text) into it. internal/pipeline, internal/query
// and internal/surgery all need the same fully-populated registry, and
// internal/lang itself cannot import either subpackage without a cycle, so
// this is the one place composition happens.
package setup

import (
	"fmt"

	"github.com/sloangwaltney/rlm/internal/lang"
	"github.com/sloangwaltney/rlm/internal/lang/languages"
	"github.com/sloangwaltney/rlm/internal/lang/text"
)

// NewRegistry returns a lang.Registry with every supported language and
// format capability registered.
func NewRegistry() (*lang.Registry, error) {
	r := lang.NewRegistry()
	if err := languages.RegisterAll(r); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	text.RegisterAll(r)
	return r, nil
}
