package languages

import (
	"fmt"

	"github.com/sloangwaltney/rlm/internal/lang"
)

// RegisterAll wires every tree-sitter-backed Capability into r. Grounded on
// synapse's internal/index/indexer.go, which inline-calls one Register* per
// language; gathered here into one entry point since this module has eleven
// AST-aware languages instead of four.
func RegisterAll(r *lang.Registry) error {
	registrars := []struct {
		name string
		fn   func(*lang.Registry) error
	}{
		{"go", RegisterGo},
		{"python", RegisterPython},
		{"javascript", RegisterJavaScript},
		{"typescript", RegisterTypeScript},
		{"tsx", RegisterTSX},
		{"java", RegisterJava},
		{"csharp", RegisterCSharp},
		{"php", RegisterPHP},
		{"rust", RegisterRust},
		{"html", RegisterHTML},
		{"css", RegisterCSS},
	}
	for _, reg := range registrars {
		if err := reg.fn(r); err != nil {
			return fmt.Errorf("register %s: %w", reg.name, err)
		}
	}
	return nil
}
