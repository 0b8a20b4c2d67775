package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsrust "github.com/smacker/go-tree-sitter/rust"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const rustChunkQuery = `
	(function_item name: (identifier) @fn_name) @fn_def
	(struct_item name: (type_identifier) @struct_name) @struct_def
	(enum_item name: (type_identifier) @enum_name) @enum_def
	(trait_item name: (type_identifier) @trait_name) @trait_def
	(impl_item type: (type_identifier) @impl_name) @impl_def
	(mod_item name: (identifier) @mod_name) @mod_def
	(type_item name: (type_identifier) @type_alias_name) @type_alias_def
	(use_declaration) @import_decl
`

const rustRefQuery = `
	(call_expression function: (identifier) @call_name)
	(call_expression function: (scoped_identifier name: (identifier) @scoped_call))
	(call_expression function: (field_expression field: (field_identifier) @method_call))
	(use_declaration) @import_stmt
	(type_identifier) @type_ref
`

type rustConfig struct{}

func (rustConfig) Language() *sitter.Language { return tsrust.GetLanguage() }
func (rustConfig) Tag() lang.Tag              { return lang.Rust }
func (rustConfig) ChunkQuery() string         { return rustChunkQuery }
func (rustConfig) RefQuery() string           { return rustRefQuery }
func (rustConfig) ImportCaptureName() string  { return "import_decl" }
func (rustConfig) NeedsDedup() bool           { return false }

// ShouldSkip drops nothing: a function_item inside an impl block is kept as
// its own function chunk, with Parent naming the impl's type.
func (rustConfig) ShouldSkip(kind lang.Kind, parent string) bool {
	return false
}

func (rustConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "fn_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindFunction}, true
	case "struct_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindStruct}, true
	case "enum_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindEnum}, true
	case "trait_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindTrait}, true
	case "impl_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindImpl}, true
	case "mod_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindModule}, true
	case "type_alias_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindTypeAlias}, true
	case "fn_def", "struct_def", "enum_def", "trait_def", "impl_def", "mod_def", "type_alias_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (rustConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name", "scoped_call", "method_call":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	case "type_ref":
		return lang.RefTypeUse, true
	default:
		return "", false
	}
}

func (rustConfig) ExtractVisibility(content string) string {
	trimmed := strings.TrimSpace(content)
	switch {
	case strings.HasPrefix(trimmed, "pub(crate)"):
		return "pub(crate)"
	case strings.HasPrefix(trimmed, "pub(super)"):
		return "pub(super)"
	case strings.HasPrefix(trimmed, "pub"):
		return "pub"
	default:
		return "private"
	}
}

func (rustConfig) ExtractSignature(content string, kind lang.Kind) string {
	switch kind {
	case lang.KindFunction:
		return lang.SignatureToBraceOrSemi(content)
	case lang.KindStruct, lang.KindEnum, lang.KindTrait:
		return lang.SignatureToBrace(content)
	default:
		return ""
	}
}

func (rustConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"impl_item"}, "type_identifier")
}

func (rustConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "line_comment", []string{"///", "//!"}, "attribute_item")
}

func (rustConfig) CollectAttr(node *sitter.Node, source []byte) string {
	return lang.CollectAttrByKind(node, source, "attribute_item")
}

// RegisterRust builds the tree-sitter engine for Rust and registers it.
func RegisterRust(r *lang.Registry) error {
	eng, err := lang.NewEngine(rustConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
