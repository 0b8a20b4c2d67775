package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tscsharp "github.com/smacker/go-tree-sitter/csharp"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const csharpChunkQuery = `
	(class_declaration name: (identifier) @class_name) @class_def
	(interface_declaration name: (identifier) @interface_name) @interface_def
	(struct_declaration name: (identifier) @struct_name) @struct_def
	(enum_declaration name: (identifier) @enum_name) @enum_def
	(method_declaration name: (identifier) @method_name) @method_def
	(using_directive) @import_decl
`

const csharpRefQuery = `
	(invocation_expression function: (identifier) @call_name)
	(using_directive) @import_stmt
`

type csharpConfig struct{}

func (csharpConfig) Language() *sitter.Language { return tscsharp.GetLanguage() }
func (csharpConfig) Tag() lang.Tag              { return lang.CSharp }
func (csharpConfig) ChunkQuery() string         { return csharpChunkQuery }
func (csharpConfig) RefQuery() string           { return csharpRefQuery }
func (csharpConfig) ImportCaptureName() string  { return "import_decl" }
func (csharpConfig) NeedsDedup() bool           { return false }
func (csharpConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (csharpConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "class_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindClass}, true
	case "interface_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindInterface}, true
	case "struct_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindStruct}, true
	case "enum_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindEnum}, true
	case "method_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindMethod}, true
	case "class_def", "interface_def", "struct_def", "enum_def", "method_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (csharpConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	default:
		return "", false
	}
}

func (csharpConfig) ExtractVisibility(content string) string {
	switch {
	case hasWord(content, "private"):
		return "private"
	case hasWord(content, "protected"):
		return "protected"
	case hasWord(content, "internal"):
		return "internal"
	case hasWord(content, "public"):
		return "public"
	default:
		return ""
	}
}

func (csharpConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToBrace(content)
}

func (csharpConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"class_declaration", "struct_declaration"}, "identifier")
}

func (csharpConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "comment", []string{"///"}, "")
}

func (csharpConfig) CollectAttr(node *sitter.Node, source []byte) string {
	return lang.CollectAttrByKind(node, source, "attribute_list")
}

// RegisterCSharp builds the tree-sitter engine for C# and registers it.
func RegisterCSharp(r *lang.Registry) error {
	eng, err := lang.NewEngine(csharpConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
