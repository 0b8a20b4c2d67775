package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const javaChunkQuery = `
	(class_declaration name: (identifier) @class_name) @class_def
	(interface_declaration name: (identifier) @interface_name) @interface_def
	(enum_declaration name: (identifier) @enum_name) @enum_def
	(method_declaration name: (identifier) @method_name) @method_def
	(import_declaration) @import_decl
`

const javaRefQuery = `
	(method_invocation name: (identifier) @call_name)
	(import_declaration) @import_stmt
	(type_identifier) @type_ref
`

type javaConfig struct{}

func (javaConfig) Language() *sitter.Language { return tsjava.GetLanguage() }
func (javaConfig) Tag() lang.Tag              { return lang.Java }
func (javaConfig) ChunkQuery() string         { return javaChunkQuery }
func (javaConfig) RefQuery() string           { return javaRefQuery }
func (javaConfig) ImportCaptureName() string  { return "import_decl" }
func (javaConfig) NeedsDedup() bool           { return false }
func (javaConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (javaConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "class_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindClass}, true
	case "interface_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindInterface}, true
	case "enum_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindEnum}, true
	case "method_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindMethod}, true
	case "class_def", "interface_def", "enum_def", "method_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (javaConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	case "type_ref":
		return lang.RefTypeUse, true
	default:
		return "", false
	}
}

func (javaConfig) ExtractVisibility(content string) string {
	switch {
	case hasWord(content, "private"):
		return "private"
	case hasWord(content, "protected"):
		return "protected"
	case hasWord(content, "public"):
		return "public"
	default:
		return "package"
	}
}

func (javaConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToBrace(content)
}

func (javaConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"class_declaration", "interface_declaration"}, "identifier")
}

func (javaConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "block_comment", []string{"/**"}, "")
}

func (javaConfig) CollectAttr(node *sitter.Node, source []byte) string {
	return lang.CollectAttrByKind(node, source, "annotation")
}

// RegisterJava builds the tree-sitter engine for Java and registers it.
func RegisterJava(r *lang.Registry) error {
	eng, err := lang.NewEngine(javaConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
