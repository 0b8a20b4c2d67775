package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsphp "github.com/smacker/go-tree-sitter/php"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const phpChunkQuery = `
	(function_definition name: (name) @fn_name) @fn_def
	(class_declaration name: (name) @class_name) @class_def
	(interface_declaration name: (name) @interface_name) @interface_def
	(method_declaration name: (name) @method_name) @method_def
	(namespace_use_declaration) @import_decl
`

const phpRefQuery = `
	(function_call_expression function: (name) @call_name)
	(member_call_expression name: (name) @method_call)
	(namespace_use_declaration) @import_stmt
`

type phpConfig struct{}

func (phpConfig) Language() *sitter.Language { return tsphp.GetLanguage() }
func (phpConfig) Tag() lang.Tag              { return lang.PHP }
func (phpConfig) ChunkQuery() string         { return phpChunkQuery }
func (phpConfig) RefQuery() string           { return phpRefQuery }
func (phpConfig) ImportCaptureName() string  { return "import_decl" }
func (phpConfig) NeedsDedup() bool           { return false }
func (phpConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (phpConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "fn_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindFunction}, true
	case "class_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindClass}, true
	case "interface_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindInterface}, true
	case "method_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindMethod}, true
	case "fn_def", "class_def", "interface_def", "method_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (phpConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name", "method_call":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	default:
		return "", false
	}
}

func (phpConfig) ExtractVisibility(content string) string {
	switch {
	case hasWord(content, "private"):
		return "private"
	case hasWord(content, "protected"):
		return "protected"
	case hasWord(content, "public"):
		return "public"
	default:
		return ""
	}
}

func (phpConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToBrace(content)
}

func (phpConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"class_declaration"}, "name")
}

func (phpConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "comment", []string{"/**"}, "")
}

func (phpConfig) CollectAttr(node *sitter.Node, source []byte) string {
	return lang.CollectAttrByKind(node, source, "attribute_list")
}

// RegisterPHP builds the tree-sitter engine for PHP and registers it.
func RegisterPHP(r *lang.Registry) error {
	eng, err := lang.NewEngine(phpConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
