package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsjavascript "github.com/smacker/go-tree-sitter/javascript"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const javascriptChunkQuery = `
	(function_declaration name: (identifier) @fn_name) @fn_def
	(class_declaration name: (identifier) @class_name) @class_def
	(method_definition name: (property_identifier) @method_name) @method_def
	(export_statement (function_declaration name: (identifier) @fn_name)) @fn_def
	(export_statement (class_declaration name: (identifier) @class_name)) @class_def
	(lexical_declaration (variable_declarator name: (identifier) @arrow_name value: (arrow_function))) @arrow_def
	(import_statement) @import_decl
`

const javascriptRefQuery = `
	(call_expression function: (identifier) @call_name)
	(call_expression function: (member_expression property: (property_identifier) @method_call))
	(import_statement) @import_stmt
`

type javascriptConfig struct{}

func (javascriptConfig) Language() *sitter.Language { return tsjavascript.GetLanguage() }
func (javascriptConfig) Tag() lang.Tag              { return lang.JavaScript }
func (javascriptConfig) ChunkQuery() string         { return javascriptChunkQuery }
func (javascriptConfig) RefQuery() string           { return javascriptRefQuery }
func (javascriptConfig) ImportCaptureName() string  { return "import_decl" }
func (javascriptConfig) NeedsDedup() bool           { return false }
func (javascriptConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (javascriptConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "fn_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindFunction}, true
	case "class_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindClass}, true
	case "method_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindMethod}, true
	case "arrow_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindArrowFunction}, true
	case "fn_def", "class_def", "method_def", "arrow_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (javascriptConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name", "method_call":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	default:
		return "", false
	}
}

func (javascriptConfig) ExtractVisibility(content string) string { return "" }

func (javascriptConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToBrace(content)
}

func (javascriptConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"class_declaration", "class"}, "identifier")
}

func (javascriptConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "comment", []string{"/**", "//"}, "")
}

func (javascriptConfig) CollectAttr(node *sitter.Node, source []byte) string { return "" }

// RegisterJavaScript builds the tree-sitter engine for JavaScript and registers it.
func RegisterJavaScript(r *lang.Registry) error {
	eng, err := lang.NewEngine(javascriptConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
