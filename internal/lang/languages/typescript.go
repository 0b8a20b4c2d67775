package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tstsx "github.com/smacker/go-tree-sitter/typescript/tsx"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const typescriptChunkQuery = `
	(function_declaration name: (identifier) @fn_name) @fn_def
	(class_declaration name: (type_identifier) @class_name) @class_def
	(method_definition name: (property_identifier) @method_name) @method_def
	(export_statement (function_declaration name: (identifier) @fn_name)) @fn_def
	(export_statement (class_declaration name: (type_identifier) @class_name)) @class_def
	(lexical_declaration (variable_declarator name: (identifier) @arrow_name value: (arrow_function))) @arrow_def
	(interface_declaration name: (type_identifier) @interface_name) @interface_def
	(type_alias_declaration name: (type_identifier) @alias_name) @alias_def
	(import_statement) @import_decl
`

const typescriptRefQuery = `
	(call_expression function: (identifier) @call_name)
	(call_expression function: (member_expression property: (property_identifier) @method_call))
	(import_statement) @import_stmt
	(type_identifier) @type_ref
`

// typescriptConfig serves both the plain TypeScript and TSX tags; only the
// grammar and tag differ (TSX's grammar is a superset that also parses JSX).
type typescriptConfig struct {
	language *sitter.Language
	tag      lang.Tag
}

func (c typescriptConfig) Language() *sitter.Language { return c.language }
func (c typescriptConfig) Tag() lang.Tag              { return c.tag }
func (typescriptConfig) ChunkQuery() string           { return typescriptChunkQuery }
func (typescriptConfig) RefQuery() string             { return typescriptRefQuery }
func (typescriptConfig) ImportCaptureName() string    { return "import_decl" }
func (typescriptConfig) NeedsDedup() bool             { return false }
func (typescriptConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (typescriptConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "fn_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindFunction}, true
	case "class_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindClass}, true
	case "method_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindMethod}, true
	case "arrow_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindArrowFunction}, true
	case "interface_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindInterface}, true
	case "alias_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindTypeAlias}, true
	case "fn_def", "class_def", "method_def", "arrow_def", "interface_def", "alias_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (typescriptConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name", "method_call":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	case "type_ref":
		return lang.RefTypeUse, true
	default:
		return "", false
	}
}

func (typescriptConfig) ExtractVisibility(content string) string {
	switch {
	case hasWord(content, "private"):
		return "private"
	case hasWord(content, "protected"):
		return "protected"
	case hasWord(content, "export"):
		return "public"
	default:
		return ""
	}
}

func hasWord(content, word string) bool {
	return indexOf(content, word+" ") == 0 || indexOf(content, " "+word+" ") >= 0
}

func (typescriptConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToBraceOrSemi(content)
}

func (typescriptConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"class_declaration", "class_body"}, "type_identifier")
}

func (typescriptConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "comment", []string{"/**", "//"}, "")
}

func (typescriptConfig) CollectAttr(node *sitter.Node, source []byte) string { return "" }

// RegisterTypeScript builds the tree-sitter engine for TypeScript and registers it.
func RegisterTypeScript(r *lang.Registry) error {
	eng, err := lang.NewEngine(typescriptConfig{language: tstypescript.GetLanguage(), tag: lang.TypeScript})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}

// RegisterTSX builds the tree-sitter engine for TSX and registers it.
func RegisterTSX(r *lang.Registry) error {
	eng, err := lang.NewEngine(typescriptConfig{language: tstsx.GetLanguage(), tag: lang.TSX})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
