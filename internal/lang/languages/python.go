package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const pythonChunkQuery = `
	(function_definition name: (identifier) @fn_name) @fn_def
	(class_definition name: (identifier) @class_name) @class_def
	(decorated_definition definition: (function_definition name: (identifier) @fn_name)) @decorated_fn_def
	(decorated_definition definition: (class_definition name: (identifier) @class_name)) @decorated_class_def
	(import_statement) @import_decl
	(import_from_statement) @import_decl
`

const pythonRefQuery = `
	(call function: (identifier) @call_name)
	(call function: (attribute attribute: (identifier) @method_call))
	(import_statement) @import_stmt
	(import_from_statement) @import_stmt
`

type pythonConfig struct{}

func (pythonConfig) Language() *sitter.Language { return tspython.GetLanguage() }
func (pythonConfig) Tag() lang.Tag              { return lang.Python }
func (pythonConfig) ChunkQuery() string         { return pythonChunkQuery }
func (pythonConfig) RefQuery() string           { return pythonRefQuery }
func (pythonConfig) ImportCaptureName() string  { return "import_decl" }
func (pythonConfig) NeedsDedup() bool           { return true } // decorated_definition wraps a plain one

func (pythonConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (pythonConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "fn_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindFunction}, true
	case "class_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindClass}, true
	case "fn_def", "decorated_fn_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	case "class_def", "decorated_class_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (pythonConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name", "method_call":
		return lang.RefCall, true
	case "import_stmt":
		return lang.RefImport, true
	default:
		return "", false
	}
}

func (pythonConfig) ExtractVisibility(content string) string {
	name := pythonDefName(content)
	if name == "" {
		return ""
	}
	if len(name) >= 2 && name[0] == '_' && name[1] == '_' {
		return "private"
	}
	if name[0] == '_' {
		return "private"
	}
	return "public"
}

func pythonDefName(content string) string {
	for _, kw := range []string{"def ", "class "} {
		if i := indexOf(content, kw); i >= 0 {
			rest := content[i+len(kw):]
			end := 0
			for end < len(rest) && rest[end] != '(' && rest[end] != ':' && rest[end] != ' ' {
				end++
			}
			return rest[:end]
		}
	}
	return ""
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func (pythonConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToColon(content)
}

func (pythonConfig) FindParent(node *sitter.Node, source []byte) string {
	return lang.FindParentByKinds(node, source, []string{"class_definition"}, "identifier")
}

func (pythonConfig) CollectDoc(node *sitter.Node, source []byte) string {
	// Python docstrings are the first statement inside the body, not a
	// leading comment, so there is nothing to walk backward over here;
	// the docstring survives as part of Content instead.
	return ""
}

func (pythonConfig) CollectAttr(node *sitter.Node, source []byte) string {
	return lang.CollectAttrByKind(node, source, "decorator")
}

// RegisterPython builds the tree-sitter engine for Python and registers it.
func RegisterPython(r *lang.Registry) error {
	eng, err := lang.NewEngine(pythonConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
