// Package languages registers one lang.Capability per AST-aware language.
// Each file pairs a tree-sitter grammar with a lang.LanguageConfig and hands
// it to lang.NewEngine, so the extraction algorithm itself lives in one
// place (internal/lang/treesitter.go) instead of being copied per language.
package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsgo "github.com/smacker/go-tree-sitter/golang"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const goChunkQuery = `
	(function_declaration name: (identifier) @fn_name) @fn_def
	(method_declaration name: (field_identifier) @method_name) @method_def
	(type_declaration (type_spec name: (type_identifier) @type_name)) @type_def
	(import_declaration) @import_decl
`

const goRefQuery = `
	(call_expression function: (identifier) @call_name)
	(call_expression function: (selector_expression field: (field_identifier) @method_call))
	(import_spec path: (interpreted_string_literal) @import_path)
	(import_spec name: (package_identifier) @import_alias)
	(type_identifier) @type_ref
`

type goConfig struct{}

func (goConfig) Language() *sitter.Language { return tsgo.GetLanguage() }
func (goConfig) Tag() lang.Tag              { return lang.Go }
func (goConfig) ChunkQuery() string         { return goChunkQuery }
func (goConfig) RefQuery() string           { return goRefQuery }
func (goConfig) ImportCaptureName() string  { return "import_decl" }
func (goConfig) NeedsDedup() bool           { return false }
func (goConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (goConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "fn_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindFunction}, true
	case "method_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindMethod}, true
	case "type_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindStruct}, true
	case "fn_def", "method_def", "type_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (goConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "call_name", "method_call":
		return lang.RefCall, true
	case "import_path", "import_alias":
		return lang.RefImport, true
	case "type_ref":
		return lang.RefTypeUse, true
	default:
		return "", false
	}
}

// ExtractVisibility follows Go's export convention: an uppercase first rune
// in the identifier means exported. The identifier itself isn't passed in,
// so this inspects the leading token of content instead (works for
// function/method/type headers, which all start with the identifier's
// owning keyword followed by the name on the same line for the common case).
func (goConfig) ExtractVisibility(content string) string {
	name := firstIdentAfterKeyword(content)
	if name == "" {
		return ""
	}
	if r := []rune(name)[0]; r >= 'A' && r <= 'Z' {
		return "pub"
	}
	return "private"
}

func (goConfig) ExtractSignature(content string, kind lang.Kind) string {
	switch kind {
	case lang.KindFunction, lang.KindMethod:
		return lang.SignatureToBrace(content)
	case lang.KindStruct:
		return lang.SignatureToBrace(content)
	default:
		return ""
	}
}

func (goConfig) FindParent(node *sitter.Node, source []byte) string { return "" }

func (goConfig) CollectDoc(node *sitter.Node, source []byte) string {
	return lang.CollectDocByPrefix(node, source, "comment", []string{"//", "/*"}, "")
}

func (goConfig) CollectAttr(node *sitter.Node, source []byte) string { return "" }

// firstIdentAfterKeyword finds the identifier following "func", "type", or
// a receiver's closing paren, good enough to classify exported-vs-not
// without re-parsing the header.
func firstIdentAfterKeyword(content string) string {
	fields := splitHeaderFields(content)
	for i, f := range fields {
		if f == "func" || f == "type" {
			if i+1 < len(fields) {
				cand := fields[i+1]
				if len(cand) > 0 && cand[0] == '(' {
					// method receiver; name is after the receiver group's
					// closing paren.
					j := i + 1
					for j < len(fields) && fields[j][len(fields[j])-1] != ')' {
						j++
					}
					if j+1 < len(fields) {
						return trimIdent(fields[j+1])
					}
					continue
				}
				return trimIdent(cand)
			}
		}
	}
	return ""
}

func splitHeaderFields(content string) []string {
	var fields []string
	var cur []byte
	for i := 0; i < len(content) && content[i] != '{' && content[i] != '\n'; i++ {
		c := content[i]
		if c == ' ' || c == '\t' {
			if len(cur) > 0 {
				fields = append(fields, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		fields = append(fields, string(cur))
	}
	return fields
}

func trimIdent(s string) string {
	start := 0
	for start < len(s) && s[start] == '(' {
		start++
	}
	end := len(s)
	for end > start {
		c := s[end-1]
		if c == '(' || c == ')' || c == ',' {
			end--
			continue
		}
		break
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}

// RegisterGo builds the tree-sitter engine for Go and registers it.
func RegisterGo(r *lang.Registry) error {
	eng, err := lang.NewEngine(goConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
