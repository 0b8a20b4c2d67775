package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tscss "github.com/smacker/go-tree-sitter/css"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const cssChunkQuery = `
	(rule_set (selectors) @selector) @rule_def
	(media_statement) @media_def
	(keyframes_statement) @keyframes_def
	(import_statement) @import_decl
`

const cssRefQuery = `
	(class_selector (class_name) @class_ref)
	(id_selector (id_name) @id_ref)
`

type cssConfig struct{}

func (cssConfig) Language() *sitter.Language { return tscss.GetLanguage() }
func (cssConfig) Tag() lang.Tag              { return lang.CSS }
func (cssConfig) ChunkQuery() string         { return cssChunkQuery }
func (cssConfig) RefQuery() string           { return cssRefQuery }
func (cssConfig) ImportCaptureName() string  { return "import_decl" }
func (cssConfig) NeedsDedup() bool           { return false }
func (cssConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (cssConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "selector":
		return lang.ChunkCapture{Name: text, Kind: lang.KindRule}, true
	case "rule_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	case "media_def":
		return lang.ChunkCapture{Name: "@media", Kind: lang.KindRule, IsDefRef: true}, true
	case "keyframes_def":
		return lang.ChunkCapture{Name: "@keyframes", Kind: lang.KindRule, IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (cssConfig) MapRefCapture(capName string) (lang.RefKind, bool) {
	switch capName {
	case "class_ref", "id_ref":
		return lang.RefTypeUse, true
	default:
		return "", false
	}
}

func (cssConfig) ExtractVisibility(content string) string { return "" }

func (cssConfig) ExtractSignature(content string, kind lang.Kind) string {
	return lang.SignatureToBrace(content)
}

func (cssConfig) FindParent(node *sitter.Node, source []byte) string  { return "" }
func (cssConfig) CollectDoc(node *sitter.Node, source []byte) string  { return "" }
func (cssConfig) CollectAttr(node *sitter.Node, source []byte) string { return "" }

// RegisterCSS builds the tree-sitter engine for CSS and registers it.
func RegisterCSS(r *lang.Registry) error {
	eng, err := lang.NewEngine(cssConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
