package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"

	"github.com/sloangwaltney/rlm/internal/lang"
)

// Unlike original_source's HtmlParser, this query skips the #eq? predicate
// that singles out elements carrying an id attribute — go-tree-sitter's
// QueryCursor here runs without predicate filtering, so every element is a
// chunk and the identifier comes from its tag name instead.
const htmlChunkQuery = `
	(element (start_tag (tag_name) @tag_name)) @element_def
	(script_element) @script_def
	(style_element) @style_def
`

type htmlConfig struct{}

func (htmlConfig) Language() *sitter.Language { return tshtml.GetLanguage() }
func (htmlConfig) Tag() lang.Tag              { return lang.HTML }
func (htmlConfig) ChunkQuery() string         { return htmlChunkQuery }
func (htmlConfig) RefQuery() string           { return "" } // HTML extraction records no references
func (htmlConfig) ImportCaptureName() string  { return "" }
func (htmlConfig) NeedsDedup() bool           { return false }
func (htmlConfig) ShouldSkip(lang.Kind, string) bool { return false }

func (htmlConfig) MapChunkCapture(capName, text string) (lang.ChunkCapture, bool) {
	switch capName {
	case "tag_name":
		return lang.ChunkCapture{Name: text, Kind: lang.KindElement}, true
	case "element_def":
		return lang.ChunkCapture{IsDefRef: true}, true
	case "script_def":
		return lang.ChunkCapture{Name: "script", Kind: lang.KindElement, IsDefRef: true}, true
	case "style_def":
		return lang.ChunkCapture{Name: "style", Kind: lang.KindElement, IsDefRef: true}, true
	default:
		return lang.ChunkCapture{}, false
	}
}

func (htmlConfig) MapRefCapture(capName string) (lang.RefKind, bool) { return "", false }

func (htmlConfig) ExtractVisibility(content string) string { return "" }

func (htmlConfig) ExtractSignature(content string, kind lang.Kind) string {
	if i := indexOf(content, ">"); i >= 0 {
		return content[:i+1]
	}
	return content
}

func (htmlConfig) FindParent(node *sitter.Node, source []byte) string { return "" }
func (htmlConfig) CollectDoc(node *sitter.Node, source []byte) string { return "" }
func (htmlConfig) CollectAttr(node *sitter.Node, source []byte) string { return "" }

// RegisterHTML builds the tree-sitter engine for HTML and registers it.
func RegisterHTML(r *lang.Registry) error {
	eng, err := lang.NewEngine(htmlConfig{})
	if err != nil {
		return err
	}
	r.Register(eng)
	return nil
}
