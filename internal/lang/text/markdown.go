package text

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/sloangwaltney/rlm/internal/lang"
)

// Markdown chunks a document into heading-bounded sections, same semantics
// as original_source's ingest/text/markdown.rs MarkdownParser (a section
// runs from one heading to the byte before the next heading of equal or
// higher level — so a subsection's content stays inside its parent's
// chunk — and a section's parent is the nearest preceding heading at a
// lower level) but located via a real
// CommonMark AST (goldmark) instead of a hand-rolled "starts with '#'" line
// scan, since nothing in the pack hand-rolls markdown parsing either.
type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

func (*Markdown) Language() lang.Tag { return lang.Markdown }
func (*Markdown) IsCode() bool       { return false }

type heading struct {
	level     int
	title     string
	startByte int
}

func (m *Markdown) Extract(path string, src []byte) (lang.ParseResult, error) {
	doc := m.md.Parser().Parse(gmtext.NewReader(src))

	var headings []heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		start := len(src)
		if lines.Len() > 0 {
			start = lines.At(0).Start
			// The text segment of an ATX heading starts after its "#" markers;
			// back up to the start of the line so the chunk includes them.
			for start > 0 && src[start-1] != '\n' {
				start--
			}
		}
		headings = append(headings, heading{
			level:     h.Level,
			title:     strings.TrimSpace(string(h.Text(src))),
			startByte: start,
		})
		return ast.WalkSkipChildren, nil
	})

	if len(headings) == 0 {
		if strings.TrimSpace(string(src)) == "" {
			return lang.ParseResult{Quality: lang.QualityNotParsed}, nil
		}
		return lang.ParseResult{
			Chunks: []lang.RawChunk{{
				Kind:      lang.KindHeading,
				Ident:     "(document)",
				StartLine: 1,
				EndLine:   lineAt(src, len(src)),
				StartByte: 0,
				EndByte:   uint32(len(src)),
				Content:   string(src),
			}},
			Quality: lang.QualityNotParsed,
		}, nil
	}

	var chunks []lang.RawChunk
	for i, h := range headings {
		end := len(src)
		for j := i + 1; j < len(headings); j++ {
			if headings[j].level <= h.level {
				end = headings[j].startByte
				break
			}
		}
		content := strings.TrimRight(string(src[h.startByte:end]), "\n")

		parent := ""
		for j := i - 1; j >= 0; j-- {
			if headings[j].level < h.level {
				parent = headings[j].title
				break
			}
		}

		chunks = append(chunks, lang.RawChunk{
			Kind:      lang.KindHeading,
			Ident:     h.title,
			Parent:    parent,
			StartLine: lineAt(src, h.startByte),
			EndLine:   lineAt(src, h.startByte+len(content)),
			StartByte: uint32(h.startByte),
			EndByte:   uint32(h.startByte + len(content)),
			Content:   content,
		})
	}
	return lang.ParseResult{Chunks: chunks, Quality: lang.QualityNotParsed}, nil
}

func (*Markdown) HasErrors(src []byte) (bool, []lang.ErrorSpan) { return false, nil }

func lineAt(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}
