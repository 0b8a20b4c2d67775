package lang

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ChunkCapture is what LanguageConfig.MapChunkCapture reports for one
// capture name in the chunk query.
type ChunkCapture struct {
	Name     string
	Kind     Kind
	IsDefRef bool // true: this capture is the definition node, not the name
}

// LanguageConfig is the Go restatement of original_source's LanguageConfig
// trait (ingest/code/base.rs). One implementation per AST-aware language
// under internal/lang/languages supplies grammar, query text, and the
// language-specific mapping/extraction rules that Engine drives.
type LanguageConfig interface {
	Language() *sitter.Language
	Tag() Tag

	// ChunkQuery is the tree-sitter query text capturing definitions,
	// using whatever capture names MapChunkCapture understands.
	ChunkQuery() string
	// RefQuery is the tree-sitter query text capturing call/import/type-use
	// sites. Empty string means this language extracts no references.
	RefQuery() string

	// MapChunkCapture maps one capture name (plus its captured text) to a
	// chunk-kind/name/is-definition-node triple, or ok=false to skip it.
	MapChunkCapture(captureName, text string) (ChunkCapture, bool)
	// MapRefCapture maps one ref-query capture name to a RefKind, or
	// ok=false to skip it.
	MapRefCapture(captureName string) (RefKind, bool)
	// ImportCaptureName is the chunk-query capture name marking an import
	// declaration node, or "" if this language has none.
	ImportCaptureName() string

	ExtractVisibility(content string) string
	ExtractSignature(content string, kind Kind) string
	FindParent(node *sitter.Node, source []byte) string
	CollectDoc(node *sitter.Node, source []byte) string
	CollectAttr(node *sitter.Node, source []byte) string

	// NeedsDedup reports whether this language's query can emit the same
	// (name, start line) pair more than once and must be deduplicated.
	NeedsDedup() bool
	// ShouldSkip reports whether a chunk should be dropped after mapping,
	// e.g. a free function capture that duplicates a method already
	// captured through an impl block.
	ShouldSkip(kind Kind, parent string) bool
}

// Engine drives any LanguageConfig through the shared tree-sitter extraction
// algorithm, so the eleven AST-aware languages share one implementation
// instead of each duplicating the walk/query/dedup loop.
type Engine struct {
	cfg      LanguageConfig
	chunkQ   *sitter.Query
	refQ     *sitter.Query
}

// NewEngine compiles cfg's queries once and returns a ready-to-use Engine.
func NewEngine(cfg LanguageConfig) (*Engine, error) {
	chunkQ, err := sitter.NewQuery([]byte(cfg.ChunkQuery()), cfg.Language())
	if err != nil {
		return nil, fmt.Errorf("compile chunk query for %s: %w", cfg.Tag(), err)
	}
	var refQ *sitter.Query
	if q := cfg.RefQuery(); q != "" {
		refQ, err = sitter.NewQuery([]byte(q), cfg.Language())
		if err != nil {
			return nil, fmt.Errorf("compile ref query for %s: %w", cfg.Tag(), err)
		}
	}
	return &Engine{cfg: cfg, chunkQ: chunkQ, refQ: refQ}, nil
}

func (e *Engine) Language() Tag { return e.cfg.Tag() }
func (e *Engine) IsCode() bool  { return true }

func (e *Engine) parse(src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.cfg.Language())
	return parser.ParseCtx(context.Background(), nil, src)
}

// Extract implements Capability.
func (e *Engine) Extract(path string, src []byte) (ParseResult, error) {
	tree, err := e.parse(src)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	chunks := e.extractChunks(tree, src)
	var refs []RawRef
	if e.refQ != nil {
		refs = e.extractRefs(tree, src, chunks)
	}

	hasErr, spans := scanErrors(tree.RootNode())
	quality := QualityComplete
	if hasErr {
		quality = classifyQuality(src, spans)
	}

	return ParseResult{Chunks: chunks, Refs: refs, Quality: quality, Errors: spans}, nil
}

// HasErrors implements Capability.
func (e *Engine) HasErrors(src []byte) (bool, []ErrorSpan) {
	tree, err := e.parse(src)
	if err != nil {
		return true, nil
	}
	defer tree.Close()
	return scanErrors(tree.RootNode())
}

type seenKey struct {
	name string
	line int
}

func (e *Engine) extractChunks(tree *sitter.Tree, src []byte) []RawChunk {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(e.chunkQ, tree.RootNode())

	var chunks []RawChunk
	var importNodes []*sitter.Node
	seen := make(map[seenKey]bool)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var (
			node       *sitter.Node
			name       string
			kind       Kind
			isImport   bool
		)
		for _, cap := range m.Captures {
			capName := e.chunkQ.CaptureNameForId(cap.Index)
			if capName == e.cfg.ImportCaptureName() {
				isImport = true
				n := cap.Node
				importNodes = append(importNodes, n)
				continue
			}
			text := cap.Node.Content(src)
			mapped, ok := e.cfg.MapChunkCapture(capName, text)
			if !ok {
				continue
			}
			if mapped.IsDefRef {
				n := cap.Node
				node = n
			}
			if mapped.Name != "" || mapped.Kind != "" {
				name = mapped.Name
				if name == "" {
					name = text
				}
				kind = mapped.Kind
			}
		}
		if isImport || node == nil || name == "" {
			continue
		}

		startLine := int(node.StartPoint().Row) + 1
		if e.cfg.NeedsDedup() {
			key := seenKey{name: name, line: startLine}
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		parent := e.cfg.FindParent(node, src)
		if e.cfg.ShouldSkip(kind, parent) {
			continue
		}

		content := node.Content(src)
		chunks = append(chunks, RawChunk{
			Kind:       kind,
			Ident:      name,
			Parent:     parent,
			StartLine:  startLine,
			EndLine:    int(node.EndPoint().Row) + 1,
			StartByte:  node.StartByte(),
			EndByte:    node.EndByte(),
			Content:    content,
			Signature:  e.cfg.ExtractSignature(content, kind),
			Doc:        e.cfg.CollectDoc(node, src),
			Attr:       e.cfg.CollectAttr(node, src),
			Visibility: e.cfg.ExtractVisibility(content),
		})
	}

	chunks = dedupByRange(chunks)

	if len(importNodes) > 0 {
		chunks = append(chunks, buildImportChunk(importNodes, src))
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].StartByte < chunks[j].StartByte })
	return chunks
}

// dedupByRange drops chunks whose byte range exactly matches one already
// kept. Unlike synapse's containment-based dedup, chunks that merely nest
// (a method inside its class) are both kept; Parent records the nesting.
func dedupByRange(chunks []RawChunk) []RawChunk {
	if len(chunks) <= 1 {
		return chunks
	}
	type rng struct{ s, e uint32 }
	seen := make(map[rng]bool, len(chunks))
	out := chunks[:0]
	for _, c := range chunks {
		r := rng{c.StartByte, c.EndByte}
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, c)
	}
	return out
}

func buildImportChunk(nodes []*sitter.Node, src []byte) RawChunk {
	startByte, endByte := nodes[0].StartByte(), nodes[0].EndByte()
	startLine, endLine := int(nodes[0].StartPoint().Row)+1, int(nodes[0].EndPoint().Row)+1
	var lines []string
	for _, n := range nodes {
		if n.StartByte() < startByte {
			startByte = n.StartByte()
		}
		if n.EndByte() > endByte {
			endByte = n.EndByte()
		}
		if l := int(n.StartPoint().Row) + 1; l < startLine {
			startLine = l
		}
		if l := int(n.EndPoint().Row) + 1; l > endLine {
			endLine = l
		}
		lines = append(lines, n.Content(src))
	}
	return RawChunk{
		Kind:      KindModule,
		Ident:     "_imports",
		StartLine: startLine,
		EndLine:   endLine,
		StartByte: startByte,
		EndByte:   endByte,
		Content:   strings.Join(lines, "\n"),
	}
}

func (e *Engine) extractRefs(tree *sitter.Tree, src []byte, chunks []RawChunk) []RawRef {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(e.refQ, tree.RootNode())

	var refs []RawRef
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, cap := range m.Captures {
			capName := e.refQ.CaptureNameForId(cap.Index)
			kind, ok := e.cfg.MapRefCapture(capName)
			if !ok {
				continue
			}
			refs = append(refs, RawRef{
				Target: kind,
				Ident:  cap.Node.Content(src),
				Line:   int(cap.Node.StartPoint().Row) + 1,
				Col:    int(cap.Node.StartPoint().Column),
			})
		}
	}
	return refs
}

// scanErrors walks the tree looking for ERROR and missing nodes, the
// tree-sitter equivalent of Node::has_error plus span collection.
func scanErrors(root *sitter.Node) (bool, []ErrorSpan) {
	var spans []ErrorSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.IsError() || n.IsMissing() {
			spans = append(spans, ErrorSpan{StartByte: n.StartByte(), EndByte: n.EndByte()})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return len(spans) > 0, spans
}

// classifyQuality decides partial vs failed by the fraction of the file
// covered by error spans (SPEC_FULL.md open question 9(b)): more than half
// the bytes inside error nodes means the parse is unusable, not merely
// dirty.
func classifyQuality(src []byte, spans []ErrorSpan) ParseQuality {
	var errBytes uint32
	for _, s := range spans {
		errBytes += s.EndByte - s.StartByte
	}
	total := uint32(len(src))
	if total == 0 {
		return QualityFailed
	}
	if float64(errBytes)/float64(total) > 0.5 {
		return QualityFailed
	}
	return QualityPartial
}

// --- shared signature/doc/parent helpers, grounded on base.rs's free functions ---

// SignatureToBrace returns content up to the first '{', trimmed.
func SignatureToBrace(content string) string {
	if i := strings.IndexByte(content, '{'); i >= 0 {
		return strings.TrimSpace(content[:i])
	}
	return strings.TrimSpace(content)
}

// SignatureToBraceOrSemi returns content up to the first '{' or ';'.
func SignatureToBraceOrSemi(content string) string {
	if i := strings.IndexByte(content, '{'); i >= 0 {
		return strings.TrimSpace(content[:i])
	}
	if i := strings.IndexByte(content, ';'); i >= 0 {
		return strings.TrimSpace(content[:i])
	}
	return strings.TrimSpace(content)
}

// SignatureToColon returns content up to the first ':', for Python-style
// function/class headers.
func SignatureToColon(content string) string {
	if i := strings.IndexByte(content, ':'); i >= 0 {
		return strings.TrimSpace(content[:i])
	}
	return strings.TrimSpace(content)
}

// FindParentByKinds walks up node's ancestors looking for one of
// parentKinds, then returns the text of its first identifierKind child.
func FindParentByKinds(node *sitter.Node, source []byte, parentKinds []string, identifierKind string) string {
	isParentKind := func(k string) bool {
		for _, pk := range parentKinds {
			if pk == k {
				return true
			}
		}
		return false
	}
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if !isParentKind(cur.Type()) {
			continue
		}
		for i := 0; i < int(cur.ChildCount()); i++ {
			child := cur.Child(i)
			if child.Type() == identifierKind {
				return child.Content(source)
			}
		}
	}
	return ""
}

// CollectDocByPrefix walks backward over node's previous siblings collecting
// consecutive comment nodes whose text starts with one of prefixes,
// optionally skipping over skipKind nodes (e.g. an attribute list between
// the doc comment and the definition).
func CollectDocByPrefix(node *sitter.Node, source []byte, commentKind string, prefixes []string, skipKind string) string {
	var lines []string
	for sib := node.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
		if skipKind != "" && sib.Type() == skipKind {
			continue
		}
		if sib.Type() != commentKind {
			break
		}
		text := sib.Content(source)
		matched := false
		for _, p := range prefixes {
			if strings.HasPrefix(text, p) {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		lines = append(lines, text)
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// CollectAttrByKind walks backward over node's previous siblings collecting
// consecutive nodes of attrKind (decorators, Rust attributes, Java
// annotations).
func CollectAttrByKind(node *sitter.Node, source []byte, attrKind string) string {
	var lines []string
	for sib := node.PrevSibling(); sib != nil && sib.Type() == attrKind; sib = sib.PrevSibling() {
		lines = append(lines, sib.Content(source))
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}
