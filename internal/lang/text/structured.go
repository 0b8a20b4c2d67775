package text

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sloangwaltney/rlm/internal/lang"
)

// Structured chunks YAML/TOML/JSON documents by top-level key plus one
// level of descendants for object-valued top-level keys (identifier is the
// dotted key path), the way original_source's
// ingest/text/{yaml,toml_parser,json_semantic}.rs do at depth<2, simplified
// by dropping everything past that first level and the per-key-name
// special-casing for Kubernetes/Compose/Actions manifests — those are
// presentation heuristics with no bearing on searchability or surgical
// editing, which is all this module needs from a structured chunk. Each
// format still parses through a real library first so a malformed document
// falls back to one whole-file chunk instead of guessing at boundaries in
// garbage text.
type Structured struct {
	tag lang.Tag
}

func NewYAML() *Structured { return &Structured{tag: lang.YAML} }
func NewTOML() *Structured { return &Structured{tag: lang.TOML} }
func NewJSON() *Structured { return &Structured{tag: lang.JSON} }

func (s *Structured) Language() lang.Tag { return s.tag }
func (s *Structured) IsCode() bool       { return false }

func (s *Structured) Extract(path string, src []byte) (lang.ParseResult, error) {
	switch s.tag {
	case lang.YAML:
		return extractYAML(src)
	case lang.TOML:
		return extractTOML(src)
	case lang.JSON:
		return extractJSON(src)
	default:
		return lang.ParseResult{}, fmt.Errorf("structured: unsupported tag %s", s.tag)
	}
}

func (s *Structured) HasErrors(src []byte) (bool, []lang.ErrorSpan) { return false, nil }

func wholeFileFallback(src []byte) lang.ParseResult {
	return lang.ParseResult{
		Chunks: []lang.RawChunk{{
			Kind:      lang.KindTopLevelKey,
			Ident:     "_root",
			StartLine: 1,
			EndLine:   lineAt(src, len(src)),
			StartByte: 0,
			EndByte:   uint32(len(src)),
			Content:   string(src),
		}},
		Quality: lang.QualityPartial,
	}
}

// --- YAML: positions come straight from yaml.v3's Node tree ---

func extractYAML(src []byte) (lang.ParseResult, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return wholeFileFallback(src), nil
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return wholeFileFallback(src), nil
	}
	mapping := root.Content[0]

	type key struct {
		name      string
		line      int
		valueKind string
		value     *yaml.Node
	}
	var keys []key
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k, v := mapping.Content[i], mapping.Content[i+1]
		keys = append(keys, key{name: k.Value, line: k.Line, valueKind: yamlKindName(v), value: v})
	}
	if len(keys) == 0 {
		return wholeFileFallback(src), nil
	}

	lines := splitLinesKeep(src)
	var chunks []lang.RawChunk
	for i, k := range keys {
		startLine := k.line
		endLine := len(lines)
		if i+1 < len(keys) {
			endLine = keys[i+1].line - 1
		}
		startByte, endByte := byteRangeForLines(lines, startLine, endLine)
		chunks = append(chunks, lang.RawChunk{
			Kind:      lang.KindTopLevelKey,
			Ident:     k.name,
			StartLine: startLine,
			EndLine:   endLine,
			StartByte: startByte,
			EndByte:   endByte,
			Content:   string(src[startByte:endByte]),
			Signature: fmt.Sprintf("%s: %s", k.name, k.valueKind),
		})
		if k.value.Kind == yaml.MappingNode {
			chunks = append(chunks, nestedYAMLChunks(k.name, k.value, src, lines, endLine)...)
		}
	}
	return lang.ParseResult{Chunks: chunks, Quality: lang.QualityComplete}, nil
}

// nestedYAMLChunks emits one chunk per immediate child of an object-valued
// top-level key, with Ident set to the dotted "parent.child" path — the
// one level of descent original_source's extract_yaml_chunks always does
// regardless of its deeper depth<2 recursion, which this drops.
func nestedYAMLChunks(parent string, value *yaml.Node, src []byte, lines [][]byte, parentEndLine int) []lang.RawChunk {
	var children []lang.RawChunk
	for i := 0; i+1 < len(value.Content); i += 2 {
		ck, cv := value.Content[i], value.Content[i+1]
		startLine := ck.Line
		endLine := parentEndLine
		if i+3 < len(value.Content) {
			endLine = value.Content[i+2].Line - 1
		}
		startByte, endByte := byteRangeForLines(lines, startLine, endLine)
		children = append(children, lang.RawChunk{
			Kind:      lang.KindTopLevelKey,
			Ident:     parent + "." + ck.Value,
			Parent:    parent,
			StartLine: startLine,
			EndLine:   endLine,
			StartByte: startByte,
			EndByte:   endByte,
			Content:   string(src[startByte:endByte]),
			Signature: fmt.Sprintf("%s.%s: %s", parent, ck.Value, yamlKindName(cv)),
		})
	}
	return children
}

func yamlKindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		if n.Tag == "!!bool" {
			return "bool"
		}
		if n.Tag == "!!int" || n.Tag == "!!float" {
			return "number"
		}
		if n.Tag == "!!null" {
			return "null"
		}
		return "string"
	default:
		return "value"
	}
}

// --- TOML: parse for validity/typing, locate top-level keys/tables by a
// text scan over lines, same heuristic original_source's find_key_lines
// uses even with a fully-parsed Value in hand. ---

// extractTOML scans lines in order, tracking the current [table]/[[array]]
// header: a header line becomes a root-level entry (and resets the current
// table), while a "key = value" line before the next header either stays a
// flat root-level entry (no table seen yet) or becomes a one-level-deep
// child of the current table with Ident "table.key" — the table header is
// the natural "one level" boundary TOML gives us, since go-toml/v2 has no
// positioned-AST API the way yaml.v3 does.
func extractTOML(src []byte) (lang.ParseResult, error) {
	var doc map[string]any
	if err := toml.Unmarshal(src, &doc); err != nil {
		return wholeFileFallback(src), nil
	}

	lines := splitLinesKeep(src)
	type key struct {
		name   string
		parent string
		line   int
	}
	var keys []key
	currentTable := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(string(line))
		if name, ok := matchTableHeader(trimmed); ok {
			currentTable = name
			keys = append(keys, key{name: name, line: i + 1})
			continue
		}
		if name, ok := matchKeyAssignment(trimmed); ok {
			if currentTable != "" {
				keys = append(keys, key{name: currentTable + "." + name, parent: currentTable, line: i + 1})
			} else {
				keys = append(keys, key{name: name, line: i + 1})
			}
		}
	}
	if len(keys) == 0 {
		return wholeFileFallback(src), nil
	}

	var chunks []lang.RawChunk
	for i, k := range keys {
		startLine := k.line
		endLine := len(lines)
		if i+1 < len(keys) {
			endLine = keys[i+1].line - 1
		}
		startByte, endByte := byteRangeForLines(lines, startLine, endLine)
		chunks = append(chunks, lang.RawChunk{
			Kind:      lang.KindTopLevelKey,
			Ident:     k.name,
			Parent:    k.parent,
			StartLine: startLine,
			EndLine:   endLine,
			StartByte: startByte,
			EndByte:   endByte,
			Content:   string(src[startByte:endByte]),
		})
	}
	return lang.ParseResult{Chunks: chunks, Quality: lang.QualityComplete}, nil
}

// matchTableHeader recognizes a "[table]" or "[[array.of.tables]]" line,
// returning the table's top-level name (a dotted path is truncated to its
// first segment, the way the flat top-level scan always has).
func matchTableHeader(line string) (string, bool) {
	if line == "" || strings.HasPrefix(line, "#") || !strings.HasPrefix(line, "[") {
		return "", false
	}
	name := strings.TrimFunc(line, func(r rune) bool { return r == '[' || r == ']' })
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// matchKeyAssignment recognizes a "key = value" line, returning the key
// name.
func matchKeyAssignment(line string) (string, bool) {
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
		return "", false
	}
	i := strings.IndexByte(line, '=')
	if i <= 0 {
		return "", false
	}
	name := strings.TrimSpace(line[:i])
	name = strings.Trim(name, `"'`)
	if strings.ContainsAny(name, " \t") {
		return "", false
	}
	return name, true
}

// --- JSON: stream tokens to get order-preserving offsets cheaply. ---

func extractJSON(src []byte) (lang.ParseResult, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	tok, err := dec.Token()
	if err != nil {
		return wholeFileFallback(src), nil
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return wholeFileFallback(src), nil
	}

	var keys []jsonKey
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return wholeFileFallback(src), nil
		}
		name, _ := keyTok.(string)
		startByte := dec.InputOffset()
		// InputOffset lands after the key token; back up to the key's
		// opening quote so the chunk includes "key":.
		startByte = keyStart(src, startByte)
		children, err := skipValue(dec, src)
		if err != nil {
			return wholeFileFallback(src), nil
		}
		keys = append(keys, jsonKey{name: name, startByte: startByte, children: children})
	}
	if len(keys) == 0 {
		return wholeFileFallback(src), nil
	}

	var chunks []lang.RawChunk
	for i, k := range keys {
		end := int64(len(src))
		if i+1 < len(keys) {
			end = keys[i+1].startByte
		}
		content := strings.TrimRight(strings.TrimSpace(string(src[k.startByte:end])), ",")
		chunks = append(chunks, lang.RawChunk{
			Kind:      lang.KindTopLevelKey,
			Ident:     k.name,
			StartLine: lineAt(src, int(k.startByte)),
			EndLine:   lineAt(src, int(k.startByte)+len(content)),
			StartByte: uint32(k.startByte),
			EndByte:   uint32(k.startByte) + uint32(len(content)),
			Content:   content,
		})
		for j, ck := range k.children {
			cend := end
			if j+1 < len(k.children) {
				cend = k.children[j+1].startByte
			}
			ccontent := strings.TrimRight(strings.TrimSpace(string(src[ck.startByte:cend])), ",")
			chunks = append(chunks, lang.RawChunk{
				Kind:      lang.KindTopLevelKey,
				Ident:     k.name + "." + ck.name,
				Parent:    k.name,
				StartLine: lineAt(src, int(ck.startByte)),
				EndLine:   lineAt(src, int(ck.startByte)+len(ccontent)),
				StartByte: uint32(ck.startByte),
				EndByte:   uint32(ck.startByte) + uint32(len(ccontent)),
				Content:   ccontent,
			})
		}
	}
	return lang.ParseResult{Chunks: chunks, Quality: lang.QualityComplete}, nil
}

// jsonKey is a JSON object key with the byte offset of its opening quote,
// and (for an object-valued key) its own immediate children — one level
// of descent only; a child's own children are discarded by skipValue.
type jsonKey struct {
	name      string
	startByte int64
	children  []jsonKey
}

// skipValue consumes one full value (scalar or nested object/array) from
// dec without decoding it into anything, using dec.More()/dec.Token() to
// recurse structurally instead of hand-rolled depth counting. When the
// value is an object, it returns that object's own immediate children's
// name/offset as a []jsonKey — one level of descent — while any of those
// children's own nested values are consumed recursively but their
// returned grandchildren are discarded, naturally bounding capture to
// exactly one level regardless of how deep the document actually nests.
func skipValue(dec *json.Decoder, src []byte) ([]jsonKey, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, nil // scalar
	}
	switch delim {
	case '[':
		for dec.More() {
			if _, err := skipValue(dec, src); err != nil {
				return nil, err
			}
		}
		if _, err := dec.Token(); err != nil { // closing ]
			return nil, err
		}
		return nil, nil
	case '{':
		var children []jsonKey
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, _ := keyTok.(string)
			startByte := keyStart(src, dec.InputOffset())
			if _, err := skipValue(dec, src); err != nil {
				return nil, err
			}
			children = append(children, jsonKey{name: name, startByte: startByte})
		}
		if _, err := dec.Token(); err != nil { // closing }
			return nil, err
		}
		return children, nil
	default:
		return nil, nil
	}
}

// keyStart walks backward from a byte offset just past a JSON string key's
// closing quote to the key's opening quote.
func keyStart(src []byte, after int64) int64 {
	i := after - 1
	for i > 0 && src[i] != '"' {
		i--
	}
	for i > 0 && src[i-1] != ':' && src[i-1] != '{' && src[i-1] != ',' && src[i-1] != '\n' {
		if src[i-1] == '"' {
			i--
			break
		}
		i--
	}
	return i
}

// --- shared line/byte helpers ---

func splitLinesKeep(src []byte) [][]byte {
	var lines [][]byte
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Bytes())
	}
	return lines
}

// byteRangeForLines returns the [start,end) byte offsets covering 1-based
// lines startLine..endLine inclusive.
func byteRangeForLines(lines [][]byte, startLine, endLine int) (uint32, uint32) {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if endLine < startLine {
		endLine = startLine
	}
	var startByte, endByte int
	for i := 0; i < startLine-1 && i < len(lines); i++ {
		startByte += len(lines[i]) + 1
	}
	endByte = startByte
	for i := startLine - 1; i < endLine && i < len(lines); i++ {
		endByte += len(lines[i]) + 1
	}
	if endByte > 0 {
		endByte--
	}
	return uint32(startByte), uint32(endByte)
}
