package surgery

import "bytes"

// bodyBounds locates the insertion points immediately after a container's
// opening delimiter and immediately before its closing delimiter, plus the
// indentation of the first existing body line, from the container chunk's
// own content bytes. Brace-delimited languages anchor on '{'/'}'; colon-body
// languages (Python) anchor on the first ':' and run to the end of the
// chunk. This is a textual scan rather than a tree-sitter body-node lookup,
// since lang.Capability exposes only Extract/HasErrors, not node positions;
// documented in DESIGN.md as a deliberate simplification of spec.md §4.7's
// "if the grammar... exposes a body node" wording.
func bodyBounds(content []byte) (bodyStart, bodyEnd int, indent string, ok bool) {
	if i := bytes.IndexByte(content, '{'); i >= 0 {
		if j := bytes.LastIndexByte(content, '}'); j > i {
			return i + 1, j, firstLineIndent(content[i+1 : j]), true
		}
	}
	if i := bytes.IndexByte(content, ':'); i >= 0 {
		rest := content[i+1:]
		end := len(content)
		return i + 1, end, firstLineIndent(rest), true
	}
	return 0, 0, "", false
}

// firstLineIndent returns the leading whitespace of the first non-blank
// line in body, used so an inserted line matches its future siblings'
// indentation.
func firstLineIndent(body []byte) string {
	for _, line := range bytes.Split(body, []byte("\n")) {
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) == 0 {
			continue
		}
		return string(line[:len(line)-len(trimmed)])
	}
	return ""
}
