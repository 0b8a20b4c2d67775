package lang

// RawChunk is a chunk extracted from a source file before it is assigned a
// database file id (that assignment happens once the pipeline's writer
// stage has upserted the file record). It carries every field spec §3's
// Chunk entity needs except FileID.
type RawChunk struct {
	Kind      Kind
	Ident     string
	Parent    string // enclosing container identifier, empty if top-level
	StartLine int    // 1-based
	EndLine   int    // 1-based, inclusive
	StartByte uint32 // 0-based
	EndByte   uint32 // 0-based, half-open
	Content   string // verbatim bytes, source[StartByte:EndByte]
	Signature  string
	Doc        string
	Attr       string
	Visibility string
	UIContext  string
}

// RefKind is the kind of a reference site extracted alongside chunks.
type RefKind string

const (
	RefCall       RefKind = "call"
	RefImport     RefKind = "import"
	RefTypeUse    RefKind = "type_use"
	RefFieldUse   RefKind = "field_access"
)

// RawRef is a call/import/type-use site found while extracting chunks,
// later resolved to the chunk it falls inside of.
type RawRef struct {
	Target RefKind
	Ident  string
	Line   int
	Col    int
}

// ErrorSpan is a syntax-error byte range reported by HasErrors.
type ErrorSpan struct {
	StartByte uint32
	EndByte   uint32
}

// ParseResult is what extracting a file's chunks produces, including enough
// information for the ingestion pipeline to set the file's parse-quality
// (spec §3, §4.3).
type ParseResult struct {
	Chunks  []RawChunk
	Refs    []RawRef
	Quality ParseQuality
	Errors  []ErrorSpan
}

// Capability is the uniform interface every language extractor (AST-aware
// or plain-text) implements, so the rest of the system never special-cases
// a language. Grounded on original_source's ingest/dispatcher.rs
// Dispatcher, which routes to one of a fixed set of CodeParser/TextParser
// trait objects behind exactly these operations.
type Capability interface {
	// Language reports the tag this capability serves.
	Language() Tag
	// IsCode reports whether this is an AST-aware capability (spec §4.7
	// rejects edits to non-code capabilities as UnsupportedForEdit).
	IsCode() bool
	// Extract parses src and returns its chunks, quality, and (for code
	// capabilities) references. path is used only for UI-context
	// derivation and error messages.
	Extract(path string, src []byte) (ParseResult, error)
	// HasErrors reports whether src fails to parse cleanly for this
	// language, and the byte ranges of the failures. Non-code capabilities
	// always report false (spec §4.2, §7's Syntax Guard soundness).
	HasErrors(src []byte) (bool, []ErrorSpan)
}
