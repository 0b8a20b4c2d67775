// Package lang defines the Parser Registry: the closed language-tag and
// chunk-kind enumerations from spec §6, the Capability interface every
// extractor (AST-aware or plain-text) implements, and the extension→language
// lookup table. It is the sole place new languages are added; every other
// component treats languages uniformly through Capability.
package lang

// Tag is one of the closed set of language tags exposed to callers (spec §6).
type Tag string

const (
	Rust       Tag = "rust"
	Go         Tag = "go"
	Java       Tag = "java"
	CSharp     Tag = "csharp"
	Python     Tag = "python"
	PHP        Tag = "php"
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	TSX        Tag = "tsx"
	HTML       Tag = "html"
	CSS        Tag = "css"
	YAML       Tag = "yaml"
	TOML       Tag = "toml"
	JSON       Tag = "json"
	Markdown   Tag = "markdown"
	PDF        Tag = "pdf"
	Bash       Tag = "bash"
	SQL        Tag = "sql"
	XML        Tag = "xml"
	C          Tag = "c"
	CPP        Tag = "cpp"
	Plaintext  Tag = "plaintext"
	Unknown    Tag = "unknown"
)

// astAware is the set of the first fifteen tags spec §6 promises real
// syntax-tree extractors for. Everything else gets the plaintext capability.
var astAware = map[Tag]bool{
	Rust: true, Go: true, Java: true, CSharp: true, Python: true, PHP: true,
	JavaScript: true, TypeScript: true, TSX: true, HTML: true, CSS: true,
	YAML: true, TOML: true, JSON: true, Markdown: true,
}

// IsASTAware reports whether tag has a real syntax-tree extractor rather
// than the plaintext fallback.
func IsASTAware(tag Tag) bool { return astAware[tag] }

// Kind is one of the closed set of chunk kinds from spec §6.
type Kind string

const (
	KindFunction      Kind = "function"
	KindMethod        Kind = "method"
	KindClass         Kind = "class"
	KindStruct        Kind = "struct"
	KindEnum          Kind = "enum"
	KindInterface     Kind = "interface"
	KindTrait         Kind = "trait"
	KindImpl          Kind = "impl"
	KindModule        Kind = "module"
	KindNamespace     Kind = "namespace"
	KindTypeAlias     Kind = "type_alias"
	KindArrowFunction Kind = "arrow_function"
	KindComponent     Kind = "component"
	KindHeading       Kind = "heading"
	KindPage          Kind = "page"
	KindTopLevelKey   Kind = "top_level_key"
	KindElement       Kind = "element"
	KindRule          Kind = "rule"
	KindFile          Kind = "file"
)

// ParseQuality summarizes how much of a file the parser recovered (spec §3).
type ParseQuality string

const (
	QualityComplete  ParseQuality = "complete"
	QualityPartial   ParseQuality = "partial"
	QualityFailed    ParseQuality = "failed"
	QualityNotParsed ParseQuality = "not-parsed"
)

// extByLang maps every extension (without the leading dot, lowercase) this
// module recognizes to its language tag. Extensions absent from this table
// resolve to Unknown, which the Registry maps to the plaintext capability.
var extByLang = map[string]Tag{
	"rs": Rust,
	"go": Go,

	"java": Java,
	"cs":   CSharp,

	"py":  Python,
	"pyi": Python,

	"php": PHP,

	"js":  JavaScript,
	"jsx": JavaScript,
	"mjs": JavaScript,
	"cjs": JavaScript,

	"ts": TypeScript,

	"tsx": TSX,

	"html": HTML,
	"htm":  HTML,

	"css": CSS,

	"yaml": YAML,
	"yml":  YAML,

	"toml": TOML,

	"json": JSON,

	"md":       Markdown,
	"markdown": Markdown,

	"pdf": PDF,

	"sh":   Bash,
	"bash": Bash,

	"sql": SQL,

	"xml": XML,

	"c":   C,
	"h":   C,
	"cpp": CPP,
	"cc":  CPP,
	"cxx": CPP,
	"hpp": CPP,

	"txt": Plaintext,
}

// TagForExtension returns the language tag for a lowercase extension
// (without the leading dot), or Unknown if none is registered.
func TagForExtension(ext string) Tag {
	if t, ok := extByLang[ext]; ok {
		return t
	}
	return Unknown
}

// Extensions returns every extension this module has an entry for, keyed
// without the leading dot. The walker does not use it: it applies no
// extension filter, since Unknown extensions still index as whole-file
// plaintext chunks.
func Extensions() map[string]bool {
	exts := make(map[string]bool, len(extByLang))
	for ext := range extByLang {
		exts[ext] = true
	}
	return exts
}
