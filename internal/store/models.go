package store

import "time"

// FileRecord represents an indexed source file. Widened from synapse's
// store.FileRecord with Quality and ErrorSpans per spec.md §3's file-record
// attributes (parse-quality tag, byte offsets of error spans when partial).
type FileRecord struct {
	ID         int64
	Path       string
	Hash       string
	Language   string
	Quality    string
	SizeBytes  int64
	IndexedAt  time.Time
	ErrorSpans []ErrorSpan
}

// ErrorSpan is a persisted syntax-error byte range for a partially parsed file.
type ErrorSpan struct {
	StartByte uint32
	EndByte   uint32
}

// Chunk represents a parsed chunk from a source file. Widened from
// synapse's store.Chunk (Name/Kind/StartLine/EndLine/Content/Metadata) with
// the fields original_source's models/chunk.rs carries that the distilled
// spec's prose only implies: Parent, StartByte/EndByte, Signature, Doc,
// Attr, Visibility, UIContext.
type Chunk struct {
	ID        int64
	FileID    int64
	Kind      string
	Ident     string
	Parent    string
	StartLine int
	EndLine   int
	StartByte uint32
	EndByte   uint32
	Content   string

	Signature  string
	Doc        string
	Attr       string
	Visibility string
	UIContext  string
}

// Reference is a call/import/type-use site tied to the chunk it falls
// inside of, carried from original_source's Reference/RefKind so
// scan_for_references (spec.md §4.5) is a row lookup instead of a
// full-text search plus a full re-scan of file bytes.
type Reference struct {
	ID      int64
	ChunkID int64
	Target  string
	Ident   string
	Line    int
	Col     int
}

// FileWrite is one file's worth of upsert_file + replace_chunks work,
// batched by internal/pipeline's writer stage so many files commit in a
// single transaction (spec.md §4.4 step 3).
type FileWrite struct {
	File   FileRecord
	Chunks []Chunk
	Refs   []PendingRef
}

// PendingRef is a reference site awaiting insertion, addressing its
// enclosing chunk by position in the Chunk slice passed to ReplaceChunks
// (rather than a database id, which doesn't exist yet) — internal/pipeline
// resolves each RawRef to its enclosing chunk by line range before calling
// ReplaceChunks.
type PendingRef struct {
	ChunkIndex int
	Target     string
	Ident      string
	Line       int
	Col        int
}

// FileSummary is a lightweight file record for tree_view and overview use.
type FileSummary struct {
	Path       string
	Language   string
	Quality    string
	ChunkCount int
}

// ChunkSummary is a lightweight chunk record returned by search and lookup
// operations. Spec §4.5 asks queries to return summaries, not full content,
// unless content is explicitly requested.
type ChunkSummary struct {
	ID        int64
	FilePath  string
	Kind      string
	Ident     string
	StartLine int
	EndLine   int
}

// SearchHit is a ChunkSummary with the store's relevance score attached.
type SearchHit struct {
	ChunkSummary
	Rank float64
}

// ReferenceHit is one row of a scan_for_references result: the file and
// line a name was referenced at, plus the id of the chunk containing it.
type ReferenceHit struct {
	FilePath      string
	Line          int
	ContextChunkID int64
}

// TreeNode is one entry of a tree_view listing: a path prefix annotated
// with per-file chunk-kind counts (spec.md §4.5).
type TreeNode struct {
	Path       string
	IsDir      bool
	Language   string
	KindCounts map[string]int
}
