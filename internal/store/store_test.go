package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleChunks() []Chunk {
	return []Chunk{
		{Kind: "function", Ident: "Parse", StartLine: 1, EndLine: 5, StartByte: 0, EndByte: 40, Content: "func Parse() {}"},
		{Kind: "function", Ident: "Validate", StartLine: 7, EndLine: 12, StartByte: 42, EndByte: 90, Content: "func Validate() {}"},
	}
}

func TestInit_CreatesTables(t *testing.T) {
	s := newTestStore(t)
	for _, table := range []string{"files", "chunks", "chunks_fts", "refs", "error_spans", "meta", "schema_version"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestInit_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, Init(s.db))
}

func TestUpsertFile_InsertAndUpdate(t *testing.T) {
	s := newTestStore(t)

	id, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete", SizeBytes: 10})
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := s.GetFileByPath("a.go")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.Hash)

	id2, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h2", Language: "go", Quality: "complete", SizeBytes: 20})
	require.NoError(t, err)
	assert.Equal(t, id, id2, "upsert on the same path must be idempotent on id")

	got2, err := s.GetFileByPath("a.go")
	require.NoError(t, err)
	assert.Equal(t, "h2", got2.Hash)
	assert.Equal(t, int64(20), got2.SizeBytes)
}

func TestGetFileByPath_Missing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetFileByPath("missing.go")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertFile_PersistsErrorSpans(t *testing.T) {
	s := newTestStore(t)
	id, err := s.UpsertFile(FileRecord{
		Path: "broken.go", Hash: "h", Language: "go", Quality: "partial",
		ErrorSpans: []ErrorSpan{{StartByte: 5, EndByte: 9}},
	})
	require.NoError(t, err)

	got, err := s.GetFileByID(id)
	require.NoError(t, err)
	require.Len(t, got.ErrorSpans, 1)
	assert.Equal(t, uint32(5), got.ErrorSpans[0].StartByte)
}

func TestReplaceChunks_ReplacesAtomically(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)

	require.NoError(t, s.ReplaceChunks(fileID, sampleChunks(), nil))
	chunks, err := s.ListChunks(fileID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Parse", chunks[0].Ident, "chunks must come back ordered by start_byte")

	require.NoError(t, s.ReplaceChunks(fileID, sampleChunks()[:1], nil))
	chunks, err = s.ListChunks(fileID)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "replace_chunks must delete the old set, not append")
}

func TestReplaceChunks_InsertsRefsAgainstNewIDs(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)

	refs := []PendingRef{{ChunkIndex: 1, Target: "call", Ident: "helper", Line: 8, Col: 2}}
	require.NoError(t, s.ReplaceChunks(fileID, sampleChunks(), refs))

	hits, err := s.ScanForReferences("helper")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 8, hits[0].Line)
}

func TestWriteBatch_CommitsMultipleFilesAtomically(t *testing.T) {
	s := newTestStore(t)

	err := s.WriteBatch([]FileWrite{
		{File: FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"}, Chunks: sampleChunks()},
		{File: FileRecord{Path: "b.go", Hash: "h2", Language: "go", Quality: "complete"}, Chunks: sampleChunks()[:1]},
	})
	require.NoError(t, err)

	fa, err := s.GetFileByPath("a.go")
	require.NoError(t, err)
	require.NotNil(t, fa)
	chunksA, err := s.ListChunks(fa.ID)
	require.NoError(t, err)
	assert.Len(t, chunksA, 2)

	fb, err := s.GetFileByPath("b.go")
	require.NoError(t, err)
	require.NotNil(t, fb)
	chunksB, err := s.ListChunks(fb.ID)
	require.NoError(t, err)
	assert.Len(t, chunksB, 1)
}

func TestDeleteFile_CascadesChunks(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, sampleChunks(), nil))

	require.NoError(t, s.DeleteFile("a.go"))
	chunks, err := s.ListChunks(fileID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSearchFullText_FindsByIdentifierAndConjoinsTerms(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []Chunk{
		{Kind: "function", Ident: "ParseConfig", StartLine: 1, EndLine: 3, Content: "func ParseConfig(path string) error { return nil }"},
		{Kind: "function", Ident: "WriteConfig", StartLine: 5, EndLine: 7, Content: "func WriteConfig(path string) error { return nil }"},
	}, nil))

	hits, err := s.SearchFullText("ParseConfig", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ParseConfig", hits[0].Ident)

	hits, err = s.SearchFullText("ParseConfig WriteConfig", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hits, "conjunction of two disjoint identifiers should match nothing")
}

func TestFindByIdentifier_CaseSensitivity(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []Chunk{
		{Kind: "function", Ident: "Parse", StartLine: 1, EndLine: 2, Content: "func Parse() {}"},
	}, nil))

	hits, err := s.FindByIdentifier("parse", false, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = s.FindByIdentifier("parse", true, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindByIdentifier_FiltersByKind(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []Chunk{
		{Kind: "function", Ident: "Widget", StartLine: 1, EndLine: 2, Content: "func Widget() {}"},
		{Kind: "struct", Ident: "Widget", StartLine: 4, EndLine: 6, Content: "type Widget struct{}"},
	}, nil))

	hits, err := s.FindByIdentifier("Widget", true, []string{"struct"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "struct", hits[0].Kind)
}

func TestScanForReferences_ExcludesOwnDefinition(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, sampleChunks(), []PendingRef{
		{ChunkIndex: 0, Target: "call", Ident: "Parse", Line: 1, Col: 0},   // Parse referencing itself (recursion)
		{ChunkIndex: 1, Target: "call", Ident: "Parse", Line: 8, Col: 2},   // Validate calling Parse
	}))

	hits, err := s.ScanForReferences("Parse")
	require.NoError(t, err)
	require.Len(t, hits, 1, "the reference inside Parse's own chunk must be excluded")
	assert.Equal(t, 8, hits[0].Line)
}

func TestDeleteUnseenPaths_SweepsStaleFiles(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertFile(FileRecord{Path: "keep.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	_, err = s.UpsertFile(FileRecord{Path: "gone.go", Hash: "h2", Language: "go", Quality: "complete"})
	require.NoError(t, err)

	n, err := s.DeleteUnseenPaths(map[string]bool{"keep.go": true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetFileByPath("gone.go")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = s.GetFileByPath("keep.go")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMeta_SetAndGet(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.SetMeta("schema_version", "1.0.0"))
	v, err := s.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	assert.NoError(t, s.SetMeta("schema_version", "1.1.0"))
	v, err = s.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", v)
}

func TestTreeView_CountsChunksByKind(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(FileRecord{Path: "pkg/a.go", Hash: "h1", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, sampleChunks(), nil))
	_, err = s.UpsertFile(FileRecord{Path: "other/b.go", Hash: "h2", Language: "go", Quality: "complete"})
	require.NoError(t, err)

	nodes, err := s.TreeView("pkg/")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "pkg/a.go", nodes[0].Path)
	assert.Equal(t, 2, nodes[0].KindCounts["function"])
}
