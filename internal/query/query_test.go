package query

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolveSymbol_EarliestLineWinsWhenScopedToFile(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(store.FileRecord{Path: "a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []store.Chunk{
		{Kind: "struct", Ident: "Widget", StartLine: 1, EndLine: 3, Content: "type Widget struct{}"},
		{Kind: "function", Ident: "Widget", StartLine: 5, EndLine: 7, Content: "func Widget() {}"},
	}, nil))

	e := New(s)
	c, err := e.ResolveSymbol("a.go", "Widget")
	require.NoError(t, err)
	assert.Equal(t, 1, c.StartLine, "earliest line wins within a file scope")
}

func TestResolveSymbol_NotFoundWhenFileNotIndexed(t *testing.T) {
	s := newTestStore(t)
	e := New(s)
	_, err := e.ResolveSymbol("missing.go", "Anything")
	assert.Error(t, err)
}

func TestResolveSymbol_NotFoundWhenNoIdentifierMatches(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(store.FileRecord{Path: "a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []store.Chunk{
		{Kind: "function", Ident: "Foo", StartLine: 1, EndLine: 2, Content: "func Foo() {}"},
	}, nil))

	e := New(s)
	_, err = e.ResolveSymbol("a.go", "Bar")
	assert.Error(t, err)
}

func TestResolveSymbol_GlobalLookupPrefersFunctionKind(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(store.FileRecord{Path: "a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []store.Chunk{
		{Kind: "struct", Ident: "Widget", StartLine: 10, EndLine: 12, Content: "type Widget struct{}"},
		{Kind: "function", Ident: "Widget", StartLine: 1, EndLine: 2, Content: "func Widget() {}"},
	}, nil))

	e := New(s)
	c, err := e.ResolveSymbol("", "Widget")
	require.NoError(t, err)
	assert.Equal(t, "function", c.Kind)
}

func TestMap_ListsChunksWithoutContent(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(store.FileRecord{Path: "a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []store.Chunk{
		{Kind: "function", Ident: "Foo", StartLine: 1, EndLine: 2, Content: "func Foo() {}"},
	}, nil))

	e := New(s)
	m, err := e.Map("a.go")
	require.NoError(t, err)
	require.Len(t, m.Chunks, 1)
	assert.Equal(t, "Foo", m.Chunks[0].Ident)
}

func TestMap_ErrorsWhenFileNotIndexed(t *testing.T) {
	s := newTestStore(t)
	e := New(s)
	_, err := e.Map("missing.go")
	assert.Error(t, err)
}

func TestPeek_TruncatesContentToPreview(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(store.FileRecord{Path: "a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []store.Chunk{
		{Kind: "function", Ident: "Foo", StartLine: 1, EndLine: 5, Content: "func Foo() {\n\tx := 1\n\ty := 2\n\treturn x + y\n}"},
	}, nil))

	e := New(s)
	p, err := e.Peek("a.go", "Foo")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(strings.Split(p.Preview, "\n")), peekPreviewLines)
}

func TestImpact_CombinesDefinitionsAndReferences(t *testing.T) {
	s := newTestStore(t)
	fileID, err := s.UpsertFile(store.FileRecord{Path: "a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, []store.Chunk{
		{Kind: "function", Ident: "Helper", StartLine: 1, EndLine: 2, Content: "func Helper() {}"},
		{Kind: "function", Ident: "Caller", StartLine: 4, EndLine: 6, Content: "func Caller() { Helper() }"},
	}, []store.PendingRef{
		{ChunkIndex: 1, Target: "call", Ident: "Helper", Line: 5, Col: 1},
	}))

	e := New(s)
	view, err := e.Impact("Helper")
	require.NoError(t, err)
	assert.True(t, view.BestEffort)
	require.Len(t, view.Definitions, 1)
	require.Len(t, view.References, 1)
}

func TestTree_DelegatesToStoreTreeView(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertFile(store.FileRecord{Path: "pkg/a.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)

	e := New(s)
	nodes, err := e.Tree("pkg/")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "pkg/a.go", nodes[0].Path)
}
