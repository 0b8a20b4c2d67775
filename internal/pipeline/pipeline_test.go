package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/setup"
	"github.com/sloangwaltney/rlm/internal/store"
)

func newTestEnv(t *testing.T) (*Pipeline, *store.SQLiteStore, string) {
	t.Helper()
	reg, err := setup.NewRegistry()
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	root := t.TempDir()
	return New(s, reg), s, root
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const sampleGo = `package sample

func Helper() int {
	return 1
}

func Caller() int {
	return Helper()
}
`

func TestIndex_IngestsFilesAndChunks(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "sample.go", sampleGo)

	stats, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesTotal)
	assert.EqualValues(t, 1, stats.FilesIndexed)
	assert.GreaterOrEqual(t, stats.ChunksTotal, int64(2))

	got, err := s.GetFileByPath("sample.go")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "go", got.Language)
}

func TestIndex_SkipsUnchangedFilesOnSecondPass(t *testing.T) {
	p, _, root := newTestEnv(t)
	writeSource(t, root, "sample.go", sampleGo)

	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	stats, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesUnchanged)
	assert.EqualValues(t, 0, stats.FilesIndexed)
}

func TestIndex_ReindexesChangedFile(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "sample.go", sampleGo)
	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	writeSource(t, root, "sample.go", sampleGo+"\nfunc Extra() {}\n")
	stats, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesIndexed)

	got, err := s.GetFileByPath("sample.go")
	require.NoError(t, err)
	chunks, err := s.ListChunks(got.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chunks), 3)
}

func TestIndex_DeletesUnseenPathsOnReindex(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "a.go", sampleGo)
	writeSource(t, root, "b.go", sampleGo)
	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.go")))

	stats, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesDeleted)

	got, err := s.GetFileByPath("b.go")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIndex_ResolvesReferencesToEnclosingChunk(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "sample.go", sampleGo)

	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	hits, err := s.ScanForReferences("Helper")
	require.NoError(t, err)
	require.Len(t, hits, 1, "Caller's reference to Helper should be found, but not Helper's own definition")
}

func TestIndex_RespectsBatchSizeConfig(t *testing.T) {
	p, _, root := newTestEnv(t)
	for i := 0; i < 5; i++ {
		writeSource(t, root, filepath.Join("pkg", "f"+string(rune('a'+i))+".go"), sampleGo)
	}

	stats, err := p.Index(context.Background(), root, Config{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.FilesTotal)
	assert.EqualValues(t, 5, stats.FilesIndexed)
}

func TestReindex_FailsWithoutPriorIndex(t *testing.T) {
	p, _, _ := newTestEnv(t)
	_, err := p.Reindex(context.Background(), Config{})
	assert.Error(t, err)
}

func TestReindexFile_UpdatesSingleFileWithoutFullWalk(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "a.go", sampleGo)
	writeSource(t, root, "b.go", sampleGo)
	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	writeSource(t, root, "a.go", sampleGo+"\nfunc Extra() {}\n")
	require.NoError(t, p.ReindexFile("a.go"))

	got, err := s.GetFileByPath("a.go")
	require.NoError(t, err)
	chunks, err := s.ListChunks(got.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chunks), 3)
}

func TestReindex_UsesLastIndexedRoot(t *testing.T) {
	p, _, root := newTestEnv(t)
	writeSource(t, root, "sample.go", sampleGo)
	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	stats, err := p.Reindex(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesTotal)
}

func TestIndex_SetsUIContextFromNearestMatchingPathSegment(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "src/components/widget.go", sampleGo)
	writeSource(t, root, "src/utils/helper.go", sampleGo)

	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	withContext, err := s.GetFileByPath("src/components/widget.go")
	require.NoError(t, err)
	chunks, err := s.ListChunks(withContext.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "components", c.UIContext)
	}

	withoutContext, err := s.GetFileByPath("src/utils/helper.go")
	require.NoError(t, err)
	chunks, err = s.ListChunks(withoutContext.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "", c.UIContext)
	}
}

func TestIndex_SetsUIContextFromJSXExtensionWithoutMatchingDirectory(t *testing.T) {
	p, s, root := newTestEnv(t)
	writeSource(t, root, "src/App.jsx", "export default function App() { return null }\n")

	_, err := p.Index(context.Background(), root, Config{})
	require.NoError(t, err)

	f, err := s.GetFileByPath("src/App.jsx")
	require.NoError(t, err)
	chunks, err := s.ListChunks(f.ID)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.Equal(t, "ui", c.UIContext)
	}
}
