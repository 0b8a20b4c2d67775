package broker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/pipeline"
	"github.com/sloangwaltney/rlm/internal/surgery"
)

const brokerSampleGo = `package sample

func Helper() int {
	return 1
}
`

func newTestBroker(t *testing.T) (*Broker, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sample.go"), []byte(brokerSampleGo), 0o644))

	b, err := Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, root
}

func TestOpen_CreatesIndexDBUnderDotRLM(t *testing.T) {
	_, root := newTestBroker(t)
	_, err := os.Stat(filepath.Join(root, ".rlm", "index.db"))
	assert.NoError(t, err)
}

func TestIndexThenSearch_FindsIndexedChunk(t *testing.T) {
	b, _ := newTestBroker(t)
	stats, err := b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesIndexed)

	hits, err := b.Search("Helper", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestMapAndPeek_ReflectIndexedFile(t *testing.T) {
	b, _ := newTestBroker(t)
	_, err := b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	m, err := b.Map("sample.go")
	require.NoError(t, err)
	require.Len(t, m.Chunks, 1)

	p, err := b.Peek("sample.go", "Helper")
	require.NoError(t, err)
	assert.Equal(t, "Helper", p.Ident)
}

func TestReplace_WritesAndReindexesThroughBroker(t *testing.T) {
	b, root := newTestBroker(t)
	_, err := b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	res, err := b.Replace("sample.go", surgery.Selector{Ident: "Helper", Kind: "function"}, "func Helper() int {\n\treturn 2\n}", false)
	require.NoError(t, err)
	assert.Contains(t, res.NewContent, "return 2")

	onDisk, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), "return 2")

	c, err := b.Read("sample.go", "Helper")
	require.NoError(t, err)
	assert.Contains(t, c.Content, "return 2")
}

func TestReconcileSchemaVersion_WipesIndexOnMismatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sample.go"), []byte(brokerSampleGo), 0o644))

	b, err := Open(root)
	require.NoError(t, err)
	_, err = b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)
	require.NoError(t, b.store.SetMeta(metaSchemaKey, "0.0.1"))
	require.NoError(t, b.Close())

	b2, err := Open(root)
	require.NoError(t, err)
	defer b2.Close()

	got, err := b2.Read("sample.go", "Helper")
	assert.Error(t, err, "a schema-version mismatch must wipe the prior index")
	assert.Nil(t, got)
}
