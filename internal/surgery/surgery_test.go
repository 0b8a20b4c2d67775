package surgery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/setup"
	"github.com/sloangwaltney/rlm/internal/store"
)

type countingReindexer struct {
	calls []string
}

func (r *countingReindexer) ReindexFile(relPath string) error {
	r.calls = append(r.calls, relPath)
	return nil
}

const sampleSource = `package sample

type Widget struct {
	Name string
}

func Helper() int {
	return 1
}
`

// newTestEditor writes sampleSource to root/sample.go, indexes it with the
// real Go capability so chunk byte ranges are genuine, and returns an
// Editor over it.
func newTestEditor(t *testing.T) (*Editor, *store.SQLiteStore, *countingReindexer, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "sample.go"), []byte(sampleSource), 0o644))

	reg, err := setup.NewRegistry()
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cap, _ := reg.Lookup("sample.go")
	require.NotNil(t, cap)
	result, err := cap.Extract("sample.go", []byte(sampleSource))
	require.NoError(t, err)

	chunks := make([]store.Chunk, len(result.Chunks))
	for i, c := range result.Chunks {
		chunks[i] = store.Chunk{
			Kind: string(c.Kind), Ident: c.Ident, Parent: c.Parent,
			StartLine: c.StartLine, EndLine: c.EndLine,
			StartByte: c.StartByte, EndByte: c.EndByte, Content: c.Content,
		}
	}
	fileID, err := s.UpsertFile(store.FileRecord{Path: "sample.go", Hash: "h", Language: "go", Quality: "complete"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceChunks(fileID, chunks, nil))

	reindexer := &countingReindexer{}
	e := New(root, s, reg, reindexer)
	return e, s, reindexer, root
}

func TestReplace_WritesValidReplacementAndReindexes(t *testing.T) {
	e, _, reindexer, root := newTestEditor(t)

	res, err := e.Replace("sample.go", Selector{Ident: "Helper", Kind: "function"}, "func Helper() int {\n\treturn 2\n}", false)
	require.NoError(t, err)
	assert.False(t, res.Preview)
	assert.Contains(t, res.NewContent, "return 2")

	onDisk, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), "return 2")
	assert.Equal(t, []string{"sample.go"}, reindexer.calls)
}

func TestReplace_PreviewDoesNotWrite(t *testing.T) {
	e, _, reindexer, root := newTestEditor(t)

	res, err := e.Replace("sample.go", Selector{Ident: "Helper", Kind: "function"}, "func Helper() int {\n\treturn 2\n}", true)
	require.NoError(t, err)
	assert.True(t, res.Preview)
	assert.Contains(t, res.Diff, "-func Helper")
	assert.Contains(t, res.Diff, "+func Helper")

	onDisk, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(onDisk), "return 2")
	assert.Empty(t, reindexer.calls)
}

func TestReplace_RejectsInvalidSyntax(t *testing.T) {
	e, _, reindexer, _ := newTestEditor(t)

	_, err := e.Replace("sample.go", Selector{Ident: "Helper", Kind: "function"}, "func Helper() int {", false)
	require.Error(t, err)
	assert.Empty(t, reindexer.calls)
}

func TestReplace_UnknownSelectorErrors(t *testing.T) {
	e, _, _, _ := newTestEditor(t)
	_, err := e.Replace("sample.go", Selector{Ident: "DoesNotExist"}, "x", false)
	assert.Error(t, err)
}

func TestInsert_BodyStartPreservesIndentation(t *testing.T) {
	e, _, _, root := newTestEditor(t)

	res, err := e.Insert("sample.go", Selector{Ident: "Widget", Kind: "struct"}, Position{Kind: PositionBodyStart}, "Age int", false)
	require.NoError(t, err)
	assert.Contains(t, res.NewContent, "\tAge int")

	onDisk, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), "Age int")
}

func TestInsert_AfterLineInsertsOnNextLine(t *testing.T) {
	e, _, _, _ := newTestEditor(t)

	res, err := e.Insert("sample.go", Selector{}, Position{Kind: PositionAfterLine, Line: 1}, "// a comment", false)
	require.NoError(t, err)
	lines := splitLines(res.NewContent)
	assert.Equal(t, "// a comment", lines[1])
}

func TestInsert_BeyondFileErrors(t *testing.T) {
	e, _, _, _ := newTestEditor(t)
	_, err := e.Insert("sample.go", Selector{}, Position{Kind: PositionAfterLine, Line: 9999}, "x", false)
	assert.Error(t, err)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
