package broker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/pipeline"
	"github.com/sloangwaltney/rlm/internal/rlmerr"
	"github.com/sloangwaltney/rlm/internal/surgery"
)

// copyFixture copies a single fixture file from testdata into a fresh temp
// root so edit-path tests never mutate the checked-in fixture.
func copyFixture(t *testing.T, fixtureRel, destName string) string {
	t.Helper()
	src, err := os.Open(filepath.Join("..", "..", "testdata", "fixtures", fixtureRel))
	require.NoError(t, err)
	defer src.Close()

	root := t.TempDir()
	dst, err := os.Create(filepath.Join(root, destName))
	require.NoError(t, err)
	defer dst.Close()

	_, err = io.Copy(dst, src)
	require.NoError(t, err)
	return root
}

func copyFixtureTree(t *testing.T, fixtureRel string) string {
	t.Helper()
	root := t.TempDir()
	srcDir := filepath.Join("..", "..", "testdata", "fixtures", fixtureRel)
	entries, err := os.ReadDir(srcDir)
	require.NoError(t, err)
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(srcDir, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(root, e.Name()), b, 0o644))
	}
	return root
}

// TestIndex_GoFixtureProducesExpectedChunks is testable-property scenario 1:
// indexing sample.go yields a struct, three functions, a method, and every
// chunk's byte range round-trips to its source.
func TestIndex_GoFixtureProducesExpectedChunks(t *testing.T) {
	root := copyFixture(t, "code_samples/go/sample.go", "sample.go")

	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	m, err := b.Map("sample.go")
	require.NoError(t, err)

	byIdent := map[string]string{}
	for _, c := range m.Chunks {
		byIdent[c.Ident] = c.Kind
	}
	assert.Equal(t, "struct", byIdent["Config"])
	assert.Equal(t, "function", byIdent["NewConfig"])
	assert.Equal(t, "function", byIdent["helper"])
	assert.Equal(t, "function", byIdent["main"])
	assert.Equal(t, "method", byIdent["Display"])

	src, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	for _, summary := range m.Chunks {
		full, err := b.Read("sample.go", summary.Ident)
		require.NoError(t, err)
		assert.Equal(t, string(src[full.StartByte:full.EndByte]), full.Content)
	}
}

// TestReplace_GoFixtureHelperBodySucceeds is scenario 2: a valid replacement
// is written to disk and survives a reindex as a single matching chunk.
func TestReplace_GoFixtureHelperBodySucceeds(t *testing.T) {
	root := copyFixture(t, "code_samples/go/sample.go", "sample.go")

	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	newHelper := "func helper(x int) int { return x * 3 }"
	res, err := b.Replace("sample.go", surgery.Selector{Ident: "helper", Kind: "function"}, newHelper, false)
	require.NoError(t, err)
	assert.Contains(t, res.NewContent, newHelper)

	onDisk, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), newHelper)

	m, err := b.Map("sample.go")
	require.NoError(t, err)
	var helperChunks int
	for _, c := range m.Chunks {
		if c.Ident == "helper" {
			helperChunks++
		}
	}
	assert.Equal(t, 1, helperChunks)

	c, err := b.Read("sample.go", "helper")
	require.NoError(t, err)
	assert.Contains(t, c.Content, newHelper)
}

// TestReplace_GoFixtureRejectsUnterminatedBody is scenario 3: the Syntax
// Guard rejects an unterminated replacement and leaves the file untouched.
func TestReplace_GoFixtureRejectsUnterminatedBody(t *testing.T) {
	root := copyFixture(t, "code_samples/go/sample.go", "sample.go")

	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	before, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)

	_, err = b.Replace("sample.go", surgery.Selector{Ident: "helper", Kind: "function"}, "func helper(x int) int { return", false)
	require.Error(t, err)

	kind, ok := rlmerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, rlmerr.KindParseRejected, kind)

	var rerr *rlmerr.Error
	require.ErrorAs(t, err, &rerr)
	assert.NotEmpty(t, rerr.Spans)

	after, err := os.ReadFile(filepath.Join(root, "sample.go"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestIndex_MarkdownFixtureProducesHeadingChunks is scenario 4: top-level
// headings chunk individually and nested h3s produce their own chunks too.
func TestIndex_MarkdownFixtureProducesHeadingChunks(t *testing.T) {
	root := copyFixture(t, "markdown/sample.md", "sample.md")

	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	m, err := b.Map("sample.md")
	require.NoError(t, err)

	idents := map[string]bool{}
	for _, c := range m.Chunks {
		idents[c.Ident] = true
		assert.Equal(t, "heading", c.Kind)
	}
	for _, want := range []string{"Sample Documentation", "Installation", "Usage", "Configuration", "FAQ", "Requirements", "Examples"} {
		assert.True(t, idents[want], "expected heading chunk %q", want)
	}

	installation, err := b.Read("sample.md", "Installation")
	require.NoError(t, err)
	assert.Contains(t, installation.Content, "## Installation")
	assert.Contains(t, installation.Content, "### Requirements", "a heading chunk must span through nested subsections of a lower level")
	assert.NotContains(t, installation.Content, "## Usage", "a heading chunk must stop before the next heading of equal or higher level")
}

// TestIndex_IgnoredTreeSkipsRlmignoredFiles is scenario 5: a path listed in
// the project's ignore file is absent from both the index and the tree view.
func TestIndex_IgnoredTreeSkipsRlmignoredFiles(t *testing.T) {
	root := copyFixtureTree(t, "ignored_tree")

	b, err := Open(root)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Index(context.Background(), pipeline.Config{})
	require.NoError(t, err)

	_, err = b.Map("secret.go")
	assert.Error(t, err)

	_, err = b.Map("visible.go")
	assert.NoError(t, err)

	nodes, err := b.Tree("")
	require.NoError(t, err)
	for _, n := range nodes {
		assert.NotEqual(t, "secret.go", n.Path)
	}
}
