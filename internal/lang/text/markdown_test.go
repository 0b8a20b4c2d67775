package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloangwaltney/rlm/internal/lang"
)

const markdownFixture = `# Sample Documentation

A short fixture exercising heading-bounded chunking.

## Installation

Run the installer and confirm the binary is on ` + "`PATH`" + `.

### Requirements

Go 1.25 or newer.

## Usage

Invoke the CLI against a project root.
`

func chunkByIdent(chunks []lang.RawChunk, ident string) *lang.RawChunk {
	for i := range chunks {
		if chunks[i].Ident == ident {
			return &chunks[i]
		}
	}
	return nil
}

func TestExtract_HeadingSpansThroughNestedSubsectionsToNextEqualOrHigherLevel(t *testing.T) {
	m := NewMarkdown()
	result, err := m.Extract("sample.md", []byte(markdownFixture))
	require.NoError(t, err)

	installation := chunkByIdent(result.Chunks, "Installation")
	require.NotNil(t, installation)
	assert.Contains(t, installation.Content, "### Requirements")
	assert.Contains(t, installation.Content, "Go 1.25 or newer.")
	assert.NotContains(t, installation.Content, "## Usage")

	requirements := chunkByIdent(result.Chunks, "Requirements")
	require.NotNil(t, requirements)
	assert.Equal(t, "Installation", requirements.Parent)

	usage := chunkByIdent(result.Chunks, "Usage")
	require.NotNil(t, usage)
	assert.NotContains(t, usage.Content, "### Requirements")
}

func TestExtract_SiblingHeadingsAtSameLevelDoNotBleedIntoEachOther(t *testing.T) {
	m := NewMarkdown()
	result, err := m.Extract("sample.md", []byte(markdownFixture))
	require.NoError(t, err)

	installation := chunkByIdent(result.Chunks, "Installation")
	require.NotNil(t, installation)
	assert.NotContains(t, installation.Content, "## Usage")
}
