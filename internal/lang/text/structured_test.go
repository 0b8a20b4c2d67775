package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlFixture = `name: demo
database:
  host: localhost
  port: 5432
feature_flags:
  - a
  - b
`

func TestExtractYAML_EmitsOneLevelDeepChildrenWithDottedIdent(t *testing.T) {
	s := NewYAML()
	result, err := s.Extract("config.yaml", []byte(yamlFixture))
	require.NoError(t, err)

	byIdent := map[string]string{}
	for _, c := range result.Chunks {
		byIdent[c.Ident] = c.Parent
	}

	assert.Contains(t, byIdent, "name")
	assert.Contains(t, byIdent, "database")
	assert.Contains(t, byIdent, "feature_flags")

	require.Contains(t, byIdent, "database.host")
	assert.Equal(t, "database", byIdent["database.host"])
	require.Contains(t, byIdent, "database.port")
	assert.Equal(t, "database", byIdent["database.port"])

	assert.NotContains(t, byIdent, "feature_flags.a", "a sequence value has no key to descend into")
}

const tomlFixture = `title = "demo"

[server]
host = "localhost"
port = 8080
`

func TestExtractTOML_EmitsOneLevelDeepChildrenWithDottedIdent(t *testing.T) {
	s := NewTOML()
	result, err := s.Extract("config.toml", []byte(tomlFixture))
	require.NoError(t, err)

	byIdent := map[string]string{}
	for _, c := range result.Chunks {
		byIdent[c.Ident] = c.Parent
	}

	assert.Contains(t, byIdent, "title")
	assert.Equal(t, "", byIdent["title"], "a key outside any table stays a flat root-level entry")

	assert.Contains(t, byIdent, "server")

	require.Contains(t, byIdent, "server.host")
	assert.Equal(t, "server", byIdent["server.host"])
	require.Contains(t, byIdent, "server.port")
	assert.Equal(t, "server", byIdent["server.port"])
}

const jsonFixture = `{
  "name": "demo",
  "database": {
    "host": "localhost",
    "port": 5432
  }
}
`

func TestExtractJSON_EmitsOneLevelDeepChildrenWithDottedIdent(t *testing.T) {
	s := NewJSON()
	result, err := s.Extract("config.json", []byte(jsonFixture))
	require.NoError(t, err)

	byIdent := map[string]string{}
	for _, c := range result.Chunks {
		byIdent[c.Ident] = c.Parent
	}

	assert.Contains(t, byIdent, "name")
	assert.Contains(t, byIdent, "database")

	require.Contains(t, byIdent, "database.host")
	assert.Equal(t, "database", byIdent["database.host"])
	require.Contains(t, byIdent, "database.port")
	assert.Equal(t, "database", byIdent["database.port"])

	database := chunkByIdent(result.Chunks, "database")
	require.NotNil(t, database)
	assert.Contains(t, database.Content, "host")
	assert.Contains(t, database.Content, "port")

	host := chunkByIdent(result.Chunks, "database.host")
	require.NotNil(t, host)
	assert.Contains(t, host.Content, "localhost")
}
