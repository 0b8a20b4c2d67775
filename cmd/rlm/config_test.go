package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig_MissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := loadFileConfig(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, cfg)
}

func TestLoadFileConfig_ReadsEveryField(t *testing.T) {
	root := t.TempDir()
	content := `
workers: 4
batch_size: 128
max_file_size: 1048576
ignore_file: .customignore
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".rlm.yaml"), []byte(content), 0o644))

	cfg, err := loadFileConfig(root)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 128, cfg.BatchSize)
	assert.Equal(t, int64(1048576), cfg.MaxFileSize)
	assert.Equal(t, ".customignore", cfg.IgnoreFileName)
	assert.Equal(t, "debug", cfg.LogLevel)

	opts := cfg.walkerOptions()
	assert.Equal(t, int64(1048576), opts.MaxFileSize)
	assert.Equal(t, ".customignore", opts.IgnoreFileName)
}

func TestOverride_FlagWinsOverFile(t *testing.T) {
	assert.Equal(t, 8, override(8, 2))
	assert.Equal(t, 2, override(0, 2))
	assert.Equal(t, 0, override(0, 0))
}
