package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sloangwaltney/rlm/internal/walker"
)

// fileConfig is the optional .rlm.yaml shape cmd/rlm loads from the project
// root, the way FlowLens's internal/config.Load reads flowlens.yaml: every
// field left out of the file stays at its zero value, which pipeline.Config
// and walker.Options already treat as "use the built-in default," so a
// missing or partial file needs no merging logic of its own. The core
// packages never read this file themselves — spec.md §1 keeps config
// loading out of their scope entirely.
type fileConfig struct {
	Workers        int    `yaml:"workers"`
	BatchSize      int    `yaml:"batch_size"`
	MaxFileSize    int64  `yaml:"max_file_size"`
	IgnoreFileName string `yaml:"ignore_file"`
	LogLevel       string `yaml:"log_level"`
}

// loadFileConfig reads root/.rlm.yaml. A missing file is not an error — it
// just means every field is left at its zero value.
func loadFileConfig(root string) (fileConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ".rlm.yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, nil
		}
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func (c fileConfig) walkerOptions() walker.Options {
	return walker.Options{MaxFileSize: c.MaxFileSize, IgnoreFileName: c.IgnoreFileName}
}

// logger builds the *slog.Logger threaded through pipeline.Config for this
// run, honoring log_level if the file set one.
func (c fileConfig) logger() *slog.Logger {
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// override returns flagVal if the flag was explicitly given a nonzero
// value, else falls back to the file's value for the same setting — a
// flag always wins over the file, the file always wins over a zero-value
// built-in default.
func override(flagVal, fileVal int) int {
	if flagVal != 0 {
		return flagVal
	}
	return fileVal
}
