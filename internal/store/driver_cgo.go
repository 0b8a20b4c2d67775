//go:build !purego

package store

// This file is compiled by default (CGO enabled). It links
// github.com/mattn/go-sqlite3, the cgo SQLite driver synapse itself uses.
//
// Build command:
//   CGO_ENABLED=1 go build ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

// driverName is the database/sql driver name this build registers under.
const driverName = "sqlite3"

// BuildMode describes the current build configuration.
const BuildMode = "cgo"

// dsn builds the database/sql data source name for path, in mattn/go-sqlite3's
// query-string pragma dialect.
func dsn(path string) string {
	return path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
}
