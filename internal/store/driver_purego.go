//go:build purego

package store

// This file is compiled with -tags purego, for cross-compilation or
// environments without a C toolchain. It links modernc.org/sqlite, a pure
// Go SQLite implementation, trading some throughput for not needing cgo —
// grounded on dshills-gocontext-mcp's internal/storage/build_purego.go,
// which makes the same tradeoff for the same reason.
//
// Build command:
//   CGO_ENABLED=0 go build -tags purego ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver name this build registers under.
const driverName = "sqlite"

// BuildMode describes the current build configuration.
const BuildMode = "purego"

// dsn builds the database/sql data source name for path, in modernc.org/sqlite's
// _pragma dialect (it does not understand mattn/go-sqlite3's "?_journal_mode=" form).
func dsn(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
}
