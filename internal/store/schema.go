package store

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion is bumped whenever ddl changes in a way existing
// databases need migrating for. Grounded on dshills-gocontext-mcp's
// internal/storage/migrations.go, which gates each migration behind a
// semver comparison against a schema_version table instead of synapse's
// bare "CREATE TABLE IF NOT EXISTS" (synapse never needed to version its
// schema since it never shipped a breaking change).
const CurrentSchemaVersion = "1.0.0"

const ddl = `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS schema_version (
    version    TEXT PRIMARY KEY,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS files (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    path        TEXT NOT NULL UNIQUE,
    hash        TEXT NOT NULL,
    language    TEXT NOT NULL DEFAULT '',
    quality     TEXT NOT NULL DEFAULT 'not-parsed',
    size_bytes  INTEGER NOT NULL DEFAULT 0,
    indexed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS error_spans (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id    INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    start_byte INTEGER NOT NULL,
    end_byte   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_error_spans_file ON error_spans(file_id);

CREATE TABLE IF NOT EXISTS chunks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id     INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL DEFAULT '',
    ident       TEXT NOT NULL DEFAULT '',
    parent      TEXT NOT NULL DEFAULT '',
    start_line  INTEGER NOT NULL,
    end_line    INTEGER NOT NULL,
    start_byte  INTEGER NOT NULL,
    end_byte    INTEGER NOT NULL,
    content     TEXT NOT NULL,
    signature   TEXT NOT NULL DEFAULT '',
    doc         TEXT NOT NULL DEFAULT '',
    attr        TEXT NOT NULL DEFAULT '',
    visibility  TEXT NOT NULL DEFAULT '',
    ui_context  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id);
CREATE INDEX IF NOT EXISTS idx_chunks_file_start ON chunks(file_id, start_byte);
CREATE INDEX IF NOT EXISTS idx_chunks_ident ON chunks(ident);
CREATE INDEX IF NOT EXISTS idx_chunks_kind ON chunks(kind);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    ident, content,
    content='chunks',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, ident, content) VALUES (new.id, new.ident, new.content);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, ident, content) VALUES ('delete', old.id, old.ident, old.content);
END;

CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, ident, content) VALUES ('delete', old.id, old.ident, old.content);
    INSERT INTO chunks_fts(rowid, ident, content) VALUES (new.id, new.ident, new.content);
END;

CREATE TABLE IF NOT EXISTS refs (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id  INTEGER NOT NULL REFERENCES chunks(id) ON DELETE CASCADE,
    target    TEXT NOT NULL,
    ident     TEXT NOT NULL,
    line      INTEGER NOT NULL,
    col       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_refs_ident ON refs(ident);
CREATE INDEX IF NOT EXISTS idx_refs_chunk ON refs(chunk_id);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrations holds a single entry so far; future schema changes append
// another entry here rather than editing ddl in place once a released
// version depends on the old shape.
var migrations = []struct {
	version string
	up      string
}{
	{version: CurrentSchemaVersion, up: ddl},
}

// Init creates the schema if absent and records the schema version,
// mirroring migrations.go's ApplyMigrations loop without its Down half:
// this module has never shipped a breaking schema change yet, so there is
// nothing to roll back to.
func Init(db *sql.DB) error {
	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		v, err := semver.NewVersion(m.version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.version, err)
		}
		if !current.LessThan(v) {
			continue
		}
		if _, err := db.Exec(m.up); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		current = v
	}
	return nil
}

func currentVersion(db *sql.DB) (*semver.Version, error) {
	var exists string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, err
	}

	var versionStr string
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&versionStr)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, err
	}
	return semver.NewVersion(versionStr)
}
