// Package broker presents the flat in-process surface spec.md §6
// describes: the operations of §4.4 (Ingestion Pipeline), §4.5 (Chunk
// Store), §4.6 (Query Engine), and §4.7 (Surgical Editor) as one facade
// returning plain Go structs, never JSON — JSON shaping belongs to
// cmd/rlm or any other caller. There is no single pack analog for "a
// facade gluing an indexer, a store, a query layer, and an editor
// together behind one type"; the shape follows spec.md §6's prose, with
// the on-disk layout (`.rlm/index.db` under the project root) and the
// schema-version-mismatch-triggers-reindex rule taken directly from
// spec.md §6's "External Interfaces" section.
package broker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sloangwaltney/rlm/internal/pipeline"
	"github.com/sloangwaltney/rlm/internal/query"
	"github.com/sloangwaltney/rlm/internal/rlmerr"
	"github.com/sloangwaltney/rlm/internal/setup"
	"github.com/sloangwaltney/rlm/internal/store"
	"github.com/sloangwaltney/rlm/internal/surgery"
)

// indexDirName and indexFileName form the on-disk layout spec.md §6 fixes:
// a directory named .rlm at the project root holding one file, index.db.
const (
	indexDirName  = ".rlm"
	indexFileName = "index.db"
	metaSchemaKey = "rlm_schema_version"
)

// schemaVersion gates the Chunk/FileRecord shape this broker writes,
// independent of internal/store's own DDL migration version: a mismatch
// here means a prior index was built by a broker that extracted different
// fields, so spec.md §6 requires a full reindex rather than a partial
// migration.
const schemaVersion = "1.0.0"

// Broker is the concrete type presenting spec.md §6's flat surface.
type Broker struct {
	root     string
	store    *store.SQLiteStore
	pipeline *pipeline.Pipeline
	query    *query.Engine
	editor   *surgery.Editor
}

// Open creates .rlm/index.db under root if absent, wires the registry,
// store, pipeline, query engine, and editor together, and wipes any index
// built under an older broker schema version so the next Index call starts
// from a clean slate.
func Open(root string) (*Broker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, rlmerr.IO(root, err)
	}

	dbDir := filepath.Join(absRoot, indexDirName)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, rlmerr.IO(dbDir, err)
	}

	s, err := store.Open(filepath.Join(dbDir, indexFileName))
	if err != nil {
		return nil, err
	}

	if err := reconcileSchemaVersion(s); err != nil {
		s.Close()
		return nil, err
	}

	reg, err := setup.NewRegistry()
	if err != nil {
		s.Close()
		return nil, rlmerr.Wrap(rlmerr.KindIO, "building parser registry", err)
	}

	p := pipeline.New(s, reg)
	b := &Broker{
		root:     absRoot,
		store:    s,
		pipeline: p,
		query:    query.New(s),
	}
	b.editor = surgery.New(absRoot, s, reg, p)
	return b, nil
}

// reconcileSchemaVersion triggers the full reindex spec.md §6 requires on
// a broker-schema mismatch by deleting every previously indexed path;
// Index then sees every file on disk as new.
func reconcileSchemaVersion(s *store.SQLiteStore) error {
	current, err := s.GetMeta(metaSchemaKey)
	if err != nil {
		return err
	}
	if current == schemaVersion {
		return nil
	}
	if current != "" {
		if _, err := s.DeleteUnseenPaths(map[string]bool{}); err != nil {
			return err
		}
	}
	return s.SetMeta(metaSchemaKey, schemaVersion)
}

// Close releases the underlying database handle.
func (b *Broker) Close() error {
	return b.store.Close()
}

// Index performs a full ingestion pass over the broker's root.
func (b *Broker) Index(ctx context.Context, cfg pipeline.Config) (*pipeline.Stats, error) {
	return b.pipeline.Index(ctx, b.root, cfg)
}

// Reindex re-runs ingestion against the root recorded by the last Index.
func (b *Broker) Reindex(ctx context.Context, cfg pipeline.Config) (*pipeline.Stats, error) {
	return b.pipeline.Reindex(ctx, cfg)
}
