// Package store persists indexed files, chunks, and references in an
// embedded SQLite database with a synchronized full-text index — spec.md
// §4.5, widened per SPEC_FULL.md §3/§4.5.
package store

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/sloangwaltney/rlm/internal/rlmerr"
)

// Store is the persistence interface the ingestion pipeline, query engine,
// and surgical editor depend on. Grounded on synapse's internal/store.Store,
// widened with the chunk/reference/tree operations spec.md §4.5 names that
// synapse (a vector-search-only tool) never needed.
type Store interface {
	UpsertFile(f FileRecord) (int64, error)
	ReplaceChunks(fileID int64, chunks []Chunk, refs []PendingRef) error
	// WriteBatch upserts every file in results, and its chunks/refs, inside
	// a single transaction — spec.md §4.4 step 3's "one transaction per N
	// files," with N decided by the caller via how many results it passes.
	WriteBatch(results []FileWrite) error
	DeleteFile(path string) error
	GetFileByPath(path string) (*FileRecord, error)
	GetFileByID(id int64) (*FileRecord, error)
	ListChunks(fileID int64) ([]Chunk, error)
	SearchFullText(query string, limit, offset int) ([]SearchHit, error)
	FindByIdentifier(name string, caseSensitive bool, kinds []string) ([]ChunkSummary, error)
	ScanForReferences(name string) ([]ReferenceHit, error)
	TreeView(prefix string) ([]TreeNode, error)

	SeenPaths() (map[string]string, error) // path -> hash, for the pipeline's delete-untouched sweep
	DeleteUnseenPaths(seen map[string]bool) (int, error)

	GetMeta(key string) (string, error)
	SetMeta(key, value string) error

	Close() error
}

// SQLiteStore implements Store backed by SQLite + FTS5.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at dbPath and initializes the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, dsn(dbPath))
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "open database", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, rlmerr.Wrap(rlmerr.KindStore, "initialize schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) UpsertFile(f FileRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "begin upsert_file", err)
	}
	defer tx.Rollback()

	id, err := upsertFileTx(tx, f)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "commit upsert_file", err)
	}
	return id, nil
}

func upsertFileTx(tx *sql.Tx, f FileRecord) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO files (path, hash, language, quality, size_bytes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			language = excluded.language,
			quality = excluded.quality,
			size_bytes = excluded.size_bytes,
			indexed_at = CURRENT_TIMESTAMP
	`, f.Path, f.Hash, f.Language, f.Quality, f.SizeBytes)
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "upsert file", err)
	}

	var id int64
	if err := tx.QueryRow("SELECT id FROM files WHERE path = ?", f.Path).Scan(&id); err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "read upserted file id", err)
	}

	if _, err := tx.Exec("DELETE FROM error_spans WHERE file_id = ?", id); err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "clear error spans", err)
	}
	if len(f.ErrorSpans) > 0 {
		stmt, err := tx.Prepare("INSERT INTO error_spans (file_id, start_byte, end_byte) VALUES (?, ?, ?)")
		if err != nil {
			return 0, rlmerr.Wrap(rlmerr.KindStore, "prepare error span insert", err)
		}
		defer stmt.Close()
		for _, sp := range f.ErrorSpans {
			if _, err := stmt.Exec(id, sp.StartByte, sp.EndByte); err != nil {
				return 0, rlmerr.Wrap(rlmerr.KindStore, "insert error span", err)
			}
		}
	}

	return id, nil
}

// ReplaceChunks deletes a file's existing chunks and inserts the new set in
// one transaction, maintaining chunks_fts via triggers — spec.md §3's
// "Chunks for a file are produced atomically" invariant and §4.5's
// replace_chunks operation.
func (s *SQLiteStore) ReplaceChunks(fileID int64, chunks []Chunk, refs []PendingRef) error {
	tx, err := s.db.Begin()
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "begin replace_chunks", err)
	}
	defer tx.Rollback()

	if err := replaceChunksTx(tx, fileID, chunks, refs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "commit replace_chunks", err)
	}
	return nil
}

func replaceChunksTx(tx *sql.Tx, fileID int64, chunks []Chunk, refs []PendingRef) error {
	if _, err := tx.Exec("DELETE FROM chunks WHERE file_id = ?", fileID); err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "delete old chunks", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chunks
			(file_id, kind, ident, parent, start_line, end_line, start_byte, end_byte,
			 content, signature, doc, attr, visibility, ui_context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "prepare chunk insert", err)
	}
	defer stmt.Close()

	newIDs := make([]int64, len(chunks))
	for i, c := range chunks {
		res, err := stmt.Exec(fileID, c.Kind, c.Ident, c.Parent, c.StartLine, c.EndLine,
			c.StartByte, c.EndByte, c.Content, c.Signature, c.Doc, c.Attr, c.Visibility, c.UIContext)
		if err != nil {
			return rlmerr.Wrap(rlmerr.KindStore, "insert chunk", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return rlmerr.Wrap(rlmerr.KindStore, "read inserted chunk id", err)
		}
		newIDs[i] = id
	}

	refStmt, err := tx.Prepare("INSERT INTO refs (chunk_id, target, ident, line, col) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "prepare ref insert", err)
	}
	defer refStmt.Close()
	for _, r := range refs {
		if r.ChunkIndex < 0 || r.ChunkIndex >= len(newIDs) {
			continue // enclosing chunk resolution (internal/pipeline) found no containing chunk
		}
		if _, err := refStmt.Exec(newIDs[r.ChunkIndex], r.Target, r.Ident, r.Line, r.Col); err != nil {
			return rlmerr.Wrap(rlmerr.KindStore, "insert ref", err)
		}
	}
	return nil
}

// WriteBatch upserts every file in results and replaces its chunks/refs,
// all inside one transaction — the ingestion pipeline's writer stage calls
// this once per BatchSize files (spec.md §4.4 step 3) instead of per-file,
// to bound write amplification.
func (s *SQLiteStore) WriteBatch(results []FileWrite) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "begin write_batch", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		id, err := upsertFileTx(tx, r.File)
		if err != nil {
			return err
		}
		if err := replaceChunksTx(tx, id, r.Chunks, r.Refs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "commit write_batch", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteFile(path string) error {
	_, err := s.db.Exec("DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "delete file", err)
	}
	return nil
}

func (s *SQLiteStore) GetFileByPath(path string) (*FileRecord, error) {
	row := s.db.QueryRow("SELECT id, path, hash, language, quality, size_bytes, indexed_at FROM files WHERE path = ?", path)
	return scanFileRecord(s, row)
}

func (s *SQLiteStore) GetFileByID(id int64) (*FileRecord, error) {
	row := s.db.QueryRow("SELECT id, path, hash, language, quality, size_bytes, indexed_at FROM files WHERE id = ?", id)
	return scanFileRecord(s, row)
}

func scanFileRecord(s *SQLiteStore, row *sql.Row) (*FileRecord, error) {
	var f FileRecord
	err := row.Scan(&f.ID, &f.Path, &f.Hash, &f.Language, &f.Quality, &f.SizeBytes, &f.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "scan file record", err)
	}

	rows, err := s.db.Query("SELECT start_byte, end_byte FROM error_spans WHERE file_id = ?", f.ID)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "query error spans", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sp ErrorSpan
		if err := rows.Scan(&sp.StartByte, &sp.EndByte); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan error span", err)
		}
		f.ErrorSpans = append(f.ErrorSpans, sp)
	}
	return &f, rows.Err()
}

func (s *SQLiteStore) ListChunks(fileID int64) ([]Chunk, error) {
	rows, err := s.db.Query(`
		SELECT id, file_id, kind, ident, parent, start_line, end_line, start_byte, end_byte,
		       content, signature, doc, attr, visibility, ui_context
		FROM chunks WHERE file_id = ? ORDER BY start_byte
	`, fileID)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "list chunks", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.FileID, &c.Kind, &c.Ident, &c.Parent, &c.StartLine, &c.EndLine,
			&c.StartByte, &c.EndByte, &c.Content, &c.Signature, &c.Doc, &c.Attr, &c.Visibility, &c.UIContext); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan chunk", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SearchFullText ranks chunks by SQLite FTS5's bm25(), joining the
// sanitized query terms with the implicit-AND conjunction spec.md §4.5
// calls the default, grounded on original_source's
// search/fts.rs::sanitize_fts_query (quote each term so punctuation in an
// identifier like "foo_bar" or "Foo::bar" can't be parsed as FTS syntax).
func (s *SQLiteStore) SearchFullText(query string, limit, offset int) ([]SearchHit, error) {
	ftsQuery := sanitizeFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT c.id, f.path, c.kind, c.ident, c.start_line, c.end_line, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		JOIN files f ON f.id = c.file_id
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ? OFFSET ?
	`, ftsQuery, limit, offset)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "search_full_text", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ID, &h.FilePath, &h.Kind, &h.Ident, &h.StartLine, &h.EndLine, &h.Rank); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan search hit", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// sanitizeFTSQuery quotes each whitespace-separated term and joins them
// with a space, which FTS5 treats as an implicit AND — spec.md §4.5's
// "conjunction is default." A trailing "*" on a term is preserved as a
// prefix query instead of being quoted away.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	var terms []string
	for _, f := range fields {
		prefix := strings.HasSuffix(f, "*")
		f = strings.TrimSuffix(f, "*")
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		term := `"` + f + `"`
		if prefix {
			term += "*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " ")
}

func (s *SQLiteStore) FindByIdentifier(name string, caseSensitive bool, kinds []string) ([]ChunkSummary, error) {
	var b strings.Builder
	b.WriteString(`SELECT c.id, f.path, c.kind, c.ident, c.start_line, c.end_line FROM chunks c JOIN files f ON f.id = c.file_id WHERE `)
	args := []any{}
	if caseSensitive {
		b.WriteString("c.ident = ?")
		args = append(args, name)
	} else {
		b.WriteString("c.ident COLLATE NOCASE = ?")
		args = append(args, name)
	}
	if len(kinds) > 0 {
		b.WriteString(" AND c.kind IN (")
		for i, k := range kinds {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, k)
		}
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY f.path, c.start_line")

	rows, err := s.db.Query(b.String(), args...)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "find_by_identifier", err)
	}
	defer rows.Close()

	var out []ChunkSummary
	for rows.Next() {
		var c ChunkSummary
		if err := rows.Scan(&c.ID, &c.FilePath, &c.Kind, &c.Ident, &c.StartLine, &c.EndLine); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan identifier match", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ScanForReferences finds every ref row for name, then discards rows whose
// containing chunk is itself the definition of that identifier — spec.md
// §4.5's "post-filter that discards results whose surrounding chunk is the
// definition."
func (s *SQLiteStore) ScanForReferences(name string) ([]ReferenceHit, error) {
	rows, err := s.db.Query(`
		SELECT f.path, r.line, r.chunk_id, c.ident
		FROM refs r
		JOIN chunks c ON c.id = r.chunk_id
		JOIN files f ON f.id = c.file_id
		WHERE r.ident = ?
		ORDER BY f.path, r.line
	`, name)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "scan_for_references", err)
	}
	defer rows.Close()

	var out []ReferenceHit
	for rows.Next() {
		var h ReferenceHit
		var containingIdent string
		if err := rows.Scan(&h.FilePath, &h.Line, &h.ContextChunkID, &containingIdent); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan reference hit", err)
		}
		if containingIdent == name {
			continue // the reference's own enclosing chunk is the definition itself
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// TreeView lists files under prefix with per-kind chunk counts.
func (s *SQLiteStore) TreeView(prefix string) ([]TreeNode, error) {
	rows, err := s.db.Query(`
		SELECT f.path, f.language, c.kind, COUNT(*)
		FROM files f
		LEFT JOIN chunks c ON c.file_id = f.id
		WHERE f.path LIKE ? || '%'
		GROUP BY f.path, c.kind
		ORDER BY f.path
	`, prefix)
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "tree_view", err)
	}
	defer rows.Close()

	byPath := map[string]*TreeNode{}
	var order []string
	for rows.Next() {
		var path, language string
		var kind sql.NullString
		var count int
		if err := rows.Scan(&path, &language, &kind, &count); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan tree row", err)
		}
		node, ok := byPath[path]
		if !ok {
			node = &TreeNode{Path: path, Language: language, KindCounts: map[string]int{}}
			byPath[path] = node
			order = append(order, path)
		}
		if kind.Valid {
			node.KindCounts[kind.String] = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(order)
	out := make([]TreeNode, 0, len(order))
	for _, p := range order {
		out = append(out, *byPath[p])
	}
	return out, nil
}

func (s *SQLiteStore) SeenPaths() (map[string]string, error) {
	rows, err := s.db.Query("SELECT path, hash FROM files")
	if err != nil {
		return nil, rlmerr.Wrap(rlmerr.KindStore, "read seen paths", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, rlmerr.Wrap(rlmerr.KindStore, "scan seen path", err)
		}
		out[path] = hash
	}
	return out, rows.Err()
}

// DeleteUnseenPaths removes every file row (and its chunks/refs by cascade)
// whose path is not in seen — the walk's "delete-untouched-paths sweep"
// (spec.md §4.4 step 4).
func (s *SQLiteStore) DeleteUnseenPaths(seen map[string]bool) (int, error) {
	rows, err := s.db.Query("SELECT path FROM files")
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "list paths for sweep", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, rlmerr.Wrap(rlmerr.KindStore, "scan path for sweep", err)
		}
		if !seen[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "begin sweep", err)
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare("DELETE FROM files WHERE path = ?")
	if err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "prepare sweep delete", err)
	}
	defer stmt.Close()
	for _, path := range stale {
		if _, err := stmt.Exec(path); err != nil {
			return 0, rlmerr.Wrap(rlmerr.KindStore, "delete stale file", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, rlmerr.Wrap(rlmerr.KindStore, "commit sweep", err)
	}
	return len(stale), nil
}

func (s *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", rlmerr.Wrap(rlmerr.KindStore, "get meta", err)
	}
	return value, nil
}

func (s *SQLiteStore) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return rlmerr.Wrap(rlmerr.KindStore, "set meta", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
