// Package pipeline implements the Ingestion Pipeline: parallel fan-out of
// files to chunks, with change detection via content hash, followed by a
// single serialized writer — spec.md §4.4.
//
// Grounded on synapse's internal/index/pipeline.go's channel-staged shape
// (walk → hash/dedup workers → chunk workers → single store writer), with
// the embed stage dropped (out of scope here) and replaced by two behaviors
// synapse's additive-only indexer never needed: batched commits and a
// delete-untouched-paths sweep, both from SPEC_FULL.md §4.4.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sloangwaltney/rlm/internal/lang"
	"github.com/sloangwaltney/rlm/internal/rlmerr"
	"github.com/sloangwaltney/rlm/internal/store"
	"github.com/sloangwaltney/rlm/internal/walker"
)

// DefaultBatchSize is the number of files committed per transaction —
// spec.md §4.4 step 3's "N tunable, default 64."
const DefaultBatchSize = 64

// Config configures a pipeline run.
type Config struct {
	Root        string
	BatchSize   int
	MaxWorkers  int
	WalkOptions walker.Options
	// Logger receives one diagnostic per file that fails stage 1 (read) or
	// stage 2 (chunk extraction); nil falls back to slog.Default() the way
	// a zero-value Config is always safe to pass.
	Logger *slog.Logger
}

func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c Config) maxWorkers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return runtime.NumCPU()
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Pipeline runs Index/Reindex against a Store using a Registry to extract
// chunks.
type Pipeline struct {
	store    store.Store
	registry *lang.Registry
}

// New returns a Pipeline writing to s and extracting chunks via reg.
func New(s store.Store, reg *lang.Registry) *Pipeline {
	return &Pipeline{store: s, registry: reg}
}

// hashedFile is a file read from disk with its content hash computed,
// queued for chunk extraction unless its hash is unchanged.
type hashedFile struct {
	info walker.FileInfo
	hash string
	src  []byte
}

// extracted is one file's chunk-extraction result, queued for the writer.
type extracted struct {
	info    walker.FileInfo
	hash    string
	lang    string
	quality string
	chunks  []lang.RawChunk
	refs    []lang.RawRef
}

// Index performs a full ingestion pass over root: walk, hash/extract in
// parallel, write in batches, then sweep any previously indexed path the
// walk no longer sees — spec.md §4.4's numbered algorithm.
func (p *Pipeline) Index(ctx context.Context, root string, cfg Config) (*Stats, error) {
	cfg.Root = root
	return p.run(ctx, cfg)
}

// Reindex re-runs Index against the root recorded in Store metadata by a
// prior Index call — spec.md §4.4's "reindex() (incremental pass using the
// last walk)."
func (p *Pipeline) Reindex(ctx context.Context, cfg Config) (*Stats, error) {
	root, err := p.store.GetMeta("last_root")
	if err != nil {
		return nil, err
	}
	if root == "" {
		return nil, rlmerr.New(rlmerr.KindIO, "reindex called before any index")
	}
	cfg.Root = root
	return p.run(ctx, cfg)
}

// ReindexFile re-extracts a single path against the root recorded by the
// last Index/Reindex call and writes it through the same batched-write
// path as a full pass — spec.md §4.7's "enqueue a reindex of this path"
// after a successful edit, sized for a single file rather than a walk.
// Satisfies internal/surgery.Reindexer.
func (p *Pipeline) ReindexFile(relPath string) error {
	root, err := p.store.GetMeta("last_root")
	if err != nil {
		return err
	}
	if root == "" {
		return rlmerr.New(rlmerr.KindIO, "reindex called before any index")
	}

	absPath := filepath.Join(root, relPath)
	src, err := os.ReadFile(absPath)
	if err != nil {
		return rlmerr.IO(relPath, err)
	}
	sum := sha256.Sum256(src)
	hash := hex.EncodeToString(sum[:])

	cap, tag := p.registry.Lookup(relPath)
	if cap == nil {
		return rlmerr.UnsupportedForEdit(string(tag))
	}
	result, err := cap.Extract(relPath, src)
	quality := string(result.Quality)
	if err != nil {
		quality = string(lang.QualityFailed)
	}

	return p.store.WriteBatch([]store.FileWrite{{
		File: store.FileRecord{
			Path: relPath, Hash: hash, Language: string(tag), Quality: quality,
			SizeBytes: int64(len(src)),
		},
		Chunks: toStoreChunks(result.Chunks, relPath),
		Refs:   resolveRefs(result.Chunks, result.Refs),
	}})
}

func (p *Pipeline) run(ctx context.Context, cfg Config) (*Stats, error) {
	previouslySeen, err := p.store.SeenPaths()
	if err != nil {
		return nil, err
	}

	files, err := walker.Walk(cfg.Root, cfg.WalkOptions)
	if err != nil {
		return nil, err
	}

	stats := &Stats{FilesTotal: len(files)}
	seen := make(map[string]bool, len(files))
	var seenMu sync.Mutex

	workers := cfg.maxWorkers()
	hashedCh := make(chan hashedFile, workers)
	extractedCh := make(chan extracted, workers)

	g, gctx := errgroup.WithContext(ctx)
	logger := cfg.logger()

	// Stage 1: hash + change detection, fan-out across files.
	g.Go(func() error {
		defer close(hashedCh)
		hashGroup, hashCtx := errgroup.WithContext(gctx)
		hashGroup.SetLimit(workers)
		for _, fi := range files {
			fi := fi
			hashGroup.Go(func() error {
				select {
				case <-hashCtx.Done():
					return hashCtx.Err()
				default:
				}

				seenMu.Lock()
				seen[fi.RelPath] = true
				seenMu.Unlock()

				src, err := os.ReadFile(fi.Path)
				if err != nil {
					logger.Error("failed to read file", "path", fi.RelPath, "err", err)
					atomic.AddInt64(&stats.FilesFailed, 1)
					return nil // spec.md §4.4 step 5: a single file's failure doesn't abort the batch
				}
				sum := sha256.Sum256(src)
				hash := hex.EncodeToString(sum[:])

				if oldHash, ok := previouslySeen[fi.RelPath]; ok && oldHash == hash {
					atomic.AddInt64(&stats.FilesUnchanged, 1)
					return nil
				}

				select {
				case hashedCh <- hashedFile{info: fi, hash: hash, src: src}:
				case <-hashCtx.Done():
					return hashCtx.Err()
				}
				return nil
			})
		}
		return hashGroup.Wait()
	})

	// Stage 2: extract chunks, fan-out across hashed files.
	g.Go(func() error {
		defer close(extractedCh)
		extractGroup, extractCtx := errgroup.WithContext(gctx)
		extractGroup.SetLimit(workers)
		for hf := range hashedCh {
			hf := hf
			extractGroup.Go(func() error {
				select {
				case <-extractCtx.Done():
					return extractCtx.Err()
				default:
				}

				cap, tag := p.registry.Lookup(hf.info.RelPath)
				if cap == nil {
					logger.Error("no extraction capability for file", "path", hf.info.RelPath, "lang", tag)
					atomic.AddInt64(&stats.FilesFailed, 1)
					return nil
				}
				result, err := cap.Extract(hf.info.RelPath, hf.src)
				quality := string(result.Quality)
				if err != nil {
					logger.Error("chunk extraction failed", "path", hf.info.RelPath, "lang", tag, "err", err)
					quality = string(lang.QualityFailed)
				}

				select {
				case extractedCh <- extracted{
					info: hf.info, hash: hf.hash, lang: string(tag), quality: quality,
					chunks: result.Chunks, refs: result.Refs,
				}:
				case <-extractCtx.Done():
					return extractCtx.Err()
				}
				return nil
			})
		}
		return extractGroup.Wait()
	})

	// Stage 3: single writer, batching commits.
	g.Go(func() error {
		batch := make([]store.FileWrite, 0, cfg.batchSize())
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := p.store.WriteBatch(batch); err != nil {
				return err
			}
			for _, fw := range batch {
				atomic.AddInt64(&stats.FilesIndexed, 1)
				atomic.AddInt64(&stats.ChunksTotal, int64(len(fw.Chunks)))
			}
			batch = batch[:0]
			return nil
		}

		for ex := range extractedCh {
			refs := resolveRefs(ex.chunks, ex.refs)
			batch = append(batch, store.FileWrite{
				File: store.FileRecord{
					Path:      ex.info.RelPath,
					Hash:      ex.hash,
					Language:  ex.lang,
					Quality:   ex.quality,
					SizeBytes: ex.info.Size,
				},
				Chunks: toStoreChunks(ex.chunks, ex.info.RelPath),
				Refs:   refs,
			})
			if len(batch) >= cfg.batchSize() {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return stats, rlmerr.Wrap(rlmerr.KindCancelled, "ingestion pipeline", err)
		}
		return stats, err
	}

	seenMu.Lock()
	n, err := p.store.DeleteUnseenPaths(seen)
	seenMu.Unlock()
	if err != nil {
		return stats, err
	}
	stats.FilesDeleted = int64(n)

	if err := p.store.SetMeta("last_root", cfg.Root); err != nil {
		return stats, err
	}

	return stats, nil
}

func toStoreChunks(raw []lang.RawChunk, relPath string) []store.Chunk {
	uiContext := uiContextFor(relPath)
	out := make([]store.Chunk, len(raw))
	for i, c := range raw {
		out[i] = store.Chunk{
			Kind:       string(c.Kind),
			Ident:      c.Ident,
			Parent:     c.Parent,
			StartLine:  c.StartLine,
			EndLine:    c.EndLine,
			StartByte:  c.StartByte,
			EndByte:    c.EndByte,
			Content:    c.Content,
			Signature:  c.Signature,
			Doc:        c.Doc,
			Attr:       c.Attr,
			Visibility: c.Visibility,
			UIContext:  uiContext,
		}
	}
	return out
}

// uiContextSegments are the directory-name markers spec.md §3 derives
// ui_context from, checked case-insensitively against each path segment.
var uiContextSegments = map[string]bool{
	"pages": true, "views": true, "screens": true, "components": true, "ui": true,
}

// uiContextFor derives a chunk's ui_context from its owning file's relative
// path: the nearest (closest to the file) segment matching one of
// uiContextSegments, or "ui" if no segment matches but the extension is
// tsx/jsx, or "" otherwise — spec.md §3's ui-context derivation rule.
func uiContextFor(relPath string) string {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		lower := strings.ToLower(segments[i])
		if uiContextSegments[lower] {
			return lower
		}
	}
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".tsx", ".jsx":
		return "ui"
	default:
		return ""
	}
}

// resolveRefs maps each RawRef (which only knows its 1-based line) to the
// narrowest chunk whose line range contains it, since chunks nest (a
// method's lines fall inside its class's lines) and the narrowest match is
// the actual enclosing scope — spec.md §4.3's parent-pointer nesting rule
// read in reverse for references instead of definitions.
func resolveRefs(chunks []lang.RawChunk, refs []lang.RawRef) []store.PendingRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]store.PendingRef, 0, len(refs))
	for _, r := range refs {
		best := -1
		bestSpan := -1
		for i, c := range chunks {
			if r.Line < c.StartLine || r.Line > c.EndLine {
				continue
			}
			span := c.EndLine - c.StartLine
			if best == -1 || span < bestSpan {
				best = i
				bestSpan = span
			}
		}
		out = append(out, store.PendingRef{
			ChunkIndex: best,
			Target:     string(r.Target),
			Ident:      r.Ident,
			Line:       r.Line,
			Col:        r.Col,
		})
	}
	return out
}
