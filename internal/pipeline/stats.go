package pipeline

// Stats summarizes one Index/Reindex pass — widened from synapse's
// Stats{FilesTotal, FilesIndexed, FilesSkipped, ChunksTotal} with the two
// counters a delete-sweep and a non-aborting per-file failure policy need,
// both required by spec.md §4.4 and absent from synapse's additive-only
// indexer.
type Stats struct {
	FilesTotal     int
	FilesIndexed   int64
	FilesUnchanged int64
	FilesFailed    int64
	FilesDeleted   int64
	ChunksTotal    int64
}
