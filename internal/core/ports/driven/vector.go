package driven

import "context"

// VectorIndex provides durable, queryable storage of embedding vectors
// and their associated text/source metadata. Records are append-only;
// removing a document requires a full rebuild.
type VectorIndex interface {
	// Create allocates a fresh, empty index configured for vectors of
	// exactly dimension length. Any prior in-memory index is discarded;
	// the on-disk copy is untouched until Save.
	Create(dimension int) error

	// Add appends records at the end, preserving insertion order so
	// that positions stay aligned with the metadata sidecar. It fails
	// with domain.ErrLengthMismatch when the three slices differ in
	// count, and domain.ErrDimensionMismatch when any vector's length
	// differs from the configured dimension. A failed Add leaves the
	// index unchanged.
	Add(ctx context.Context, texts []string, vectors [][]float32, sources []string) error

	// Search returns the k nearest records, best first, ties broken by
	// insertion order (earliest first). Fewer than k records returns
	// all of them; an empty index returns an empty slice, not an error.
	Search(ctx context.Context, query []float32, k int) ([]Match, error)

	// Save persists the vector structure and metadata sidecar such that
	// a later Load in a new process reconstructs an index identical for
	// search purposes.
	Save() error

	// Load reports whether a previously saved index exists and was
	// reconstructed. A missing artifact is not an error, just not loaded.
	Load() (bool, error)

	// Stats returns record count, configured dimension and load state.
	Stats() IndexStats

	// Close releases resources.
	Close() error
}

// Match is a single similarity search result.
type Match struct {
	// Text is the original document text.
	Text string

	// Source is the document's source label (e.g. a file name).
	Source string

	// Distance is the squared L2 distance to the query; smaller is better.
	Distance float64
}

// IndexStats describes a vector index.
type IndexStats struct {
	// Records is the number of stored vectors.
	Records int

	// Dimension is the configured vector length.
	Dimension int

	// Loaded reports whether the index holds a usable record set.
	Loaded bool

	// BuildID identifies the indexing run that produced the records.
	BuildID string
}
