// Package flat provides a brute-force vector index with full persistence.
// Search is exact squared-L2 over all records, O(n*d) per query, which is
// fine at document-collection scale. Records are append-only; rebuilding
// the index is the only way to remove one.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Artifact file names inside the index directory.
const (
	vectorsFile  = "vectors.bin"
	metadataFile = "metadata.json"
)

// record pairs a stored text with its source label. Records are
// position-aligned with the vectors slice at all times.
type record struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Index is a flat in-memory vector index persisted as two artifacts:
// a binary vector file and a JSON metadata sidecar.
type Index struct {
	mu        sync.RWMutex
	dir       string
	dimension int
	buildID   string
	vectors   [][]float32
	records   []record
}

// New creates an index handle rooted at dir. The index starts empty;
// call Load to restore a previously saved record set, or Create to
// start a fresh one.
func New(dir string) *Index {
	return &Index{dir: dir}
}

// Create allocates a fresh, empty index for vectors of exactly
// dimension length. Any prior in-memory state is discarded; the on-disk
// artifacts are untouched until Save.
func (idx *Index) Create(dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("flat: dimension must be positive, got %d", dimension)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.dimension = dimension
	idx.buildID = uuid.New().String()
	idx.vectors = nil
	idx.records = nil
	return nil
}

// Add appends records at the end of the index. All inputs are validated
// before anything is appended, so a failed Add leaves the index unchanged.
func (idx *Index) Add(_ context.Context, texts []string, vectors [][]float32, sources []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimension == 0 {
		return errors.New("flat: index not created")
	}
	if len(texts) != len(vectors) || len(texts) != len(sources) {
		return fmt.Errorf("%w: %d texts, %d vectors, %d sources",
			domain.ErrLengthMismatch, len(texts), len(vectors), len(sources))
	}
	for i, v := range vectors {
		if len(v) != idx.dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, i, len(v), idx.dimension)
		}
	}

	idx.vectors = append(idx.vectors, vectors...)
	for i := range texts {
		idx.records = append(idx.records, record{Text: texts[i], Source: sources[i]})
	}
	return nil
}

// Search returns the k nearest records by squared L2 distance, best
// first. Ties are broken by insertion order, earliest first. An empty
// index returns an empty result, not an error.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.Match, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.vectors) == 0 {
		return nil, nil
	}
	if idx.dimension != 0 && len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(query), idx.dimension)
	}

	order := make([]int, len(idx.vectors))
	dists := make([]float64, len(idx.vectors))
	for i, v := range idx.vectors {
		order[i] = i
		dists[i] = squaredL2(query, v)
	}

	// Stable sort keeps insertion order among equal distances.
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	matches := make([]driven.Match, k)
	for i := 0; i < k; i++ {
		j := order[i]
		matches[i] = driven.Match{
			Text:     idx.records[j].Text,
			Source:   idx.records[j].Source,
			Distance: dists[j],
		}
	}
	return matches, nil
}

// Stats returns record count, configured dimension and load state.
func (idx *Index) Stats() driven.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return driven.IndexStats{
		Records:   len(idx.records),
		Dimension: idx.dimension,
		Loaded:    idx.dimension > 0,
		BuildID:   idx.buildID,
	}
}

// Close releases resources.
func (idx *Index) Close() error {
	// Nothing to release; artifacts are only open during Save/Load.
	return nil
}

// squaredL2 returns the squared Euclidean distance between two vectors.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
