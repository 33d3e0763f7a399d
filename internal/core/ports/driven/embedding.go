package driven

import "context"

// EmbeddingService generates vector embeddings from text by calling a
// remote embedding endpoint.
//
// Implementations may include:
//   - Yandex Cloud foundation models (text-search-doc, text-search-query)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Input longer than the provider's character cap is silently truncated.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Providers
	// without a batch endpoint call Embed sequentially; there is no
	// batching guarantee across the service boundary.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. The value reflects
	// the last observed response and may self-correct on the first real
	// call if the provider returns a different dimensionality than the
	// configured default.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
