package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
)

// mockEmbedder returns canned vectors keyed by text; unknown texts get
// the fallback vector, a nil fallback means an error.
type mockEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	calls    int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return nil, errors.New("mock embedder: no vector for input")
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return 3 }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockCompleter echoes a canned answer, or fails.
type mockCompleter struct {
	answer   string
	err      error
	lastMsgs []domain.ChatMessage
	lastOpts driven.ChatOptions
	calls    int
}

func (m *mockCompleter) Chat(_ context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.lastMsgs = messages
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockCompleter) ModelName() string          { return "mock-chat" }
func (m *mockCompleter) Ping(context.Context) error { return nil }
func (m *mockCompleter) Close() error               { return nil }

// mockIndex serves canned matches without real vector math.
type mockIndex struct {
	matches   []driven.Match
	searchErr error
	addErr    error
	saveErr   error
	stats     driven.IndexStats
	added     int
	saved     int
}

func (m *mockIndex) Create(dimension int) error {
	m.stats.Dimension = dimension
	return nil
}

func (m *mockIndex) Add(_ context.Context, texts []string, _ [][]float32, _ []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added += len(texts)
	m.stats.Records += len(texts)
	return nil
}

func (m *mockIndex) Search(context.Context, []float32, int) ([]driven.Match, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.matches, nil
}

func (m *mockIndex) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved++
	return nil
}

func (m *mockIndex) Load() (bool, error)      { return m.stats.Records > 0, nil }
func (m *mockIndex) Stats() driven.IndexStats { return m.stats }
func (m *mockIndex) Close() error             { return nil }
