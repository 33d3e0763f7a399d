package driven

import (
	"context"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
)

// CompletionService generates answers from a remote text-generation
// endpoint given a structured message sequence.
//
// Implementations may include:
//   - Yandex GPT (yandexgpt-lite, yandexgpt)
//   - Ollama (local models)
type CompletionService interface {
	// Chat sends the message sequence and returns the generated answer.
	// A system-role entry, if present, is translated into whatever shape
	// the remote protocol supports; not every backend has a native
	// system role.
	Chat(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the completion model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatOptions configures answer generation.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
