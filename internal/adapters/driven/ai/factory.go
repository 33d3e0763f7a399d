// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/kbchat-cli/internal/adapters/driven/embedding/ollama"
	yandexembed "github.com/custodia-labs/kbchat-cli/internal/adapters/driven/embedding/yandex"
	ollamallm "github.com/custodia-labs/kbchat-cli/internal/adapters/driven/llm/ollama"
	yandexllm "github.com/custodia-labs/kbchat-cli/internal/adapters/driven/llm/yandex"
	"github.com/custodia-labs/kbchat-cli/internal/config"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service for the
// configured provider.
func CreateEmbeddingService(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case config.ProviderYandex:
		return yandexembed.NewEmbeddingService(yandexembed.Config{
			APIKey:      cfg.Yandex.APIKey,
			FolderID:    cfg.Yandex.FolderID,
			Model:       cfg.Yandex.EmbedModel,
			RequestRate: cfg.Yandex.RequestRate,
		})

	case config.ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.EmbedModel,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// CreateCompletionService creates the completion service for the
// configured provider.
func CreateCompletionService(cfg *config.Config) (driven.CompletionService, error) {
	switch cfg.Provider {
	case config.ProviderYandex:
		return yandexllm.NewCompletionService(yandexllm.Config{
			APIKey:   cfg.Yandex.APIKey,
			FolderID: cfg.Yandex.FolderID,
			Model:    cfg.Yandex.ChatModel,
		})

	case config.ProviderOllama:
		return ollamallm.NewCompletionService(ollamallm.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.ChatModel,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity before handing it back.
func CreateAndValidateEmbeddingService(cfg *config.Config) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	return svc, nil
}

// CreateAndValidateCompletionService creates a completion service and
// validates connectivity before handing it back.
func CreateAndValidateCompletionService(cfg *config.Config) (driven.CompletionService, error) {
	svc, err := CreateCompletionService(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("completion service unreachable: %w", err)
	}
	return svc, nil
}
