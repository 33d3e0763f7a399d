// Package yandex provides an embedding service adapter using the Yandex
// Cloud foundation-models API.
package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://llm.api.cloud.yandex.net"
	DefaultModel      = "text-search-doc"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 256 // text-search-doc default; self-corrects on first response.

	// DefaultRequestRate throttles embedding calls during indexing runs
	// to stay inside the foundation-models quota.
	DefaultRequestRate = 10 // requests per second

	// maxInputChars is the API's input cap. Longer texts are silently
	// truncated before sending.
	maxInputChars = 10000
)

// Config holds configuration for the Yandex embedding service.
type Config struct {
	// APIKey is the Yandex Cloud API key (required).
	APIKey string

	// FolderID is the Yandex Cloud folder the models live in (required).
	FolderID string

	// BaseURL is the API base URL (default: https://llm.api.cloud.yandex.net).
	BaseURL string

	// Model is the embedding model to use (default: text-search-doc).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestRate limits outbound calls per second (default: 10).
	RequestRate float64
}

// EmbeddingService generates embeddings using the Yandex Cloud API.
type EmbeddingService struct {
	client   *http.Client
	limiter  *rate.Limiter
	baseURL  string
	apiKey   string
	folderID string
	model    string

	// dimensions reflects the last observed response.
	mu         sync.Mutex
	dimensions int
}

// embedRequest is the textEmbedding API request format.
type embedRequest struct {
	ModelURI string `json:"modelUri"`
	Text     string `json:"text"`
}

// embedResponse is the textEmbedding API response format.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbeddingService creates a new Yandex embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: yandex API key", domain.ErrConfigMissing)
	}
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("%w: yandex folder ID", domain.ErrConfigMissing)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestRate == 0 {
		cfg.RequestRate = DefaultRequestRate
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		folderID:   cfg.FolderID,
		model:      cfg.Model,
		dimensions: DefaultDimensions,
	}, nil
}

// modelURI returns the fully qualified model identifier.
func (s *EmbeddingService) modelURI() string {
	return fmt.Sprintf("emb://%s/%s", s.folderID, s.model)
}

// Embed generates a vector embedding for the given text. Input longer
// than the API cap is silently truncated at a character boundary.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	if runes := []rune(text); len(runes) > maxInputChars {
		logger.Warn("Embedding input truncated from %d to %d characters", len(runes), maxInputChars)
		text = string(runes[:maxInputChars])
	}

	reqBody := embedRequest{
		ModelURI: s.modelURI(),
		Text:     text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/foundationModels/v1/textEmbedding",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+s.apiKey)
	req.Header.Set("x-folder-id", s.folderID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("%w: yandex returned status %d", domain.ErrUpstream, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: yandex returned status %d: %s", domain.ErrUpstream, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: response has no embedding field", domain.ErrMalformedResponse)
	}

	// Self-correct the advertised dimensionality from the live response.
	s.mu.Lock()
	if s.dimensions != len(embedResp.Embedding) {
		logger.Info("Embedding dimensionality corrected: %d -> %d", s.dimensions, len(embedResp.Embedding))
		s.dimensions = len(embedResp.Embedding)
	}
	s.mu.Unlock()

	return embedResp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts. The API has no
// batch endpoint, so texts are embedded one call at a time, in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size observed on the last
// response, or the configured default before any call was made.
func (s *EmbeddingService) Dimensions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable. The foundation-models API has
// no metadata endpoint, so this embeds a one-word probe text.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("yandex: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
