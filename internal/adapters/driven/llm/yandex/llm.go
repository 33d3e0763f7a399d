// Package yandex provides a completion service adapter using the Yandex
// GPT foundation-models API.
package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://llm.api.cloud.yandex.net"
	DefaultModel   = "yandexgpt-lite"
	DefaultTimeout = 30 * time.Second

	// systemInstructionPrefix introduces a system prompt when it is
	// folded into a user message. The completion API has no native
	// system role.
	systemInstructionPrefix = "System instruction: "
)

// Config holds configuration for the Yandex completion service.
type Config struct {
	// APIKey is the Yandex Cloud API key (required).
	APIKey string

	// FolderID is the Yandex Cloud folder the models live in (required).
	FolderID string

	// BaseURL is the API base URL (default: https://llm.api.cloud.yandex.net).
	BaseURL string

	// Model is the completion model to use (default: yandexgpt-lite).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// CompletionService generates answers using the Yandex GPT API.
type CompletionService struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	folderID string
	model    string
}

// completionMessage is the Yandex message format.
type completionMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// completionOptions is the generation parameter block.
type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// completionRequest is the /foundationModels/v1/completion request format.
type completionRequest struct {
	ModelURI          string              `json:"modelUri"`
	CompletionOptions completionOptions   `json:"completionOptions"`
	Messages          []completionMessage `json:"messages"`
}

// completionResponse is the /foundationModels/v1/completion response format.
type completionResponse struct {
	Result struct {
		Alternatives []struct {
			Message completionMessage `json:"message"`
			Status  string            `json:"status"`
		} `json:"alternatives"`
		ModelVersion string `json:"modelVersion"`
	} `json:"result"`
	Error *struct {
		Message  string `json:"message"`
		HTTPCode int    `json:"httpCode"`
	} `json:"error,omitempty"`
}

// NewCompletionService creates a new Yandex completion service.
func NewCompletionService(cfg Config) (*CompletionService, error) {
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

	return &CompletionService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		folderID: cfg.FolderID,
		model:    cfg.Model,
	}, nil
}

// modelURI returns the fully qualified model identifier.
func (s *CompletionService) modelURI() string {
	return fmt.Sprintf("gpt://%s/%s", s.folderID, s.model)
}

// Chat sends the message sequence and returns the generated answer.
// A system-role entry is rewritten as a leading user message because
// the completion API does not accept a system role.
func (s *CompletionService) Chat(ctx context.Context, messages []domain.ChatMessage, opts driven.ChatOptions) (string, error) {
	apiMessages := make([]completionMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			apiMessages = append(apiMessages, completionMessage{
				Role: domain.RoleUser,
				Text: systemInstructionPrefix + msg.Content,
			})
			continue
		}
		apiMessages = append(apiMessages, completionMessage{
			Role: msg.Role,
			Text: msg.Content,
		})
	}

	reqBody := completionRequest{
		ModelURI: s.modelURI(),
		CompletionOptions: completionOptions{
			Stream:      false,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		},
		Messages: apiMessages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/foundationModels/v1/completion",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+s.apiKey)
	req.Header.Set("x-folder-id", s.folderID)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrUpstream, err)
	}

	var chatResp completionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: yandex error: %s", domain.ErrUpstream, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: yandex returned status %d: %s", domain.ErrUpstream, resp.StatusCode, string(body))
	}
	if len(chatResp.Result.Alternatives) == 0 {
		return "", fmt.Errorf("%w: response has no alternatives", domain.ErrMalformedResponse)
	}

	return chatResp.Result.Alternatives[0].Message.Text, nil
}

// ModelName returns the name of the completion model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable. The foundation-models API has
// no metadata endpoint, so this requests a single-token completion.
func (s *CompletionService) Ping(ctx context.Context) error {
	_, err := s.Chat(ctx,
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "ping"}},
		driven.ChatOptions{MaxTokens: 1},
	)
	if err != nil {
		return fmt.Errorf("yandex: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *CompletionService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
