package yandex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *CompletionService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewCompletionService(Config{
		APIKey:   "test-key",
		FolderID: "test-folder",
		BaseURL:  server.URL,
	})
	require.NoError(t, err)
	return svc
}

func answerWith(text string) completionResponse {
	var resp completionResponse
	resp.Result.Alternatives = []struct {
		Message completionMessage `json:"message"`
		Status  string            `json:"status"`
	}{
		{Message: completionMessage{Role: domain.RoleAssistant, Text: text}, Status: "ALTERNATIVE_STATUS_FINAL"},
	}
	return resp
}

func TestNewCompletionService_RequiresCredentials(t *testing.T) {
	_, err := NewCompletionService(Config{FolderID: "f"})
	assert.ErrorIs(t, err, domain.ErrConfigMissing)

	_, err = NewCompletionService(Config{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestChat_SendsModelURIAndOptions(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foundationModels/v1/completion", r.URL.Path)
		assert.Equal(t, "Api-Key test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-folder", r.Header.Get("x-folder-id"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt://test-folder/yandexgpt-lite", req.ModelURI)
		assert.False(t, req.CompletionOptions.Stream)
		assert.Equal(t, 0.7, req.CompletionOptions.Temperature)
		assert.Equal(t, 1000, req.CompletionOptions.MaxTokens)

		json.NewEncoder(w).Encode(answerWith("Paris."))
	})

	answer, err := svc.Chat(context.Background(),
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "Capital of France?"}},
		driven.ChatOptions{Temperature: 0.7, MaxTokens: 1000},
	)
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
}

func TestChat_SystemRoleBecomesUserMessage(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		require.Len(t, req.Messages, 2)
		assert.Equal(t, domain.RoleUser, req.Messages[0].Role)
		assert.Equal(t, systemInstructionPrefix+"Answer briefly.", req.Messages[0].Text)
		assert.Equal(t, domain.RoleUser, req.Messages[1].Role)
		assert.Equal(t, "hi", req.Messages[1].Text)

		json.NewEncoder(w).Encode(answerWith("hello"))
	})

	_, err := svc.Chat(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "Answer briefly."},
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
}

func TestChat_ServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})

	_, err := svc.Chat(context.Background(),
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
		driven.ChatOptions{},
	)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestChat_APIErrorBody(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error": {"message": "quota exceeded", "httpCode": 429}}`))
	})

	_, err := svc.Chat(context.Background(),
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
		driven.ChatOptions{},
	)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestChat_NoAlternatives(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"result": {"alternatives": []}}`))
	})

	_, err := svc.Chat(context.Background(),
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
		driven.ChatOptions{},
	)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestPing_UsesSingleTokenCompletion(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.CompletionOptions.MaxTokens)
		json.NewEncoder(w).Encode(answerWith("ok"))
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
