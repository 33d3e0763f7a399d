package yandex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:      "test-key",
		FolderID:    "test-folder",
		BaseURL:     server.URL,
		RequestRate: 1000, // don't throttle tests
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresCredentials(t *testing.T) {
	_, err := NewEmbeddingService(Config{FolderID: "f"})
	assert.ErrorIs(t, err, domain.ErrConfigMissing)

	_, err = NewEmbeddingService(Config{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestEmbed_SendsModelURIAndHeaders(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foundationModels/v1/textEmbedding", r.URL.Path)
		assert.Equal(t, "Api-Key test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-folder", r.Header.Get("x-folder-id"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "emb://test-folder/text-search-doc", req.ModelURI)
		assert.Equal(t, "hello", req.Text)

		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	})

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
}

func TestEmbed_TruncatesLongInput(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, maxInputChars, utf8.RuneCountInString(req.Text))
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1}})
	})

	long := strings.Repeat("ю", maxInputChars+500)
	_, err := svc.Embed(context.Background(), long)
	require.NoError(t, err)
}

func TestEmbed_DimensionSelfCorrects(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: make([]float32, 128)})
	})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())

	_, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 128, svc.Dimensions())
}

func TestEmbed_ServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestEmbed_MissingEmbeddingField(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})

	_, err := svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestEmbedBatch_Sequential(t *testing.T) {
	var calls int
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{float32(calls)}})
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, 3, calls)
	// One call per document, in order.
	assert.Equal(t, []float32{1}, embeddings[0])
	assert.Equal(t, []float32{3}, embeddings[2])
}

func TestEmbedBatch_StopsOnFirstFailure(t *testing.T) {
	var calls int
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1}})
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
