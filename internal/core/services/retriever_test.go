package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
)

func TestSearch_EmbedsAndQueriesIndex(t *testing.T) {
	embedder := &mockEmbedder{fallback: []float32{1, 0, 0}}
	index := &mockIndex{matches: []driven.Match{
		{Text: "go is compiled", Source: "go.md", Distance: 0.1},
	}}

	r := NewRetriever(embedder, index, 3, 3000)
	matches, err := r.Search(context.Background(), "what is go", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "go is compiled", matches[0].Text)
	assert.Equal(t, 1, embedder.calls)
}

func TestSearch_EmbedFailure(t *testing.T) {
	embedder := &mockEmbedder{} // no fallback: Embed errors
	r := NewRetriever(embedder, &mockIndex{}, 3, 3000)

	_, err := r.Search(context.Background(), "q", 0)
	assert.Error(t, err)
}

func TestRetrieveContext_FormatsBlocks(t *testing.T) {
	r := NewRetriever(nil, nil, 3, 3000)

	ctx := r.RetrieveContext([]driven.Match{
		{Text: "alpha", Source: "a.txt"},
		{Text: "beta", Source: "b.txt"},
	})
	assert.Equal(t, "[a.txt] alpha\n\n[b.txt] beta", ctx)
}

func TestRetrieveContext_Empty(t *testing.T) {
	r := NewRetriever(nil, nil, 3, 3000)
	assert.Empty(t, r.RetrieveContext(nil))
}

func TestRetrieveContext_TruncatesAtBudget(t *testing.T) {
	r := NewRetriever(nil, nil, 3, 50)

	ctx := r.RetrieveContext([]driven.Match{
		{Text: strings.Repeat("щ", 100), Source: "long.txt"},
	})
	assert.Equal(t, 50, utf8.RuneCountInString(ctx))
	assert.True(t, strings.HasPrefix(ctx, "[long.txt] "))
}

func TestContextForQuery(t *testing.T) {
	embedder := &mockEmbedder{fallback: []float32{1, 0, 0}}
	index := &mockIndex{matches: []driven.Match{
		{Text: "alpha", Source: "a.txt"},
	}}

	r := NewRetriever(embedder, index, 3, 3000)
	ctx, err := r.ContextForQuery(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, "[a.txt] alpha", ctx)
}

func TestSourcesForQuery(t *testing.T) {
	embedder := &mockEmbedder{fallback: []float32{1, 0, 0}}
	index := &mockIndex{matches: []driven.Match{
		{Source: "a.txt"},
		{Source: "a.txt"},
		{Source: "b.txt"},
	}}

	r := NewRetriever(embedder, index, 3, 3000)
	sources, err := r.SourcesForQuery(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, sources)
}

func TestRelevantSources_DedupesFirstSeen(t *testing.T) {
	r := NewRetriever(nil, nil, 3, 3000)

	sources := r.RelevantSources([]driven.Match{
		{Source: "b.txt"},
		{Source: "a.txt"},
		{Source: "b.txt"},
	})
	assert.Equal(t, []string{"b.txt", "a.txt"}, sources)
}
