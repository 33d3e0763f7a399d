package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-cli/internal/logger"
)

// Retriever turns a query into grounding context: it embeds the query,
// searches the vector index, and assembles the matched fragments into a
// single context string under a character budget.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	topK     int
	maxChars int
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, topK, maxChars int) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		maxChars: maxChars,
	}
}

// Search embeds the query and returns the nearest fragments, best
// first. A non-positive topK falls back to the configured default.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]driven.Match, error) {
	if topK <= 0 {
		topK = r.topK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.Debug("Retrieved %d fragments for query", len(matches))
	return matches, nil
}

// RetrieveContext assembles matches into a context string. Each fragment
// becomes a "[source] text" block; blocks are joined by blank lines and
// the result is cut at the character budget. Truncation happens on the
// joined string, so a budget boundary can fall mid-block.
func (r *Retriever) RetrieveContext(matches []driven.Match) string {
	if len(matches) == 0 {
		return ""
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = fmt.Sprintf("[%s] %s", m.Source, m.Text)
	}
	joined := strings.Join(blocks, "\n\n")

	if runes := []rune(joined); len(runes) > r.maxChars {
		logger.Debug("Context truncated from %d to %d characters", len(runes), r.maxChars)
		return string(runes[:r.maxChars])
	}
	return joined
}

// ContextForQuery runs retrieval end to end: embed, search, assemble.
func (r *Retriever) ContextForQuery(ctx context.Context, query string, topK int) (string, error) {
	matches, err := r.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	return r.RetrieveContext(matches), nil
}

// SourcesForQuery runs retrieval and returns only the source labels.
func (r *Retriever) SourcesForQuery(ctx context.Context, query string, topK int) ([]string, error) {
	matches, err := r.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	return r.RelevantSources(matches), nil
}

// RelevantSources returns the distinct source names behind the matches,
// in first-seen order.
func (r *Retriever) RelevantSources(matches []driven.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	var sources []string
	for _, m := range matches {
		if _, ok := seen[m.Source]; ok {
			continue
		}
		seen[m.Source] = struct{}{}
		sources = append(sources, m.Source)
	}
	return sources
}

// normalizeQuery trims surrounding whitespace. The trimmed form is what
// gets embedded and echoed back in results.
func normalizeQuery(query string) string {
	return strings.TrimSpace(query)
}
