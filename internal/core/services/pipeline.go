// Package services contains the core retrieval and answering logic,
// independent of any transport or UI.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/kbchat-cli/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// Canned failure answers. Every failure path produces one of these so
// callers always get a renderable result.
const (
	answerNotLoaded  = domain.ErrorAnswerPrefix + "Knowledge base is not loaded. Run 'kbchat index' first."
	answerEmptyQuery = domain.ErrorAnswerPrefix + "Empty question."
	answerFailedFmt  = domain.ErrorAnswerPrefix + "Failed to answer the question: %v"
)

// PipelineOptions carries the generation and history settings.
type PipelineOptions struct {
	SystemPrompt string

	// ContextTemplate formats the retrieved context and the question
	// into the final user message. Must contain two %s verbs.
	ContextTemplate string

	Temperature  float64
	MaxTokens    int
	HistoryLimit int
}

// Pipeline wires retrieval and generation into the question-answering
// flow. Its query methods never return an error: every failure is
// reported inside the QueryResult.
type Pipeline struct {
	retriever *Retriever
	completer driven.CompletionService
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	opts      PipelineOptions

	mu     sync.RWMutex
	loaded bool
}

// NewPipeline creates a pipeline over the given services.
func NewPipeline(embedder driven.EmbeddingService, completer driven.CompletionService,
	index driven.VectorIndex, retriever *Retriever, opts PipelineOptions) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		completer: completer,
		embedder:  embedder,
		index:     index,
		opts:      opts,
	}
}

// LoadIndex tries to restore a previously persisted index. It returns
// whether an index is now loaded; a missing index is not an error.
func (p *Pipeline) LoadIndex() (bool, error) {
	loaded, err := p.index.Load()
	if err != nil {
		return false, fmt.Errorf("load index: %w", err)
	}

	p.mu.Lock()
	p.loaded = loaded
	p.mu.Unlock()

	if loaded {
		stats := p.index.Stats()
		logger.Info("Index loaded: %d records, %d dimensions", stats.Records, stats.Dimension)
	}
	return loaded, nil
}

// Query answers a question without conversation history.
func (p *Pipeline) Query(ctx context.Context, query string, topK int) domain.QueryResult {
	return p.QueryWithHistory(ctx, query, nil, topK)
}

// QueryWithHistory answers a question with conversation history. Only
// the most recent 2*HistoryLimit entries are forwarded to generation;
// older ones are dropped.
func (p *Pipeline) QueryWithHistory(ctx context.Context, query string, history []domain.ChatMessage, topK int) domain.QueryResult {
	clean := normalizeQuery(query)
	result := domain.QueryResult{
		Model:      p.completer.ModelName(),
		CleanQuery: clean,
	}

	if clean == "" {
		result.Answer = answerEmptyQuery
		return result
	}

	if !p.isLoaded() {
		result.Answer = answerNotLoaded
		return result
	}

	matches, err := p.retriever.Search(ctx, clean, topK)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		result.Answer = fmt.Sprintf(answerFailedFmt, err)
		return result
	}

	contextText := p.retriever.RetrieveContext(matches)
	sources := p.retriever.RelevantSources(matches)

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: p.opts.SystemPrompt,
	})
	messages = append(messages, domain.TrimHistory(history, p.opts.HistoryLimit)...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(p.opts.ContextTemplate, contextText, clean),
	})

	answer, err := p.completer.Chat(ctx, messages, driven.ChatOptions{
		Temperature: p.opts.Temperature,
		MaxTokens:   p.opts.MaxTokens,
	})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		result.Answer = fmt.Sprintf(answerFailedFmt, err)
		return result
	}

	result.Answer = answer
	result.Context = contextText
	result.Sources = sources
	return result
}

// IndexDocuments embeds the documents, rebuilds the index from scratch
// and persists it. It reports success as a boolean; after a failed run
// the pipeline is not marked loaded.
func (p *Pipeline) IndexDocuments(ctx context.Context, texts, sources []string) bool {
	if len(texts) == 0 || len(texts) != len(sources) {
		logger.Warn("Indexing rejected: %d texts, %d sources", len(texts), len(sources))
		return false
	}

	logger.Section("Indexing")
	logger.Info("Embedding %d documents with %s", len(texts), p.embedder.ModelName())

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("Embedding failed: %v", err)
		return false
	}

	if err := p.index.Create(len(vectors[0])); err != nil {
		logger.Warn("Index creation failed: %v", err)
		return false
	}
	if err := p.index.Add(ctx, texts, vectors, sources); err != nil {
		logger.Warn("Index population failed: %v", err)
		return false
	}
	if err := p.index.Save(); err != nil {
		logger.Warn("Index persistence failed: %v", err)
		return false
	}

	p.mu.Lock()
	p.loaded = true
	p.mu.Unlock()

	logger.Info("Indexed %d documents", len(texts))
	return true
}

// DescribeImage is a declared capability that is not implemented.
func (p *Pipeline) DescribeImage(_ context.Context, _, _ string) (domain.QueryResult, error) {
	return domain.QueryResult{}, domain.ErrNotImplemented
}

// Stats returns index and model statistics.
func (p *Pipeline) Stats() domain.PipelineStats {
	stats := p.index.Stats()
	return domain.PipelineStats{
		RecordCount: stats.Records,
		Dimension:   stats.Dimension,
		IsLoaded:    p.isLoaded(),
		EmbedModel:  p.embedder.ModelName(),
		ChatModel:   p.completer.ModelName(),
	}
}

func (p *Pipeline) isLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}
