package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
)

// Pipeline is the retrieval-augmented generation orchestrator.
//
// Query methods never return an error: failures are reported inside the
// QueryResult's Answer field, marked with domain.ErrorAnswerPrefix, so a
// front end always has a well-formed result to render.
type Pipeline interface {
	// Query answers a question without conversation history.
	Query(ctx context.Context, query string, topK int) domain.QueryResult

	// QueryWithHistory answers a question with the given conversation
	// history. Only the most recent 2*history_limit entries are
	// forwarded to generation.
	QueryWithHistory(ctx context.Context, query string, history []domain.ChatMessage, topK int) domain.QueryResult

	// IndexDocuments embeds the documents, rebuilds the index and
	// persists it. It reports success as a boolean; no partial index is
	// marked loaded after a failed run.
	IndexDocuments(ctx context.Context, texts, sources []string) bool

	// DescribeImage is a declared capability that is not implemented.
	// It returns domain.ErrNotImplemented so callers can branch on it.
	DescribeImage(ctx context.Context, imageURL, question string) (domain.QueryResult, error)

	// Stats returns index and model statistics.
	Stats() domain.PipelineStats
}
