package domain

// ErrorAnswerPrefix marks an answer that reports a failure instead of a
// generated response. Callers must treat any answer beginning with this
// marker as a failed query; there is no separate success flag.
const ErrorAnswerPrefix = "❌ "

// QueryResult is the pipeline's output for a single query.
// It is always well-formed, even when the query failed.
type QueryResult struct {
	// Answer is the generated text, or an ErrorAnswerPrefix-marked
	// failure message.
	Answer string `json:"answer"`

	// Context is the retrieved document text the answer was grounded on.
	// Empty on failure.
	Context string `json:"context"`

	// Sources lists the deduplicated source labels of the retrieved
	// documents, in first-seen relevance order. Empty on failure.
	Sources []string `json:"sources"`

	// Model is the completion model the answer was (or would have been)
	// generated with.
	Model string `json:"model"`

	// CleanQuery is the query text after whitespace normalisation,
	// as it was embedded.
	CleanQuery string `json:"clean_query"`
}

// Failed reports whether the result carries a failure answer.
func (r QueryResult) Failed() bool {
	return len(r.Answer) >= len(ErrorAnswerPrefix) && r.Answer[:len(ErrorAnswerPrefix)] == ErrorAnswerPrefix
}

// PipelineStats describes the state of the pipeline and its index.
type PipelineStats struct {
	// RecordCount is the number of indexed documents.
	RecordCount int `json:"record_count"`

	// Dimension is the embedding dimensionality of the index.
	Dimension int `json:"dimension"`

	// IsLoaded reports whether an index is loaded and queryable.
	IsLoaded bool `json:"is_loaded"`

	// EmbedModel is the embedding model name.
	EmbedModel string `json:"embed_model"`

	// ChatModel is the completion model name.
	ChatModel string `json:"chat_model"`
}
