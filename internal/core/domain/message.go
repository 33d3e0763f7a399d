package domain

// Message roles understood by the pipeline and completion clients.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single role-tagged entry in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// TrimHistory returns the most recent 2*limit entries of history
// (limit question/answer pairs). Older entries are dropped, never
// summarised. The input slice is not modified.
func TrimHistory(history []ChatMessage, limit int) []ChatMessage {
	if limit <= 0 {
		return nil
	}
	max := 2 * limit
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}
