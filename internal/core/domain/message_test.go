package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimHistory_UnderLimit(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
	}

	trimmed := TrimHistory(history, 10)
	assert.Equal(t, history, trimmed)
}

func TestTrimHistory_OverLimit(t *testing.T) {
	var history []ChatMessage
	for i := 0; i < 30; i++ {
		history = append(history, ChatMessage{Role: RoleUser, Content: "q"})
		history = append(history, ChatMessage{Role: RoleAssistant, Content: "a"})
	}

	trimmed := TrimHistory(history, 10)
	assert.Len(t, trimmed, 20)
	// The most recent entries survive.
	assert.Equal(t, history[len(history)-20:], trimmed)
}

func TestTrimHistory_ZeroLimit(t *testing.T) {
	history := []ChatMessage{{Role: RoleUser, Content: "q"}}
	assert.Nil(t, TrimHistory(history, 0))
}

func TestQueryResult_Failed(t *testing.T) {
	ok := QueryResult{Answer: "Paris is the capital of France."}
	assert.False(t, ok.Failed())

	failed := QueryResult{Answer: ErrorAnswerPrefix + "upstream call failed"}
	assert.True(t, failed.Failed())

	empty := QueryResult{}
	assert.False(t, empty.Failed())
}
