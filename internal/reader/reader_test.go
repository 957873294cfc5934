package reader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkohari/skillscope/schema"
)

func TestNewSessionReaders(t *testing.T) {
	readers := NewSessionReaders()
	assert.Len(t, readers, 3)

	seen := make(map[schema.AgentTool]bool)
	for _, r := range readers {
		seen[r.Tool()] = true
	}
	assert.True(t, seen[schema.ClaudeCodeTool])
	assert.True(t, seen[schema.CursorTool])
	assert.True(t, seen[schema.CopilotTool])
}

func TestFinalizeTurn(t *testing.T) {
	turn := schema.Turn{
		Role:    schema.UserRole,
		Content: "The handler in server.go throws a runtime error, see server.go and config.yaml",
	}
	finalizeTurn(&turn)

	assert.Equal(t, []string{"server.go", "config.yaml"}, turn.FileRefs, "refs deduped, order preserved")
	assert.True(t, turn.HasErrorContext)
	assert.False(t, turn.HasCodeSnippet)
}

func TestFinalizeTurnCodeSnippet(t *testing.T) {
	turn := schema.Turn{Role: schema.UserRole, Content: "```go\nfunc main() {}\n```"}
	finalizeTurn(&turn)
	assert.True(t, turn.HasCodeSnippet)

	// A flag already set by the source parser survives plain content.
	turn = schema.Turn{Role: schema.UserRole, Content: "plain text", HasCodeSnippet: true}
	finalizeTurn(&turn)
	assert.True(t, turn.HasCodeSnippet)
}

func TestFinalizeConversation(t *testing.T) {
	base := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	conv := &schema.Conversation{
		SessionID: "s1",
		Tool:      schema.ClaudeCodeTool,
		Turns: []schema.Turn{
			{Role: schema.UserRole, Content: "debug the panic: nil deref", Timestamp: base.Add(2 * time.Minute)},
			{Role: schema.AssistantRole, Content: "Found it.", Timestamp: base, InputTokens: 1000, OutputTokens: 50},
			{Role: schema.UserRole, Content: "thanks", Timestamp: base.Add(5 * time.Minute)},
		},
	}
	finalizeConversation(conv)

	assert.Equal(t, base, conv.StartTime, "start derived from earliest turn")
	assert.Equal(t, base.Add(5*time.Minute), conv.EndTime, "end derived from latest turn")
	assert.Equal(t, 1000, conv.InputTokens)
	assert.Equal(t, 50, conv.OutputTokens)
	assert.Equal(t, schema.DebuggingSession, conv.SessionType)
}

func TestDedupeStrings(t *testing.T) {
	assert.Nil(t, dedupeStrings(nil))
	assert.Equal(t, []string{"a", "b", "c"}, dedupeStrings([]string{"a", "b", "a", "c", "b"}))
}
