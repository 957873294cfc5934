package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"excellent at threshold", 80, "Excellent"},
		{"excellent above", 95.5, "Excellent"},
		{"good at threshold", 60, "Good"},
		{"fair at threshold", 40, "Fair"},
		{"needs work below", 39.9, "Needs Work"},
		{"needs work at zero", 0, "Needs Work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetPlainLabel(tt.score))
		})
	}
}

func TestEnrichDimensions(t *testing.T) {
	dims := []DimensionScore{
		{Dimension: DimPromptQuality, Score: 82.1, Status: StatusOK},
		{Dimension: DimToolUsage, Score: 0, Status: StatusInsufficientData},
	}

	enriched := EnrichDimensions(dims)

	assert.Len(t, enriched, 2)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "Excellent", enriched[0].Label)
	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, "No Data", enriched[1].Label)
}

func TestClassifySession(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    SessionType
	}{
		{"debugging", "help me debug this panic in the worker pool", DebuggingSession},
		{"refactoring", "refactor the store package and rename the manager", RefactoringSession},
		{"testing", "add a test with a mock store and check coverage", TestingSession},
		{"docs", "update the readme and add a changelog entry", DocumentationSession},
		{"exploration", "how does the scheduler decide which node to pick?", ExplorationSession},
		{"default coding", "add retry support to the http client", CodingSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := []Turn{{Role: UserRole, Content: tt.content, Timestamp: time.Now()}}
			assert.Equal(t, tt.want, ClassifySession(turns))
		})
	}
}

func TestConversationDuration(t *testing.T) {
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	conv := Conversation{StartTime: start, EndTime: start.Add(45 * time.Minute)}
	assert.Equal(t, 45*time.Minute, conv.Duration())

	// Missing or inverted timestamps report zero rather than negative durations.
	assert.Equal(t, time.Duration(0), (&Conversation{}).Duration())
	inverted := Conversation{StartTime: start, EndTime: start.Add(-time.Minute)}
	assert.Equal(t, time.Duration(0), inverted.Duration())
}

func TestUserTurns(t *testing.T) {
	conv := Conversation{Turns: []Turn{
		{Role: UserRole, Content: "a"},
		{Role: AssistantRole, Content: "b"},
		{Role: ToolResultRole, Content: "c"},
		{Role: UserRole, Content: "d"},
	}}

	users := conv.UserTurns()
	assert.Len(t, users, 2)
	assert.Equal(t, "a", users[0].Content)
	assert.Equal(t, "d", users[1].Content)
}
