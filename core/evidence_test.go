package core

import (
	"strings"
	"testing"
	"time"

	"github.com/mkohari/skillscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectEvidence(t *testing.T) {
	cfg := testConfig(t)
	base := testWindow.Start.Add(time.Hour)

	convs := []schema.Conversation{
		makeConversation("s1", base, 30, []schema.Turn{
			userTurn("fix something, it doesn't work", base),
		}),
		makeConversation("s2", base.Add(2*time.Hour), 30, []schema.Turn{
			userTurn("no, that's wrong, undo that", base.Add(2*time.Hour)),
		}),
		makeConversation("s3", base.Add(4*time.Hour), 30, []schema.Turn{
			userTurn("refactor the parser somehow", base.Add(4*time.Hour)),
		}),
		makeConversation("s4", base.Add(6*time.Hour), 30, []schema.Turn{
			userTurn("make it work", base.Add(6*time.Hour)),
		}),
	}
	dims := []schema.DimensionScore{
		{Dimension: schema.DimPromptQuality, Score: 20, Status: schema.StatusOK},
		{Dimension: schema.DimConversationFlow, Score: 40, Status: schema.StatusOK},
		{Dimension: schema.DimToolUsage, Status: schema.StatusInsufficientData},
	}

	t.Run("respects the limit", func(t *testing.T) {
		got := collectEvidence(testInputWith(convs), dims, cfg)
		assert.Len(t, got, cfg.EvidenceLimit)
	})

	t.Run("prefers session diversity over recency", func(t *testing.T) {
		got := collectEvidence(testInputWith(convs), dims, cfg)
		seen := make(map[string]bool)
		for _, ref := range got {
			assert.False(t, seen[ref.SessionID], "session %s cited twice before all sessions used", ref.SessionID)
			seen[ref.SessionID] = true
		}
	})

	t.Run("weakest dimension cited first", func(t *testing.T) {
		got := collectEvidence(testInputWith(convs), dims, cfg)
		require.NotEmpty(t, got)
		assert.Equal(t, schema.DimPromptQuality, got[0].Dimension)
	})

	t.Run("insufficient dimensions produce no evidence", func(t *testing.T) {
		insuff := []schema.DimensionScore{{Dimension: schema.DimToolUsage, Status: schema.StatusInsufficientData}}
		got := collectEvidence(testInputWith(convs), insuff, cfg)
		assert.Empty(t, got)
	})

	t.Run("zero limit returns empty", func(t *testing.T) {
		zeroCfg := cfg.Clone()
		zeroCfg.EvidenceLimit = 0
		got := collectEvidence(testInputWith(convs), dims, zeroCfg)
		assert.Empty(t, got)
	})

	t.Run("excerpts are bounded", func(t *testing.T) {
		longPrompt := strings.Repeat("fix something broken ", 100)
		conv := makeConversation("long", base, 30, []schema.Turn{userTurn(longPrompt, base)})
		got := collectEvidence(testInputWith([]schema.Conversation{conv}), dims[:1], cfg)
		require.NotEmpty(t, got)
		assert.LessOrEqual(t, len([]rune(got[0].Excerpt)), cfg.ExcerptMaxLen)
	})
}

func testInputWith(convs []schema.Conversation) *ExtractorInput {
	return &ExtractorInput{Conversations: convs, Window: testWindow}
}

func TestCollapseFences(t *testing.T) {
	t.Run("short fences kept", func(t *testing.T) {
		content := "look at this:\n```go\na := 1\nb := 2\n```"
		assert.Equal(t, content, collapseFences(content))
	})

	t.Run("long fences collapse", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("look:\n```go\n")
		for range 20 {
			b.WriteString("line\n")
		}
		b.WriteString("```")

		got := collapseFences(b.String())
		assert.Contains(t, got, "[code elided]")
		assert.Equal(t, fenceCollapseLines, strings.Count(got, "line\n"))
	})
}

func TestComputeDelta(t *testing.T) {
	tests := []struct {
		name          string
		prev, curr    float64
		threshold     float64
		wantDirection schema.TrendDirection
		wantMagnitude float64
	}{
		{"identical scores are stable with zero magnitude", 64.2, 64.2, 5, schema.TrendStable, 0},
		{"movement inside threshold is stable", 50, 52, 5, schema.TrendStable, 2},
		{"same movement over tighter threshold improves", 50, 52, 1, schema.TrendImproving, 2},
		{"decline beyond threshold", 70, 60, 5, schema.TrendDeclining, -10},
		{"movement exactly at threshold is stable", 50, 55, 5, schema.TrendStable, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeDelta(tt.prev, tt.curr, tt.threshold)
			assert.Equal(t, tt.wantDirection, got.Direction)
			assert.InDelta(t, tt.wantMagnitude, got.Magnitude, 1e-9)
		})
	}
}
