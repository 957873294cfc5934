// Package reader normalizes heterogeneous agent transcripts into the shared
// conversation model. Each supported agent has its own reader behind the
// contract.SessionReader interface; unreadable files degrade to per-file
// parse errors instead of failing the run.
package reader

import (
	"strings"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// maxFileRefsPerTurn caps file references extracted from one turn so a
// pasted directory listing cannot dominate context metrics.
const maxFileRefsPerTurn = 20

// NewSessionReaders builds the readers for every supported agent, each rooted
// at its default transcript location.
func NewSessionReaders() []contract.SessionReader {
	return []contract.SessionReader{
		NewClaudeCodeReader(""),
		NewCursorReader(""),
		NewCopilotReader(""),
	}
}

// finalizeTurn derives the content signals every extractor relies on: file
// references, error context, and code snippets.
func finalizeTurn(t *schema.Turn) {
	refs := schema.FileRefPattern().FindAllString(t.Content, maxFileRefsPerTurn)
	t.FileRefs = dedupeStrings(refs)
	t.HasErrorContext = schema.ErrorContextPattern().MatchString(t.Content)
	t.HasCodeSnippet = t.HasCodeSnippet || strings.Contains(t.Content, "```")
}

// finalizeConversation fills the derived conversation fields: time bounds
// from turn timestamps when the transcript carried none, token totals, and
// the session type classification.
func finalizeConversation(c *schema.Conversation) {
	for i := range c.Turns {
		finalizeTurn(&c.Turns[i])
		c.InputTokens += c.Turns[i].InputTokens
		c.OutputTokens += c.Turns[i].OutputTokens

		ts := c.Turns[i].Timestamp
		if ts.IsZero() {
			continue
		}
		if c.StartTime.IsZero() || ts.Before(c.StartTime) {
			c.StartTime = ts
		}
		if c.EndTime.IsZero() || ts.After(c.EndTime) {
			c.EndTime = ts
		}
	}
	c.SessionType = schema.ClassifySession(c.Turns)
}

// dedupeStrings removes duplicates while preserving first-seen order.
func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
