package reader

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// copilotSessionPrefix marks session ids minted for Copilot traces, which
// carry no id of their own.
const copilotSessionPrefix = "cop_"

// CopilotReader reads exported Copilot chat traces: one JSON file per session
// under ~/.skillscope/copilot_traces.
type CopilotReader struct {
	root string
}

var _ contract.SessionReader = &CopilotReader{} // Compile-time check

// NewCopilotReader builds a reader rooted at the given trace directory,
// defaulting to ~/.skillscope/copilot_traces.
func NewCopilotReader(root string) *CopilotReader {
	if root == "" {
		if home, err := os.UserHomeDir(); err == nil {
			root = filepath.Join(home, ".skillscope", "copilot_traces")
		}
	}
	return &CopilotReader{root: root}
}

// Tool implements the contract.SessionReader interface.
func (r *CopilotReader) Tool() schema.AgentTool { return schema.CopilotTool }

// ReadSessions implements the contract.SessionReader interface.
func (r *CopilotReader) ReadSessions(ctx context.Context, window contract.Window) ([]schema.Conversation, []*contract.ParseError, error) {
	files, err := filepath.Glob(filepath.Join(r.root, "*.json"))
	if err != nil || len(files) == 0 {
		return nil, nil, nil // no traces exported, nothing to read
	}

	var convs []schema.Conversation
	var parseErrs []*contract.ParseError
	for _, path := range files {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		conv, perr := parseCopilotTrace(path)
		if perr != nil {
			parseErrs = append(parseErrs, perr)
			continue
		}
		if conv != nil && window.Contains(conv.StartTime) {
			convs = append(convs, *conv)
		}
	}
	return convs, parseErrs, nil
}

// copilotTrace is one exported Copilot session file.
type copilotTrace struct {
	SessionID string `json:"session_id"`
	Workspace string `json:"workspace"`
	Model     string `json:"model"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
	Messages  []struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	} `json:"messages"`
	// Completions carries inline-suggestion telemetry captured alongside the
	// chat transcript.
	Completions []struct {
		Timestamp       string  `json:"timestamp"`
		Language        string  `json:"language"`
		SuggestionLines int     `json:"suggestion_lines"`
		Accepted        bool    `json:"accepted"`
		LatencyMS       float64 `json:"latency_ms"`
	} `json:"completions"`
}

// parseCopilotTrace reads one trace file into a conversation, or nil when the
// trace holds no messages.
func parseCopilotTrace(path string) (*schema.Conversation, *contract.ParseError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contract.NewParseError(path, err)
	}

	var trace copilotTrace
	if err := json.Unmarshal(data, &trace); err != nil {
		return nil, contract.NewParseError(path, err)
	}
	if len(trace.Messages) == 0 && len(trace.Completions) == 0 {
		return nil, nil
	}

	conv := &schema.Conversation{
		SessionID:     trace.SessionID,
		Tool:          schema.CopilotTool,
		WorkspacePath: trace.Workspace,
		Model:         trace.Model,
		SourcePath:    path,
	}
	if conv.SessionID == "" {
		conv.SessionID = copilotSessionPrefix + strings.TrimSuffix(filepath.Base(path), ".json")
	} else if !strings.HasPrefix(conv.SessionID, copilotSessionPrefix) {
		conv.SessionID = copilotSessionPrefix + conv.SessionID
	}

	if ts, err := time.Parse(time.RFC3339, trace.StartedAt); err == nil {
		conv.StartTime = ts
	}
	if ts, err := time.Parse(time.RFC3339, trace.EndedAt); err == nil {
		conv.EndTime = ts
	}

	for _, m := range trace.Messages {
		turn := schema.Turn{Content: m.Content}
		switch m.Role {
		case "user":
			turn.Role = schema.UserRole
		case "assistant", "copilot":
			turn.Role = schema.AssistantRole
		case "system":
			turn.Role = schema.SystemRole
		default:
			continue
		}
		if ts, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
			turn.Timestamp = ts
		}
		conv.Turns = append(conv.Turns, turn)
	}
	for _, e := range trace.Completions {
		ev := schema.CompletionEvent{
			Language:        e.Language,
			SuggestionLines: e.SuggestionLines,
			Accepted:        e.Accepted,
			LatencyMS:       e.LatencyMS,
		}
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			ev.Timestamp = ts
		}
		conv.Completions = append(conv.Completions, ev)
	}

	// Completion-only traces are valid pseudo-sessions; traces with neither
	// turns nor completions carry nothing to analyze.
	if len(conv.Turns) == 0 && len(conv.Completions) == 0 {
		return nil, nil
	}

	finalizeConversation(conv)

	// Completion-only traces have no turn timestamps; completion events also
	// widen the bounds when they fall outside the turn-derived window.
	for _, ev := range conv.Completions {
		if ev.Timestamp.IsZero() {
			continue
		}
		if conv.StartTime.IsZero() || ev.Timestamp.Before(conv.StartTime) {
			conv.StartTime = ev.Timestamp
		}
		if conv.EndTime.IsZero() || ev.Timestamp.After(conv.EndTime) {
			conv.EndTime = ev.Timestamp
		}
	}

	return conv, nil
}
