package reader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// maxTranscriptLine bounds the JSONL scanner buffer. Claude Code lines carry
// full tool outputs and can run to megabytes.
const maxTranscriptLine = 16 * 1024 * 1024

// ClaudeCodeReader reads Claude Code JSONL transcripts from
// ~/.claude/projects/<encoded-workspace>/<session-uuid>.jsonl.
type ClaudeCodeReader struct {
	root string
}

var _ contract.SessionReader = &ClaudeCodeReader{} // Compile-time check

// NewClaudeCodeReader builds a reader rooted at the given projects directory,
// defaulting to ~/.claude/projects.
func NewClaudeCodeReader(root string) *ClaudeCodeReader {
	if root == "" {
		if home, err := os.UserHomeDir(); err == nil {
			root = filepath.Join(home, ".claude", "projects")
		}
	}
	return &ClaudeCodeReader{root: root}
}

// Tool implements the contract.SessionReader interface.
func (r *ClaudeCodeReader) Tool() schema.AgentTool { return schema.ClaudeCodeTool }

// ReadSessions implements the contract.SessionReader interface.
func (r *ClaudeCodeReader) ReadSessions(ctx context.Context, window contract.Window) ([]schema.Conversation, []*contract.ParseError, error) {
	projectDirs, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil // agent not installed, nothing to read
		}
		return nil, nil, fmt.Errorf("cannot list claude projects at %s: %w", r.root, err)
	}

	var convs []schema.Conversation
	var parseErrs []*contract.ParseError
	for _, dir := range projectDirs {
		if !dir.IsDir() {
			continue
		}
		workspace := decodeProjectDirName(dir.Name())

		files, err := filepath.Glob(filepath.Join(r.root, dir.Name(), "*.jsonl"))
		if err != nil {
			continue
		}
		for _, path := range files {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			conv, perr := r.parseTranscript(path, workspace)
			if perr != nil {
				parseErrs = append(parseErrs, perr)
				continue
			}
			if conv != nil && window.Contains(conv.StartTime) {
				convs = append(convs, *conv)
			}
		}
	}
	return convs, parseErrs, nil
}

// transcriptEntry is one JSONL line of a Claude Code transcript.
type transcriptEntry struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Timestamp string          `json:"timestamp"`
	Cwd       string          `json:"cwd"`
	GitBranch string          `json:"gitBranch"`
	Message   json.RawMessage `json:"message"`
}

// transcriptMessage is the message payload of a user or assistant entry.
type transcriptMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	} `json:"usage"`
}

// contentBlock is one element of a structured message content array.
type contentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	ID      string          `json:"id"`
	Content json.RawMessage `json:"content"`
}

// parseTranscript reads one JSONL transcript into a conversation. The whole
// file is rejected with a ParseError on malformed JSON; a transcript with no
// usable turns returns nil without error.
func (r *ClaudeCodeReader) parseTranscript(path, workspace string) (*schema.Conversation, *contract.ParseError) {
	f, err := os.Open(path)
	if err != nil {
		return nil, contract.NewParseError(path, err)
	}
	defer func() { _ = f.Close() }()

	conv := &schema.Conversation{
		Tool:          schema.ClaudeCodeTool,
		WorkspacePath: workspace,
		SourcePath:    path,
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxTranscriptLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry transcriptEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, &contract.ParseError{Path: path, Line: lineNo, Err: err}
		}

		switch entry.Type {
		case "user", "assistant":
		case "summary", "file-history-snapshot", "system":
			continue
		default:
			continue
		}

		if entry.SessionID != "" {
			conv.SessionID = entry.SessionID
		}
		if entry.Cwd != "" {
			conv.WorkspacePath = entry.Cwd
		}
		if entry.GitBranch != "" {
			conv.Branch = entry.GitBranch
		}

		turn, err := parseEntryTurn(&entry, conv)
		if err != nil {
			return nil, &contract.ParseError{Path: path, Line: lineNo, Err: err}
		}
		if turn != nil {
			conv.Turns = append(conv.Turns, *turn)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, contract.NewParseError(path, err)
	}

	if len(conv.Turns) == 0 {
		return nil, nil
	}
	if conv.SessionID == "" {
		// Fall back to the transcript file name, which is the session uuid.
		conv.SessionID = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}
	finalizeConversation(conv)
	return conv, nil
}

// parseEntryTurn converts one user/assistant entry into a normalized turn.
// Entries that carry no text or tool activity (e.g. pure tool results with
// empty content) still produce a turn so turn counts stay faithful.
func parseEntryTurn(entry *transcriptEntry, conv *schema.Conversation) (*schema.Turn, error) {
	var msg transcriptMessage
	if err := json.Unmarshal(entry.Message, &msg); err != nil {
		return nil, fmt.Errorf("bad message payload: %w", err)
	}

	turn := schema.Turn{}
	switch entry.Type {
	case "user":
		turn.Role = schema.UserRole
	case "assistant":
		turn.Role = schema.AssistantRole
	}

	if entry.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", entry.Timestamp, err)
		}
		turn.Timestamp = ts
	}

	if msg.Model != "" {
		conv.Model = msg.Model
	}
	if msg.Usage != nil {
		turn.InputTokens = msg.Usage.InputTokens + msg.Usage.CacheReadInputTokens + msg.Usage.CacheCreationInputTokens
		turn.OutputTokens = msg.Usage.OutputTokens
	}

	// Content is either a plain string or an array of typed blocks.
	var text string
	if err := json.Unmarshal(msg.Content, &text); err == nil {
		turn.Content = text
		return &turn, nil
	}

	var blocks []contentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return nil, fmt.Errorf("bad content payload: %w", err)
	}

	var parts []string
	isToolResult := false
	for _, b := range blocks {
		switch b.Type {
		case "text":
			parts = append(parts, b.Text)
		case "tool_use":
			turn.ToolCalls = append(turn.ToolCalls, schema.ToolCall{Name: b.Name, ID: b.ID})
		case "tool_result":
			isToolResult = true
		}
	}
	if isToolResult && turn.Role == schema.UserRole {
		// Tool results come back on user-typed entries but are not prompts.
		turn.Role = schema.ToolResultRole
	}
	turn.Content = strings.Join(parts, "\n")
	return &turn, nil
}

// decodeProjectDirName recovers the workspace path from a Claude project
// directory name, where path separators are encoded as dashes.
func decodeProjectDirName(name string) string {
	if !strings.HasPrefix(name, "-") {
		return name
	}
	return strings.ReplaceAll(name, "-", string(filepath.Separator))
}
