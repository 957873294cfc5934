// Package schema holds the shared data model for skillscope.
package schema

import "time"

// AgentTool identifies the AI coding agent that produced a session.
type AgentTool string

// Supported agent tools.
const (
	ClaudeCodeTool AgentTool = "claude_code"
	CursorTool     AgentTool = "cursor"
	CopilotTool    AgentTool = "copilot"
)

// ValidAgentTools is the set of tools skillscope can read transcripts for.
var ValidAgentTools = map[AgentTool]bool{
	ClaudeCodeTool: true,
	CursorTool:     true,
	CopilotTool:    true,
}

// Role classifies a conversation turn.
type Role string

// Turn roles across all supported transcript formats.
const (
	UserRole       Role = "user"
	AssistantRole  Role = "assistant"
	SystemRole     Role = "system"
	ToolUseRole    Role = "tool_use"
	ToolResultRole Role = "tool_result"
)

// SessionType is a coarse classification of what a session was about.
type SessionType string

// Session classifications, derived from content patterns.
const (
	CodingSession        SessionType = "coding"
	DebuggingSession     SessionType = "debugging"
	RefactoringSession   SessionType = "refactoring"
	DocumentationSession SessionType = "documentation"
	TestingSession       SessionType = "testing"
	ExplorationSession   SessionType = "exploration"
	UnknownSession       SessionType = "unknown"
)

// ToolCall is a single tool invocation made by the assistant.
type ToolCall struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Turn is one message in a conversation, normalized across transcript formats.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// ToolCalls holds tool invocations attached to an assistant turn.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolName is set on tool_result turns to name the tool that produced them.
	ToolName string `json:"tool_name,omitempty"`

	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	// FileRefs are file paths mentioned in the turn content, capped during parsing.
	FileRefs []string `json:"file_refs,omitempty"`

	HasErrorContext bool `json:"has_error_context,omitempty"`
	HasCodeSnippet  bool `json:"has_code_snippet,omitempty"`
}

// CompletionEvent is one inline code-completion suggestion. Only Copilot
// traces carry these today.
type CompletionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language,omitempty"`
	// SuggestionLines is the size of the suggestion in lines.
	SuggestionLines int  `json:"suggestion_lines"`
	Accepted        bool `json:"accepted"`
	// LatencyMS is the time from trigger to suggestion shown; 0 means the
	// trace did not measure it.
	LatencyMS float64 `json:"latency_ms,omitempty"`
}

// Conversation is a single normalized agent session. Readers produce these and
// extractors treat them as immutable.
type Conversation struct {
	SessionID string    `json:"session_id"`
	Tool      AgentTool `json:"tool"`
	Turns     []Turn    `json:"turns"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	WorkspacePath string `json:"workspace_path,omitempty"`
	Branch        string `json:"branch,omitempty"`
	Model         string `json:"model,omitempty"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	SessionType SessionType `json:"session_type"`

	// Completions holds inline completion telemetry when the source records
	// it (Copilot traces).
	Completions []CompletionEvent `json:"completions,omitempty"`

	// SourcePath is the transcript file this conversation was parsed from.
	SourcePath string `json:"source_path,omitempty"`
}

// Duration returns the session length, or zero when timestamps are missing.
func (c *Conversation) Duration() time.Duration {
	if c.StartTime.IsZero() || c.EndTime.IsZero() || c.EndTime.Before(c.StartTime) {
		return 0
	}
	return c.EndTime.Sub(c.StartTime)
}

// UserTurns returns the user-authored turns in order.
func (c *Conversation) UserTurns() []Turn {
	var out []Turn
	for _, t := range c.Turns {
		if t.Role == UserRole {
			out = append(out, t)
		}
	}
	return out
}

// TotalTokens returns combined input and output token usage.
func (c *Conversation) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// RuleFileKind distinguishes the instruction-file flavors we analyze.
type RuleFileKind string

// Rule file kinds.
const (
	PrimaryRuleFile  RuleFileKind = "primary"   // CLAUDE.md, .cursorrules, copilot-instructions.md
	NestedRuleFile   RuleFileKind = "nested"    // per-directory rule files one level deep
	SettingsRuleFile RuleFileKind = "settings"  // .claude/settings.json and friends
	MCPConfigFile    RuleFileKind = "mcpconfig" // .mcp.json
	UserRuleFile     RuleFileKind = "user"      // user-level rule files under $HOME
)

// RuleFile describes one discovered instruction file and its structural signals.
type RuleFile struct {
	Path         string       `json:"path"`
	Kind         RuleFileKind `json:"kind"`
	Exists       bool         `json:"exists"`
	WordCount    int          `json:"word_count"`
	SectionCount int          `json:"section_count"`
	Sections     []string     `json:"sections,omitempty"`

	HasExamples       bool `json:"has_examples"`
	HasConstraints    bool `json:"has_constraints"`
	HasProjectContext bool `json:"has_project_context"`
	HasStyleGuide     bool `json:"has_style_guide"`
	HasToolConfig     bool `json:"has_tool_config"`

	LastModified time.Time `json:"last_modified,omitempty"`

	// Content is the raw file text, kept for density analysis.
	Content string `json:"-"`
}

// Commit is a single git commit used for outcome correlation.
type Commit struct {
	Hash    string    `json:"hash"`
	Time    time.Time `json:"time"`
	Subject string    `json:"subject"`
	Author  string    `json:"author"`
}
