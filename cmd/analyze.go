package cmd

import (
	"github.com/mkohari/skillscope/core"
	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/internal/trendstore"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the full session analysis pipeline.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [workspace-path]",
	Short: "Score your AI coding sessions across skill dimensions.",
	Long: `Read agent session transcripts and score how effectively you work with
AI coding tools.

Pulls sessions from Claude Code, Cursor, and GitHub Copilot within the
analysis window, then scores each enabled dimension:
- prompt_quality: how specific, contextualized, and clear your prompts are
- conversation_flow: how efficiently conversations reach resolution
- context_management: whether the agent gets the files and errors it needs
- session_patterns: session length, frequency, and deep-work habits
- tool_usage: breadth and fit of agent tooling (MCP, slash commands)
- rule_file: quality of CLAUDE.md / .cursorrules instruction files
- completion_patterns: inline completion acceptance and latency (Copilot)
- outcome_tracking: whether sessions turn into committed work

Passing a workspace path restricts the analysis to sessions recorded for
that project. Without one, all sessions in the window are analyzed.

Scores persist to the trend store so repeat runs report movement per
dimension. Use --no-store for a throwaway run.

Examples:
  # Score the last week across all tools
  skillscope analyze

  # Score one project, Claude Code only
  skillscope analyze ~/src/myapp --tool claude_code

  # Quick preset with a longer window
  skillscope analyze --preset quick --days 30

  # Export findings to JSON for tracking
  skillscope analyze --output json --output-file report.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := trendstore.Manager.GetTrendStore()
		if err := core.ExecuteSkillAnalyze(rootCtx, cfg, store); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
