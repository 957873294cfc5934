package schema

// DimensionKey identifies a scored skill dimension.
type DimensionKey string

// The eight skill dimensions, in report order.
const (
	DimPromptQuality      DimensionKey = "prompt_quality"
	DimConversationFlow   DimensionKey = "conversation_flow"
	DimContextManagement  DimensionKey = "context_management"
	DimSessionPatterns    DimensionKey = "session_patterns"
	DimToolUsage          DimensionKey = "tool_usage"
	DimRuleFile           DimensionKey = "rule_file"
	DimCompletionPatterns DimensionKey = "completion_patterns"
	DimOutcomeTracking    DimensionKey = "outcome_tracking"
)

// AllDimensions lists every dimension in canonical report order.
// Aggregation iterates this slice so results stay deterministic.
var AllDimensions = []DimensionKey{
	DimPromptQuality,
	DimConversationFlow,
	DimContextManagement,
	DimSessionPatterns,
	DimToolUsage,
	DimRuleFile,
	DimCompletionPatterns,
	DimOutcomeTracking,
}

// ValidDimensions is the membership set for config validation.
var ValidDimensions = func() map[DimensionKey]bool {
	m := make(map[DimensionKey]bool, len(AllDimensions))
	for _, d := range AllDimensions {
		m[d] = true
	}
	return m
}()

// SubKey identifies a sub-metric within a dimension.
type SubKey string

// Prompt quality sub-metrics.
const (
	SubSpecificity SubKey = "specificity"
	SubContext     SubKey = "context"
	SubClarity     SubKey = "clarity"
	SubEfficiency  SubKey = "efficiency"
	SubReasoning   SubKey = "reasoning"
)

// Conversation flow sub-metrics.
const (
	SubResolution  SubKey = "resolution"
	SubCorrections SubKey = "corrections"
	SubRestatement SubKey = "restatement"
	SubAcceptance  SubKey = "acceptance"
)

// Context management sub-metrics.
const (
	SubFileRefs     SubKey = "file_refs"
	SubErrorContext SubKey = "error_context"
	SubCodeContext  SubKey = "code_context"
	SubScope        SubKey = "scope"
	SubBudget       SubKey = "budget"
)

// Session pattern sub-metrics.
const (
	SubDuration  SubKey = "duration"
	SubFrequency SubKey = "frequency"
	SubDiversity SubKey = "diversity"
	SubFatigue   SubKey = "fatigue"
	SubDeepWork  SubKey = "deep_work"
)

// Tool usage sub-metrics.
const (
	SubToolDiversity    SubKey = "tool_diversity"
	SubMCPAdoption      SubKey = "mcp_adoption"
	SubSlashCommands    SubKey = "slash_commands"
	SubAutomation       SubKey = "automation"
	SubAppropriateness  SubKey = "appropriateness"
)

// Rule file sub-metrics.
const (
	SubCompleteness     SubKey = "completeness"
	SubRuleSpecificity  SubKey = "rule_specificity"
	SubActionability    SubKey = "actionability"
	SubCurrency         SubKey = "currency"
	SubCoverage         SubKey = "coverage"
)

// Completion pattern sub-metrics (inline completion telemetry).
const (
	SubAcceptRate     SubKey = "accept_rate"
	SubSuggestionFit  SubKey = "suggestion_fit"
	SubLanguageSpread SubKey = "language_spread"
	SubLatency        SubKey = "latency"
)

// Outcome tracking sub-metrics.
const (
	SubCommitRate   SubKey = "commit_rate"
	SubProductivity SubKey = "productivity"
	SubRework       SubKey = "rework"
	SubQuality      SubKey = "quality"
	SubOutcomeTrend SubKey = "outcome_trend"
)

// ScoreStatus marks whether a score is backed by enough data.
type ScoreStatus string

// Score statuses. Insufficient data is a normal outcome, never an error and
// never a zero score.
const (
	StatusOK               ScoreStatus = "ok"
	StatusInsufficientData ScoreStatus = "insufficient_data"
)

// TrendDirection classifies the movement of a dimension between runs.
type TrendDirection string

// Trend directions.
const (
	TrendImproving    TrendDirection = "improving"
	TrendDeclining    TrendDirection = "declining"
	TrendStable       TrendDirection = "stable"
	TrendInsufficient TrendDirection = "insufficient_data"
)

// Preset names select a bundle of dimensions to run.
type Preset string

// Analyzer presets.
const (
	QuickPreset    Preset = "quick"
	CoachingPreset Preset = "coaching"
	FullPreset     Preset = "full"
)

// ValidPresets is the membership set for config validation.
var ValidPresets = map[Preset]bool{
	QuickPreset:    true,
	CoachingPreset: true,
	FullPreset:     true,
}

// PresetDimensions maps each preset to the dimensions it enables.
var PresetDimensions = map[Preset][]DimensionKey{
	QuickPreset:    {DimPromptQuality, DimConversationFlow, DimSessionPatterns},
	CoachingPreset: {DimPromptQuality, DimConversationFlow, DimContextManagement, DimSessionPatterns, DimRuleFile},
	FullPreset:     AllDimensions,
}

// DimensionDescriptions explains each dimension for the dimensions command.
var DimensionDescriptions = map[DimensionKey]string{
	DimPromptQuality:      "Measures prompt specificity, context richness, clarity, and efficiency",
	DimConversationFlow:   "Analyzes turns-to-resolution, correction rate, and context restatement",
	DimContextManagement:  "Evaluates file references, error inclusion, and context budget use",
	DimSessionPatterns:    "Detects duration patterns, frequency, task diversity, and fatigue",
	DimToolUsage:          "Tracks tool diversity, MCP adoption, and automation opportunities",
	DimRuleFile:           "Analyzes instruction file completeness, specificity, and currency",
	DimCompletionPatterns: "Scores inline completion acceptance, suggestion fit, language spread, and latency",
	DimOutcomeTracking:    "Correlates sessions with git commits and rework rates",
}

// RequiresGit marks dimensions that need a git repository to produce data.
var RequiresGit = map[DimensionKey]bool{
	DimOutcomeTracking: true,
}

// DefaultContextWindowTokens is the assumed model context window when a
// transcript carries token usage but no window size.
const DefaultContextWindowTokens = 200_000
