package schema

import (
	"regexp"
	"sync"
)

// Lazy singletons for pattern sets and default tables. Compiled once on first
// use so package import stays cheap.
var (
	vagueOnce    sync.Once
	vagueRes     []*regexp.Regexp
	verbOnce     sync.Once
	verbRe       *regexp.Regexp
	techOnce     sync.Once
	techRe       *regexp.Regexp
	correctOnce  sync.Once
	correctRes   []*regexp.Regexp
	reworkOnce   sync.Once
	reworkRe     *regexp.Regexp
	reasonOnce   sync.Once
	reasonRes    []*regexp.Regexp
	fileRefOnce  sync.Once
	fileRefRe    *regexp.Regexp
	lineRefOnce  sync.Once
	lineRefRe    *regexp.Regexp
	errorOnce    sync.Once
	errorRe      *regexp.Regexp
	weightsOnce  sync.Once
	weightsMap   map[DimensionKey]map[SubKey]float64
	curvesOnce   sync.Once
	curvesMap    map[CurveKey]CurveSpec
	sessionOnce  sync.Once
	sessionTypes map[SessionType]*regexp.Regexp
)

// VaguePatterns match hand-wavy prompt language that lowers specificity.
func VaguePatterns() []*regexp.Regexp {
	vagueOnce.Do(func() {
		for _, p := range []string{
			`(?i)\bsomething\b`,
			`(?i)\bsomehow\b`,
			`(?i)\bstuff\b`,
			`(?i)\bmake it work\b`,
			`(?i)\bdoesn'?t work\b`,
			`(?i)\bfix (it|this|everything)\b`,
			`(?i)\betc\.?\b`,
			`(?i)\bwhatever\b`,
		} {
			vagueRes = append(vagueRes, regexp.MustCompile(p))
		}
	})
	return vagueRes
}

// SpecificVerbPattern matches action verbs that signal a concrete request.
func SpecificVerbPattern() *regexp.Regexp {
	verbOnce.Do(func() {
		verbRe = regexp.MustCompile(`(?i)\b(implement|refactor|rename|extract|migrate|optimize|debug|add|remove|replace|convert|update|write|delete|move|split|merge|validate|parse)\b`)
	})
	return verbRe
}

// TechMentionPattern matches technology and framework names.
func TechMentionPattern() *regexp.Regexp {
	techOnce.Do(func() {
		techRe = regexp.MustCompile(`(?i)\b(go|golang|python|typescript|javascript|rust|java|sql|sqlite|postgres|mysql|redis|docker|kubernetes|react|grpc|http|json|yaml|regex|api|cli|oauth|jwt)\b`)
	})
	return techRe
}

// CorrectionPatterns match user turns that walk back the assistant's work.
func CorrectionPatterns() []*regexp.Regexp {
	correctOnce.Do(func() {
		for _, p := range []string{
			`(?i)^no[,.\s]`,
			`(?i)\bthat'?s (not|wrong)\b`,
			`(?i)\bnot what i (meant|asked|wanted)\b`,
			`(?i)\bi meant\b`,
			`(?i)\bactually,\b`,
			`(?i)\bundo (that|this)\b`,
			`(?i)\brevert (that|this)\b`,
			`(?i)\binstead of that\b`,
			`(?i)\bstill (broken|failing|wrong)\b`,
		} {
			correctRes = append(correctRes, regexp.MustCompile(p))
		}
	})
	return correctRes
}

// ReworkPattern matches commit subjects that indicate churn on fresh work.
func ReworkPattern() *regexp.Regexp {
	reworkOnce.Do(func() {
		reworkRe = regexp.MustCompile(`(?i)\b(fix(es|ed)?|revert|undo|typo|oops|bug|hotfix|broken|regression|mistake)\b`)
	})
	return reworkRe
}

// ReasoningPatterns match prompts that ask for structured thinking.
func ReasoningPatterns() []*regexp.Regexp {
	reasonOnce.Do(func() {
		for _, p := range []string{
			`(?i)\bstep[- ]by[- ]step\b`,
			`(?i)\bfirst\b.*\bthen\b`,
			`(?i)\bplan\b`,
			`(?i)\bapproach\b`,
			`(?i)\bbefore (you|we|writing|changing)\b`,
			`(?i)\bthink (through|about)\b`,
			`(?i)\btrade-?offs?\b`,
		} {
			reasonRes = append(reasonRes, regexp.MustCompile(p))
		}
	})
	return reasonRes
}

// FileRefPattern matches file path mentions in turn content.
func FileRefPattern() *regexp.Regexp {
	fileRefOnce.Do(func() {
		fileRefRe = regexp.MustCompile(`[\w./\\-]+\.\w{1,10}\b`)
	})
	return fileRefRe
}

// LineRefPattern matches line-number references like foo.go:42 or "line 42".
func LineRefPattern() *regexp.Regexp {
	lineRefOnce.Do(func() {
		lineRefRe = regexp.MustCompile(`(?i)(:\d+|\bline\s+\d+)`)
	})
	return lineRefRe
}

// ErrorContextPattern matches pasted errors, stack traces, and panics.
func ErrorContextPattern() *regexp.Regexp {
	errorOnce.Do(func() {
		errorRe = regexp.MustCompile(`(?i)(error|exception|traceback|panic:|stack trace|segfault|FAIL\b|undefined reference|cannot find)`)
	})
	return errorRe
}

// SessionTypePatterns classify sessions by their user-turn content.
func SessionTypePatterns() map[SessionType]*regexp.Regexp {
	sessionOnce.Do(func() {
		sessionTypes = map[SessionType]*regexp.Regexp{
			DebuggingSession:     regexp.MustCompile(`(?i)\b(debug|error|exception|traceback|panic|crash|broken|failing|stack trace)\b`),
			RefactoringSession:   regexp.MustCompile(`(?i)\b(refactor|rename|extract|restructure|clean ?up|simplify|reorganize)\b`),
			DocumentationSession: regexp.MustCompile(`(?i)\b(document|docs?|readme|comment|docstring|changelog)\b`),
			TestingSession:       regexp.MustCompile(`(?i)\b(test|spec|coverage|assert|mock|fixture|benchmark)\b`),
			ExplorationSession:   regexp.MustCompile(`(?i)\b(how does|what is|explain|understand|where is|why does|walk me through)\b`),
		}
	})
	return sessionTypes
}

// GetDefaultSubWeights returns the default sub-metric weights for a dimension.
// Each table sums to 1.0; the aggregator renormalizes when sub-metrics report
// insufficient data.
func GetDefaultSubWeights(dim DimensionKey) map[SubKey]float64 {
	weightsOnce.Do(func() {
		weightsMap = map[DimensionKey]map[SubKey]float64{
			DimPromptQuality: {
				SubSpecificity: 0.25,
				SubContext:     0.25,
				SubClarity:     0.20,
				SubEfficiency:  0.15,
				SubReasoning:   0.15,
			},
			DimConversationFlow: {
				SubResolution:  0.25,
				SubCorrections: 0.25,
				SubRestatement: 0.25,
				SubAcceptance:  0.25,
			},
			DimContextManagement: {
				SubFileRefs:     0.25,
				SubErrorContext: 0.20,
				SubCodeContext:  0.20,
				SubScope:        0.15,
				SubBudget:       0.20,
			},
			DimSessionPatterns: {
				SubDuration:  0.20,
				SubFrequency: 0.20,
				SubDiversity: 0.15,
				SubFatigue:   0.20,
				SubDeepWork:  0.25,
			},
			DimToolUsage: {
				SubToolDiversity:   0.25,
				SubMCPAdoption:     0.15,
				SubSlashCommands:   0.15,
				SubAutomation:      0.20,
				SubAppropriateness: 0.25,
			},
			DimRuleFile: {
				SubCompleteness:    0.25,
				SubRuleSpecificity: 0.25,
				SubActionability:   0.20,
				SubCurrency:        0.15,
				SubCoverage:        0.15,
			},
			DimCompletionPatterns: {
				SubAcceptRate:     0.25,
				SubSuggestionFit:  0.25,
				SubLanguageSpread: 0.25,
				SubLatency:        0.25,
			},
			DimOutcomeTracking: {
				SubCommitRate:   0.20,
				SubProductivity: 0.20,
				SubRework:       0.25,
				SubQuality:      0.15,
				SubOutcomeTrend: 0.20,
			},
		}
	})
	return weightsMap[dim]
}

// GetDefaultCurves returns the default curve registry. Config overrides are
// merged on top of these specs before any scoring happens.
func GetDefaultCurves() map[CurveKey]CurveSpec {
	curvesOnce.Do(func() {
		curvesMap = map[CurveKey]CurveSpec{
			CurvePromptSpecificity: {Shape: SigmoidCurve, Midpoint: 4, Steepness: 0.8},
			CurvePromptContext:     {Shape: SigmoidCurve, Midpoint: 3, Steepness: 0.7},
			CurvePromptClarity:     {Shape: SigmoidCurve, Midpoint: 3, Steepness: 0.6},
			CurvePromptEfficiency:  {Shape: BellCurve, Center: 80, Width: 60},
			CurvePromptReasoning:   {Shape: SigmoidCurve, Midpoint: 2, Steepness: 0.8},

			CurveFlowResolution:  {Shape: SigmoidCurve, Midpoint: 4, Steepness: 0.8, Invert: true},
			CurveFlowCorrections: {Shape: SigmoidCurve, Midpoint: 0.2, Steepness: 8, Invert: true},
			CurveFlowRestatement: {Shape: SigmoidCurve, Midpoint: 0.25, Steepness: 8, Invert: true},
			CurveFlowAcceptance:  {Shape: LinearCurve, Low: 0, High: 1},

			CurveContextFileRefs: {Shape: SigmoidCurve, Midpoint: 0.25, Steepness: 8},
			CurveContextErrors:   {Shape: SigmoidCurve, Midpoint: 0.4, Steepness: 5},
			CurveContextCode:     {Shape: SigmoidCurve, Midpoint: 0.2, Steepness: 6},
			CurveContextScope:    {Shape: SigmoidCurve, Midpoint: 0.4, Steepness: 4},
			CurveContextBudget:   {Shape: BellCurve, Center: 0.4, Width: 0.25},

			CurvePatternDuration:  {Shape: BellCurve, Center: 35, Width: 20},
			CurvePatternFrequency: {Shape: BellCurve, Center: 4, Width: 2.5},
			CurvePatternDiversity: {Shape: DiminishingCurve, Scale: 5},
			CurvePatternFatigue:   {Shape: SigmoidCurve, Midpoint: 0.2, Steepness: 8, Invert: true},
			CurvePatternDeepWork:  {Shape: SigmoidCurve, Midpoint: 0.4, Steepness: 4},

			CurveToolDiversity:   {Shape: DiminishingCurve, Scale: 8},
			CurveToolCoverage:    {Shape: SigmoidCurve, Midpoint: 0.3, Steepness: 5},
			CurveToolSlash:       {Shape: SigmoidCurve, Midpoint: 0.05, Steepness: 30},
			CurveToolAutomation:  {Shape: SigmoidCurve, Midpoint: 0.08, Steepness: 15, Invert: true},
			CurveToolAppropriate: {Shape: SigmoidCurve, Midpoint: 0.6, Steepness: 4},

			CurveRuleCompleteness: {Shape: SigmoidCurve, Midpoint: 3, Steepness: 0.8},
			CurveRuleSpecificity:  {Shape: SigmoidCurve, Midpoint: 0.15, Steepness: 8},
			CurveRuleActionable:   {Shape: SigmoidCurve, Midpoint: 5, Steepness: 0.5},
			CurveRuleCurrency:     {Shape: SigmoidCurve, Midpoint: 45, Steepness: 0.05, Invert: true},

			CurveCompletionAcceptance: {Shape: SigmoidCurve, Midpoint: 0.5, Steepness: 6},
			CurveCompletionFit:        {Shape: LinearCurve, Low: 0, High: 1},
			CurveCompletionLanguages:  {Shape: DiminishingCurve, Scale: 2.5},
			CurveCompletionLatency:    {Shape: SigmoidCurve, Midpoint: 700, Steepness: 0.002, Invert: true},

			CurveOutcomeCommitRate:   {Shape: SigmoidCurve, Midpoint: 0.4, Steepness: 5},
			CurveOutcomeProductivity: {Shape: SigmoidCurve, Midpoint: 1.0, Steepness: 2},
			CurveOutcomeRework:       {Shape: SigmoidCurve, Midpoint: 0.12, Steepness: 10, Invert: true},
			CurveOutcomeTrend:        {Shape: SigmoidCurve, Midpoint: 0, Steepness: 3},
		}
	})
	return curvesMap
}

// BuiltinTools lists the first-party tool names per agent, used for coverage
// and appropriateness checks.
var BuiltinTools = map[AgentTool]map[string]bool{
	ClaudeCodeTool: {
		"Read": true, "Write": true, "Edit": true, "MultiEdit": true,
		"Bash": true, "Glob": true, "Grep": true, "Task": true,
		"WebFetch": true, "WebSearch": true, "NotebookEdit": true, "TodoWrite": true,
	},
	CursorTool: {
		"read_file": true, "edit_file": true, "codebase_search": true,
		"run_terminal_cmd": true, "grep_search": true, "list_dir": true,
	},
	CopilotTool: {},
}

// MCPToolPrefixes mark tool names that come from MCP servers.
var MCPToolPrefixes = []string{"mcp__", "mcp_"}
