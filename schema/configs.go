package schema

import "fmt"

// DatabaseBackend selects the trend store implementation.
type DatabaseBackend string

// Supported trend store backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidDatabaseBackends is the set of accepted backend names.
var ValidDatabaseBackends = map[DatabaseBackend]bool{
	SQLiteBackend:     true,
	MySQLBackend:      true,
	PostgreSQLBackend: true,
	NoneBackend:       true,
}

// OutputMode selects the report format.
type OutputMode string

// Supported output formats.
const (
	TextOut OutputMode = "text"
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// ValidOutputModes is the set of accepted output formats.
var ValidOutputModes = map[OutputMode]bool{
	TextOut: true,
	JSONOut: true,
	CSVOut:  true,
}

// CurveShape names a scoring curve family.
type CurveShape string

// Curve shapes. Every shape is continuous on its domain; sigmoid, diminishing
// and linear are monotonic in x.
const (
	SigmoidCurve     CurveShape = "sigmoid"
	BellCurve        CurveShape = "bell"
	DiminishingCurve CurveShape = "diminishing"
	LinearCurve      CurveShape = "linear"
)

// ValidCurveShapes is the set of accepted curve shape names.
var ValidCurveShapes = map[CurveShape]bool{
	SigmoidCurve:     true,
	BellCurve:        true,
	DiminishingCurve: true,
	LinearCurve:      true,
}

// CurveSpec parameterizes one scoring curve. Which fields matter depends on
// the shape: sigmoid uses Midpoint/Steepness, bell uses Center/Width,
// diminishing uses Scale, linear uses Low/High.
type CurveSpec struct {
	Shape     CurveShape `json:"shape"`
	Midpoint  float64    `json:"midpoint,omitempty"`
	Steepness float64    `json:"steepness,omitempty"`
	Center    float64    `json:"center,omitempty"`
	Width     float64    `json:"width,omitempty"`
	Scale     float64    `json:"scale,omitempty"`
	Low       float64    `json:"low,omitempty"`
	High      float64    `json:"high,omitempty"`

	// Invert maps the curve output y to 1-y, for metrics where more is worse
	// (correction rates, rework rates, staleness).
	Invert bool `json:"invert,omitempty"`
}

// Validate rejects unknown shapes and parameter combinations that would break
// continuity or monotonicity guarantees.
func (cs CurveSpec) Validate() error {
	switch cs.Shape {
	case SigmoidCurve:
		if cs.Steepness < 0 {
			return fmt.Errorf("sigmoid steepness must be >= 0, got %g", cs.Steepness)
		}
	case BellCurve:
		if cs.Width <= 0 {
			return fmt.Errorf("bell width must be > 0, got %g", cs.Width)
		}
	case DiminishingCurve:
		if cs.Scale <= 0 {
			return fmt.Errorf("diminishing scale must be > 0, got %g", cs.Scale)
		}
	case LinearCurve:
		if cs.Low >= cs.High {
			return fmt.Errorf("linear low (%g) must be below high (%g)", cs.Low, cs.High)
		}
	default:
		return fmt.Errorf("unknown curve shape %q (expected sigmoid, bell, diminishing, linear)", cs.Shape)
	}
	return nil
}

// CurveKey names a tunable curve in the default registry.
type CurveKey string

// Curve registry keys, one per curve-backed sub-metric.
const (
	CurvePromptSpecificity CurveKey = "prompt_specificity"
	CurvePromptContext     CurveKey = "prompt_context"
	CurvePromptClarity     CurveKey = "prompt_clarity"
	CurvePromptEfficiency  CurveKey = "prompt_efficiency"
	CurvePromptReasoning   CurveKey = "prompt_reasoning"

	CurveFlowResolution  CurveKey = "flow_resolution"
	CurveFlowCorrections CurveKey = "flow_corrections"
	CurveFlowRestatement CurveKey = "flow_restatement"
	CurveFlowAcceptance  CurveKey = "flow_acceptance"

	CurveContextFileRefs CurveKey = "context_file_refs"
	CurveContextErrors   CurveKey = "context_errors"
	CurveContextCode     CurveKey = "context_code"
	CurveContextScope    CurveKey = "context_scope"
	CurveContextBudget   CurveKey = "context_budget"

	CurvePatternDuration  CurveKey = "pattern_duration"
	CurvePatternFrequency CurveKey = "pattern_frequency"
	CurvePatternDiversity CurveKey = "pattern_diversity"
	CurvePatternFatigue   CurveKey = "pattern_fatigue"
	CurvePatternDeepWork  CurveKey = "pattern_deep_work"

	CurveToolDiversity   CurveKey = "tool_diversity"
	CurveToolCoverage    CurveKey = "tool_coverage"
	CurveToolSlash       CurveKey = "tool_slash"
	CurveToolAutomation  CurveKey = "tool_automation"
	CurveToolAppropriate CurveKey = "tool_appropriate"

	CurveRuleCompleteness CurveKey = "rule_completeness"
	CurveRuleSpecificity  CurveKey = "rule_specificity"
	CurveRuleActionable   CurveKey = "rule_actionable"
	CurveRuleCurrency     CurveKey = "rule_currency"

	CurveCompletionAcceptance CurveKey = "completion_acceptance"
	CurveCompletionFit        CurveKey = "completion_fit"
	CurveCompletionLanguages  CurveKey = "completion_languages"
	CurveCompletionLatency    CurveKey = "completion_latency"

	CurveOutcomeCommitRate   CurveKey = "outcome_commit_rate"
	CurveOutcomeProductivity CurveKey = "outcome_productivity"
	CurveOutcomeRework       CurveKey = "outcome_rework"
	CurveOutcomeTrend        CurveKey = "outcome_trend"
)
