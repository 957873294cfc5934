package schema

import "time"

// SubScore is one scored sub-metric inside a dimension.
type SubScore struct {
	Key    SubKey      `json:"key"`
	Score  float64     `json:"score"`
	Weight float64     `json:"weight"`
	Status ScoreStatus `json:"status"`
}

// DimensionScore is the scored result for a single dimension. Score is on a
// 0-100 scale and only meaningful when Status is ok.
type DimensionScore struct {
	Dimension DimensionKey `json:"dimension"`
	Score     float64      `json:"score"`
	Status    ScoreStatus  `json:"status"`
	Weight    float64      `json:"weight"`
	SubScores []SubScore   `json:"sub_scores,omitempty"`
}

// TrendSummary compares a dimension's current score against the most recent
// stored point.
type TrendSummary struct {
	Dimension  DimensionKey   `json:"dimension"`
	Direction  TrendDirection `json:"direction"`
	Magnitude  float64        `json:"magnitude"`
	Previous   float64        `json:"previous"`
	Current    float64        `json:"current"`
	PreviousAt time.Time      `json:"previous_at"`
}

// EvidenceRef points at a concrete moment in an analyzed session.
type EvidenceRef struct {
	SessionID string       `json:"session_id"`
	Tool      AgentTool    `json:"tool"`
	Timestamp time.Time    `json:"timestamp"`
	Dimension DimensionKey `json:"dimension"`
	Excerpt   string       `json:"excerpt"`
}

// Report is the analysis record. Its serialized field set is fixed: overall
// score, dimension scores, trend summaries, and evidence pointers.
// OverallScore is nil when the window held no usable data; it is never zero
// for that case.
type Report struct {
	OverallScore *float64         `json:"overall_score"`
	Dimensions   []DimensionScore `json:"dimensions"`
	Trends       []TrendSummary   `json:"trends"`
	Evidence     []EvidenceRef    `json:"evidence"`
}

// RunInfo carries run metadata alongside a Report without widening the
// record's serialized field set.
type RunInfo struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
	SessionCount int
	Warnings     []string
}

// EnrichedDimensionScore adds presentation data to a DimensionScore.
type EnrichedDimensionScore struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	DimensionScore
}
