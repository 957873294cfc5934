package schema

import "time"

// TrendPoint is one appended history row, keyed by (dimension, computed_at).
type TrendPoint struct {
	RunID      int64        `json:"run_id"`
	Dimension  DimensionKey `json:"dimension"`
	Score      float64      `json:"score"`
	ComputedAt time.Time    `json:"computed_at"`
	Tool       string       `json:"tool"`
}

// TrendDelta is the movement between two points of the same dimension.
type TrendDelta struct {
	Direction TrendDirection `json:"direction"`
	Magnitude float64        `json:"magnitude"`
}

// RunRecord is stored run metadata.
type RunRecord struct {
	RunID        int64      `json:"run_id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	WindowStart  time.Time  `json:"window_start"`
	WindowEnd    time.Time  `json:"window_end"`
	SessionCount int        `json:"session_count"`
	ConfigParams *string    `json:"config_params,omitempty"`
}

// TrendStoreStatus describes the trend store's backend and contents.
type TrendStoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int64            `json:"total_runs"`
	TotalPoints   int64            `json:"total_points"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
