// Package parquet provides data structures and functions for exporting
// skillscope trend history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mkohari/skillscope/schema"
)

// Run represents one stored analysis run with metadata.
// This struct maps to the skillscope_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartedAt is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the run completed (nullable)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// WindowStart is the inclusive start of the analysis window
	WindowStart time.Time `parquet:"window_start,snappy"`

	// WindowEnd is the exclusive end of the analysis window
	WindowEnd time.Time `parquet:"window_end,snappy"`

	// SessionCount is the number of sessions analyzed in this run
	SessionCount int32 `parquet:"session_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// TrendPoint represents one appended score history row.
// This struct maps to the skillscope_trend_points database table.
type TrendPoint struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// Dimension is the scored skill dimension
	Dimension string `parquet:"dimension,snappy"`

	// Score is the dimension score on the 0-100 scale
	Score float64 `parquet:"score,snappy"`

	// ComputedAt is when the score was computed
	ComputedAt time.Time `parquet:"computed_at,snappy"`

	// Tool is the agent filter the run was scoped to, or "all"
	Tool string `parquet:"tool,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteTrendPointsParquet writes a slice of TrendPoint structs to a Parquet file.
func WriteTrendPointsParquet(data []TrendPoint, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the TrendPoint struct tags
	writer := parquet.NewGenericWriter[TrendPoint](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:        record.RunID,
			StartedAt:    record.StartedAt,
			FinishedAt:   record.FinishedAt,
			WindowStart:  record.WindowStart,
			WindowEnd:    record.WindowEnd,
			SessionCount: int32(record.SessionCount),
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertTrendPoints converts schema.TrendPoint to TrendPoint for Parquet export.
func ConvertTrendPoints(points []schema.TrendPoint) []TrendPoint {
	result := make([]TrendPoint, len(points))
	for i, p := range points {
		result[i] = TrendPoint{
			RunID:      p.RunID,
			Dimension:  string(p.Dimension),
			Score:      p.Score,
			ComputedAt: p.ComputedAt,
			Tool:       p.Tool,
		}
	}
	return result
}
