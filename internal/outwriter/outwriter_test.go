package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

func testReport() *schema.Report {
	overall := 71.3
	return &schema.Report{
		OverallScore: &overall,
		Dimensions: []schema.DimensionScore{
			{Dimension: schema.DimPromptQuality, Score: 82.1, Status: schema.StatusOK, Weight: 0.5},
			{Dimension: schema.DimToolUsage, Score: 60.5, Status: schema.StatusOK, Weight: 0.5},
			{Dimension: schema.DimOutcomeTracking, Status: schema.StatusInsufficientData, Weight: 0.0},
		},
		Trends: []schema.TrendSummary{
			{Dimension: schema.DimPromptQuality, Direction: schema.TrendImproving, Magnitude: 3.2, Previous: 78.9, Current: 82.1},
		},
		Evidence: []schema.EvidenceRef{
			{
				SessionID: "sess-1",
				Tool:      schema.ClaudeCodeTool,
				Timestamp: time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC),
				Dimension: schema.DimToolUsage,
				Excerpt:   "just fix it somehow",
			},
		},
	}
}

func testRunInfo() *schema.RunInfo {
	return &schema.RunInfo{
		StartedAt:    time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2026, 8, 23, 10, 0, 2, 0, time.UTC),
		WindowStart:  time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC),
		WindowEnd:    time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		SessionCount: 12,
	}
}

func testOutputConfig(mode schema.OutputMode, outputFile string) *contract.Config {
	return &contract.Config{
		Output:       mode,
		OutputFile:   outputFile,
		Precision:    1,
		UseColors:    false,
		Workers:      4,
		StoreBackend: schema.SQLiteBackend,
	}
}

func TestWriteReportTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testOutputConfig(schema.TextOut, "")
	err := writeReportTable(testReport(), testRunInfo(), cfg, createFormatter(cfg.Precision), 1500*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Overall Score: 71.3 (Good)")
	assert.Contains(t, out, "prompt_quality")
	assert.Contains(t, out, "82.1")
	assert.Contains(t, out, "↑ 3.2")
	assert.Contains(t, out, "No Data", "insufficient dimension labeled, not scored")
	assert.Contains(t, out, "just fix it somehow")
	assert.Contains(t, out, "Analyzed 12 sessions from 2026-08-16 to 2026-08-23")
	assert.Contains(t, out, "Trend backend: sqlite")
}

func TestWriteReportTableInsufficientOverall(t *testing.T) {
	var buf bytes.Buffer
	report := testReport()
	report.OverallScore = nil
	report.Evidence = nil

	cfg := testOutputConfig(schema.TextOut, "")
	err := writeReportTable(report, testRunInfo(), cfg, createFormatter(cfg.Precision), time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Overall Score: insufficient data")
	assert.NotContains(t, out, "Evidence:")
}

func TestPrintReportJSONRecordShape(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "report.json")
	cfg := testOutputConfig(schema.JSONOut, outputFile)

	err := PrintReport(testReport(), testRunInfo(), cfg, time.Second)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	// The serialized record carries exactly four fields.
	var record map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Len(t, record, 4)
	for _, key := range []string{"overall_score", "dimensions", "trends", "evidence"} {
		assert.Contains(t, record, key)
	}
}

func TestPrintReportCSV(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "report.csv")
	cfg := testOutputConfig(schema.CSVOut, outputFile)

	err := PrintReport(testReport(), testRunInfo(), cfg, time.Second)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4, "header plus one row per dimension")
	assert.Equal(t, "rank,dimension,score,label,status,weight,trend_direction,trend_magnitude", lines[0])
	assert.Contains(t, lines[1], "prompt_quality")
	assert.Contains(t, lines[1], "improving")
	assert.Contains(t, lines[3], "insufficient_data")
	assert.Contains(t, lines[3], "No Data")
}

func TestPrintTrendHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testOutputConfig(schema.TextOut, "")

	points := []schema.TrendPoint{
		{RunID: 1, Dimension: schema.DimPromptQuality, Score: 70.0, ComputedAt: time.Date(2026, 8, 16, 10, 0, 0, 0, time.UTC), Tool: "all"},
		{RunID: 2, Dimension: schema.DimPromptQuality, Score: 73.5, ComputedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC), Tool: "all"},
	}
	err := writeTrendTable(points, cfg, createFormatter(cfg.Precision), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "73.5")
	assert.Contains(t, out, "2026-08-23 10:00")
	assert.Contains(t, out, "Showing 2 trend points")
}

func TestPrintTrendHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	cfg := testOutputConfig(schema.TextOut, "")

	err := writeTrendTable(nil, cfg, createFormatter(cfg.Precision), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No trend history recorded yet.")
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Excellent", scoreLabel(85, schema.StatusOK, false))
	assert.Equal(t, "No Data", scoreLabel(0, schema.StatusInsufficientData, false))
}
