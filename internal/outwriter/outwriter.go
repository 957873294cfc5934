// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the
// core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints an analysis report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.Report, info *schema.RunInfo, cfg *contract.Config, duration time.Duration) error {
	return PrintReport(report, info, cfg, duration)
}

// WriteTrendHistory prints stored trend points using the configured output
// format.
func (ow *OutWriter) WriteTrendHistory(points []schema.TrendPoint, cfg *contract.Config) error {
	return PrintTrendHistory(points, cfg)
}

// PrintWarnings writes run warnings to stderr so they never pollute the
// report record on stdout.
func PrintWarnings(warnings []string) {
	for _, w := range warnings {
		_, _ = fmt.Fprintf(os.Stderr, "Warn %s\n", w)
	}
}

// writeWithFile handles the common pattern of opening a file, writing to it,
// and cleaning up. It accepts a writer function that takes an io.Writer and
// returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatter creates the float formatter closure used across output
// types.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// scoreLabel returns the label for a dimension score, colored when the
// config allows it.
func scoreLabel(score float64, status schema.ScoreStatus, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(score, status)
	}
	if status == schema.StatusInsufficientData {
		return "No Data"
	}
	return schema.GetPlainLabel(score)
}
