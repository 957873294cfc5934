package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTrendHistory outputs stored trend points, dispatching based on the
// output format configured.
func PrintTrendHistory(points []schema.TrendPoint, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, points)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRowsForTrends(w, points, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(points, cfg, fmtFloat, w)
		}, "Wrote table")
	}
	return nil
}

// writeTrendTable generates and writes the human-readable trend history.
func writeTrendTable(points []schema.TrendPoint, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(writer, "No trend history recorded yet.")
		return err
	}

	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Run", "Dimension", "Score", "Label", "Computed At", "Tool"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range points {
		data = append(data, []string{
			strconv.FormatInt(p.RunID, 10),
			string(p.Dimension),
			fmtFloat(p.Score),
			scoreLabel(p.Score, schema.StatusOK, cfg.UseColors),
			p.ComputedAt.Format("2006-01-02 15:04"),
			p.Tool,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "Showing %d trend points\n", len(points))
	return err
}

// writeCSVRowsForTrends writes the trend history in CSV format.
func writeCSVRowsForTrends(w io.Writer, points []schema.TrendPoint, fmtFloat func(float64) string) error {
	header := []string{
		"run_id",
		"dimension",
		"score",
		"computed_at",
		"tool",
	}

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, p := range points {
			rec := []string{
				strconv.FormatInt(p.RunID, 10),
				string(p.Dimension),
				fmtFloat(p.Score),
				p.ComputedAt.Format(contract.DateTimeFormat),
				p.Tool,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
