package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintReport outputs the analysis report, dispatching based on the output
// format configured.
func PrintReport(report *schema.Report, info *schema.RunInfo, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeReportJSON(report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeReportCSV(report, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(report, info, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeReportJSON handles opening the file and encoding the report record.
// The serialized field set is fixed: overall score, dimensions, trends, and
// evidence.
func writeReportJSON(report *schema.Report, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, report)
	}, "Wrote JSON")
}

// writeReportCSV handles opening the file and calling the CSV writer.
func writeReportCSV(report *schema.Report, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVRowsForReport(w, report, fmtFloat)
	}, "Wrote CSV")
}

// trendByDimension indexes trend summaries for table lookup.
func trendByDimension(trends []schema.TrendSummary) map[schema.DimensionKey]schema.TrendSummary {
	out := make(map[schema.DimensionKey]schema.TrendSummary, len(trends))
	for _, t := range trends {
		out[t.Dimension] = t
	}
	return out
}

// writeReportTable generates and writes the human-readable report.
func writeReportTable(report *schema.Report, info *schema.RunInfo, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	// 1. Overall headline
	if report.OverallScore != nil {
		overall := *report.OverallScore
		if _, err := fmt.Fprintf(writer, "Overall Score: %s (%s)\n\n", fmtFloat(overall), scoreLabel(overall, schema.StatusOK, cfg.UseColors)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(writer, "Overall Score: insufficient data\n\n"); err != nil {
			return err
		}
	}

	// 2. Dimension table
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Rank", "Dimension", "Score", "Label", "Weight", "Trend"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	trends := trendByDimension(report.Trends)
	var data [][]string
	for i, d := range report.Dimensions {
		score := "-"
		if d.Status == schema.StatusOK {
			score = fmtFloat(d.Score)
		}

		trend := "-"
		if t, ok := trends[d.Dimension]; ok {
			trend = fmt.Sprintf("%s %s", schema.DirectionGlyph(t.Direction), fmtFloat(t.Magnitude))
		}

		data = append(data, []string{
			strconv.Itoa(i + 1),
			string(d.Dimension),
			score,
			scoreLabel(d.Score, d.Status, cfg.UseColors),
			fmtFloat(d.Weight),
			trend,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// 3. Evidence section
	if len(report.Evidence) > 0 {
		if _, err := fmt.Fprintln(writer, "\nEvidence:"); err != nil {
			return err
		}
		excerptWidth := getMaxExcerptWidth()
		for i, e := range report.Evidence {
			excerpt := contract.TruncateText(e.Excerpt, excerptWidth)
			if _, err := fmt.Fprintf(writer, "  %d. [%s] %s %s %s: %q\n",
				i+1, e.Dimension, e.Tool, e.SessionID,
				e.Timestamp.Format("2006-01-02 15:04"), excerpt); err != nil {
				return err
			}
		}
	}

	// 4. Summary footer
	if _, err := fmt.Fprintf(writer, "\nAnalyzed %d sessions from %s to %s\n",
		info.SessionCount,
		info.WindowStart.Format("2006-01-02"),
		info.WindowEnd.Format("2006-01-02")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. Trend backend: %s\n", duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVRowsForReport writes the report dimensions in CSV format, one row
// per dimension with its trend movement when available.
func writeCSVRowsForReport(w io.Writer, report *schema.Report, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"dimension",
		"score",
		"label",
		"status",
		"weight",
		"trend_direction",
		"trend_magnitude",
	}

	trends := trendByDimension(report.Trends)
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, d := range report.Dimensions {
			score := ""
			label := "No Data"
			if d.Status == schema.StatusOK {
				score = fmtFloat(d.Score)
				label = schema.GetPlainLabel(d.Score)
			}

			direction, magnitude := "", ""
			if t, ok := trends[d.Dimension]; ok {
				direction = string(t.Direction)
				magnitude = fmtFloat(t.Magnitude)
			}

			rec := []string{
				strconv.Itoa(i + 1),
				string(d.Dimension),
				score,
				label,
				string(d.Status),
				fmtFloat(d.Weight),
				direction,
				magnitude,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
