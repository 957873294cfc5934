package trendstore

import (
	"errors"
	"fmt"

	"github.com/mkohari/skillscope/internal/parquet"
)

// ExecuteTrendExport performs the actual export of trend history to Parquet
// files.
func ExecuteTrendExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the trend store
	store := Manager.GetTrendStore()
	if store == nil {
		return errors.New("trend store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get trend store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no trend data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total trend points: %d\n", status.TotalPoints)

	// Retrieve all runs
	runs, err := store.AllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Retrieve all trend points
	points, err := store.AllPoints()
	if err != nil {
		return fmt.Errorf("failed to retrieve trend points: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetPoints := parquet.ConvertTrendPoints(points)

	// Write runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	// Write trend points to Parquet
	pointsFile := outputFile + ".trend_points.parquet"
	if err := parquet.WriteTrendPointsParquet(parquetPoints, pointsFile); err != nil {
		return fmt.Errorf("failed to write trend points: %w", err)
	}
	fmt.Printf("Exported %d trend points to: %s\n", len(parquetPoints), pointsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
