package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/internal/outwriter"
	"github.com/mkohari/skillscope/internal/trendstore"
	"github.com/mkohari/skillscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// trendsSetup loads minimal configuration needed for trend store operations.
// This is used by commands that need store access without full shared setup.
func trendsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("trends-backend")
	connStr := viper.GetString("trends-db-connect")

	// Handle empty backend as the SQLite default
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(strings.ToLower(backendStr))
	}
	if !schema.ValidDatabaseBackends[backend] {
		return contract.NewConfigError("trends-backend", "invalid backend %q. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by list and export commands)
	output := schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if !schema.ValidOutputModes[output] {
		return contract.NewConfigError("output", "invalid output format %q. must be text, csv, json", viper.GetString("output"))
	}
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return contract.NewConfigError("color", "invalid --color value: %v", err)
	}

	// Initialize the store with the loaded config
	if err := trendstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize trend store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.Output = output
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Precision = viper.GetInt("precision")
	cfg.UseColors = colors
	cfg.RetentionDays = viper.GetInt("retention-days")

	return nil
}

// trendsSetupWrapper wraps trendsSetup to provide PreRunE for trends commands.
func trendsSetupWrapper(_ *cobra.Command, _ []string) error {
	return trendsSetup()
}

// trendsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func trendsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("trends-backend")
	connStr := viper.GetString("trends-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(strings.ToLower(backendStr))
	}
	if !schema.ValidDatabaseBackends[backend] {
		return contract.NewConfigError("trends-backend", "invalid backend %q. must be sqlite, mysql, postgresql, none", backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetTrendsDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// trendsMigrateSetupWrapper wraps trendsMigrateSetup to provide PreRunE for migrate command.
func trendsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return trendsMigrateSetup()
}

// trendsCmd focused on trend data management.
//
// Note: Trends subcommands use minimal initialization (trendsSetup) instead of
// the full sharedSetup used by the analyze command. This avoids session
// discovery and complex config processing for simple store operations.
var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Manage historical trend tracking and exports",
	Long: `Manage historical trend data recorded by analysis runs.

When enabled, Skillscope tracks every analysis run, storing:
- Run metadata (timestamps, window, session count, configuration)
- One trend point per scored dimension

This enables longitudinal analysis, per-dimension deltas in reports, and
data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show trend tracking statistics
  list    - Print stored trend points
  export  - Export data to Parquet for analytics
  prune   - Remove history past the retention period
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  skillscope trends status

  # Export for analysis in pandas/DuckDB
  skillscope trends export --output-file trend-data.parquet`,
}

// trendsStatusCmd shows trend store status.
var trendsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display trend tracking statistics and connection details",
	Long: `Show detailed information about historical trend tracking.

Displays:
- Backend type and connection status
- Total number of analysis runs stored
- Last and oldest analysis run timestamps
- Total trend points across all runs
- Database table sizes

Use this to:
- Verify trend tracking is enabled and working
- Monitor data accumulation over time
- Check database connection health

Examples:
  # Check trend tracking status
  skillscope trends status`,
	PreRunE: trendsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := trendstore.Manager.GetTrendStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get trend status", err)
		}
		trendstore.PrintTrendStatus(status)
	},
}

// trendsListCmd prints stored trend points.
var trendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored trend points as a table, JSON, or CSV",
	Long: `List the trend points recorded by past analysis runs.

By default every stored point is shown. Use --dimension to narrow the
history to one dimension within the lookback window set by --days.

Examples:
  # Full history
  skillscope trends list

  # One dimension over the last month
  skillscope trends list --dimension prompt_quality --days 30

  # Machine-readable history
  skillscope trends list --output csv --output-file history.csv`,
	PreRunE: trendsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := trendstore.Manager.GetTrendStore()

		var points []schema.TrendPoint
		var err error
		if dim := strings.TrimSpace(viper.GetString("dimension")); dim != "" {
			key := schema.DimensionKey(strings.ToLower(dim))
			if !schema.ValidDimensions[key] {
				contract.LogFatal("Failed to list trend points", contract.NewConfigError("dimension", "unknown dimension %q", dim))
			}
			to := time.Now()
			from := to.AddDate(0, 0, -viper.GetInt("days"))
			points, err = store.RangePoints(key, from, to)
		} else {
			points, err = store.AllPoints()
		}
		if err != nil {
			contract.LogFatal("Failed to list trend points", err)
		}

		if err := outwriter.PrintTrendHistory(points, cfg); err != nil {
			contract.LogFatal("Failed to print trend points", err)
		}
	},
}

// trendsExportCmd exports trend data to Parquet files.
var trendsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored trend data to Parquet format for use with analytics tools.

Exports two datasets:
- Analysis runs - metadata about each analysis execution
- Trend points - per-dimension scores over time

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Examples:
  # Export all data
  skillscope trends export --output-file skill-data.parquet

  # Use with DuckDB for analysis
  skillscope trends export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet.trend_points.parquet') LIMIT 10"`,
	PreRunE: trendsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := trendstore.ExecuteTrendExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export trend data", err)
		}
	},
}

// trendsPruneCmd removes history past the retention period.
var trendsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove trend history older than the retention period",
	Long: `Delete trend points and run records older than the retention period.

The retention period defaults to 180 days and can be set with
--retention-days or the retention-days config key.

Examples:
  # Prune with the configured retention
  skillscope trends prune

  # Keep only the last month
  skillscope trends prune --retention-days 30`,
	PreRunE: trendsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		retention := cfg.RetentionDays
		if retention <= 0 {
			retention = contract.DefaultRetentionDays
		}
		cutoff := time.Now().AddDate(0, 0, -retention)
		deleted, err := trendstore.Manager.GetTrendStore().Prune(cutoff)
		if err != nil {
			contract.LogFatal("Failed to prune trend data", err)
		}
		fmt.Printf("Pruned %d trend points older than %s.\n", deleted, cutoff.Format("2006-01-02"))
	},
}

// trendsClearCmd clears the trend data.
var trendsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical trend tracking data",
	Long: `Delete all stored analysis runs and trend point history.

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Resetting trend tracking
- Starting fresh analysis history
- Testing trend features

Examples:
  # Export before clearing
  skillscope trends export --output-file backup.parquet
  skillscope trends clear`,
	PreRunE: trendsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := trendstore.ClearTrends(cfg.StoreBackend, contract.GetTrendsDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear trend data", err)
		}
		fmt.Println("Trend data cleared successfully.")
	},
}

// trendsMigrateCmd runs database migrations for the trend store.
var trendsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the trend tracking store.

Migrations allow:
- Upgrading to new schema versions when Skillscope is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  skillscope trends migrate

  # Migrate to specific version
  skillscope trends migrate --target-version 1

  # Rollback to previous version
  skillscope trends migrate --target-version 0`,
	PreRunE: trendsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := trendstore.MigrateTrends(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
