// Package cmd defines the command-line interface for skillscope.
package cmd

import (
	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dimensionsCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the trends subcommands to the parent trends command
	trendsCmd.AddCommand(trendsStatusCmd)
	trendsCmd.AddCommand(trendsListCmd)
	trendsCmd.AddCommand(trendsExportCmd)
	trendsCmd.AddCommand(trendsPruneCmd)
	trendsCmd.AddCommand(trendsClearCmd)
	trendsCmd.AddCommand(trendsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("tool", "t", "all", "Agent tool to analyze: claude_code, cursor, copilot, all")
	rootCmd.PersistentFlags().IntP("days", "d", contract.DefaultAnalysisDays, "Number of days to look back from now")
	rootCmd.PersistentFlags().String("start", "", "Window start in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "Window end in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("preset", string(schema.FullPreset), "Dimension preset: quick, coaching, full")
	rootCmd.PersistentFlags().String("dimensions", "", "Comma-separated dimension list (overrides the preset)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or csv")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent extractor workers")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("evidence-limit", contract.DefaultEvidenceLimit, "Maximum number of evidence excerpts in the report")
	rootCmd.PersistentFlags().Int("excerpt-max-len", contract.DefaultExcerptMaxLen, "Maximum evidence excerpt length in characters")
	rootCmd.PersistentFlags().Float64("noise-threshold", contract.DefaultNoiseThreshold, "Score movement below this threshold reports as stable")
	rootCmd.PersistentFlags().Int("retention-days", contract.DefaultRetentionDays, "Trend history retention period in days")
	rootCmd.PersistentFlags().Int("min-sessions", contract.DefaultMinSessions, "Minimum sessions required before scoring")
	rootCmd.PersistentFlags().Bool("no-store", false, "Skip trend persistence for this run")
	rootCmd.PersistentFlags().Bool("skip-git", false, "Skip git-backed dimensions (outcome tracking)")
	rootCmd.PersistentFlags().String("trends-backend", string(schema.SQLiteBackend), "Trend store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("trends-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of trendsListCmd to Viper
	trendsListCmd.Flags().String("dimension", "", "Limit history to a single dimension")
	if err := viper.BindPFlags(trendsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding trends list flags", err)
	}

	// Bind all flags of trendsMigrateCmd to Viper
	trendsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(trendsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding trends migrate flags", err)
	}
}
