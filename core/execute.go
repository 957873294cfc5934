package core

import (
	"context"
	"time"

	"github.com/mkohari/skillscope/internal/contract"
	"github.com/mkohari/skillscope/internal/outwriter"
	"github.com/mkohari/skillscope/internal/reader"
)

// ExecuteSkillAnalyze runs the full analysis pipeline and prints the report.
// It serves as the main entry point for the 'analyze' command.
func ExecuteSkillAnalyze(ctx context.Context, cfg *contract.Config, store contract.TrendStore) error {
	start := time.Now()

	engine := NewEngine(reader.NewSessionReaders(), reader.NewRuleScanner(), contract.NewLocalGitClient(), store)
	report, info, err := engine.Run(ctx, cfg)
	if err != nil {
		return err
	}

	// Warnings go to stderr so they never pollute the report record.
	outwriter.PrintWarnings(info.Warnings)

	duration := time.Since(start)
	return outwriter.PrintReport(report, info, cfg, duration)
}

// ExecuteSkillDimensions displays the formal definitions of all scoring
// dimensions. This is a static display that does not read any sessions.
func ExecuteSkillDimensions(_ context.Context, cfg *contract.Config) error {
	return outwriter.PrintDimensionDefinitions(cfg)
}
