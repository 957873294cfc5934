package cmd

import (
	"github.com/mkohari/skillscope/core"
	"github.com/mkohari/skillscope/internal/contract"
	"github.com/spf13/cobra"
)

// dimensionsCmd displays the formal definitions of all scoring dimensions.
var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "Display sub-metric weights and scoring curves for all dimensions",
	Long: `Show the formal definitions, curves, and weights behind every scoring
dimension.

Provides complete transparency into how sessions are scored, including:
- Dimension purpose and active aggregation weight
- Sub-metric names and their contribution weights
- The scoring curve applied to each raw sub-metric value
- Custom weights and curve overrides from .skillscope.yaml

No session data is read - this is purely informational.

Examples:
  # Show default scoring definitions
  skillscope dimensions

  # View with custom weights from config file
  skillscope dimensions --config .skillscope.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSkillDimensions(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display dimensions", err)
		}
	},
}
