package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/core"
	"github.com/huangsam/ecoscore/internal/contract"
)

// checkCmd gates CI pipelines on the configured targets.
var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Fail when any file or category falls below its eco-score target",
	Long: `Analyze the target and compare every file against the configured thresholds.

A file violates the check when its eco-score is below thresholds.eco_score, or
when any weighted category is below thresholds.category_score. The command
exits with status 1 when there is at least one violation.

Examples:
  # Gate a pull request
  ecoscore check src

  # Stricter targets through the environment
  ECOSCORE_THRESHOLDS_ECO_SCORE=0.8 ecoscore check src

  # Export gauges for a CI dashboard
  ecoscore check src --metrics-file ecoscore.prom`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run check", err)
		}
	},
}
