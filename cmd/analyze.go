package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/core"
	"github.com/huangsam/ecoscore/internal/contract"
)

// analyzeCmd scores a Python file or every Python file under a directory.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Compute the eco-score of a Python file or directory",
	Long: `Analyze Python source for energy and resource efficiency.

Each file is parsed and checked against the active rules. Rule outcomes are
grouped into four weighted categories (energy efficiency, resource usage,
code optimizations and custom rules) that combine into an eco-score in [0, 1].

A directory run scores every .py file it finds, skipping excluded paths, and
reports the mean score of the files that could be analyzed. Files that fail to
parse are listed with their reason and never stop the run.

Examples:
  # Analyze the current directory
  ecoscore analyze

  # Analyze a single file with category detail
  ecoscore analyze app/jobs.py --verbose

  # Machine-readable output for a dashboard
  ecoscore analyze src --output json --output-file ecoscore.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}
