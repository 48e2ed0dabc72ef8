package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/core"
	"github.com/huangsam/ecoscore/internal/contract"
)

// watchCmd re-runs the analysis whenever Python files change.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze a file or directory whenever it changes",
	Long: `Analyze the target once, then again after every burst of changes to its
Python files. Changes within --debounce of each other are batched into a single
run, and unchanged files are served from the result cache.

Examples:
  ecoscore watch src
  ecoscore watch src --debounce 2s`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWatch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot watch target", err)
		}
	},
}
