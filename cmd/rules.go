package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/core"
	"github.com/huangsam/ecoscore/internal/contract"
)

// rulesCmd lists the active rule registry.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active rules with their category and weight",
	Long: `Display every rule the analyzer evaluates, in evaluation order.

Built-in rules come first, followed by the custom_rules of the config file.
The footer shows the normalized category weights.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRules(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list rules", err)
		}
	},
}
