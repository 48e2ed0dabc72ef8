package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/core/engine"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ecoscore.",
	Long: `Display version information including build details.

Shows:
- Release version
- Git commit hash
- Build timestamp
- Ruleset version (cached results are tied to it)
- Go runtime version`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("ecoscore CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Ruleset: %s\n", engine.RulesetVersion)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
