package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/core"
	"github.com/huangsam/ecoscore/internal/contract"
)

// historyCmd replays the eco-score of a file or directory across its git history.
var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show how an eco-score changed across recent commits",
	Long: `Replay the analysis of a Python file or project directory at each of its recent commits.

The commits touching the path are analyzed oldest first. For a file, revisions
where it was deleted or could not be parsed show up as gaps and never stop the
run. For a directory, every Python file at the revision is scored and reduced to
a project score; files that fail to parse are counted as failed units.
Consecutive scores that drop by more than --tolerance are listed as regressions.

Examples:
  # Last 10 commits on HEAD
  ecoscore history app/jobs.py

  # Project score of the app package over the last 20 commits
  ecoscore history app --commits 20

  # Last 50 commits on main
  ecoscore history --path app/jobs.py --commits 50 --ref main`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run history analysis", err)
		}
	},
}
