package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/ecoscore/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the ecoscore MCP server",
	Long: `Launch an MCP server over stdio so AI agents can score code with the tools
analyze_source, analyze_path, get_trend and list_rules.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
