package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docpilot/docchat/cmd/docchat/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server exposing document chat as tools",
	Long: `Start an MCP (Model Context Protocol) server that lets an agent list
saved sessions and ask questions about PDF pages.

Configure in your agent's MCP config:
  {
    "mcpServers": {
      "docchat": {
        "command": "docchat",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := mcp.StartServer(cmd.Context(), dataDir); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
