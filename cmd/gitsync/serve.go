package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	gitsyncmcp "github.com/zaixsen/unityGitTool/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run gitsync as a Model Context Protocol (MCP) server over stdio.

This lets an MCP-capable agent update a working copy and read conflict
guidance without shelling out to the CLI.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "gitsync": {
        "command": "gitsync",
        "args": ["serve"]
      }
    }
  }

Available tools: sync, upstream, classify, clients`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server := gitsyncmcp.NewServer(buildVersion(), gitsyncmcp.Deps{
				ConfigPath: configPath(cmd),
				Logger:     newLogger(cmd),
			})
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
