// Package main provides the entry point for the rigup CLI.
package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	rigupmcp "github.com/rigup-dev/rigup/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run rigup as a Model Context Protocol (MCP) server over stdio.

This exposes rigup operations as MCP tools that any MCP-capable agent
environment can use (Claude Code, Cursor, Windsurf, Gemini CLI, etc).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "rigup": {
        "command": "rigup",
        "args": ["serve"]
      }
    }
  }

Available tools: machine_status, plan, apply, doctor`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveEnv()
			if err != nil {
				return err
			}
			server := rigupmcp.NewServer(buildVersion(), rigupmcp.Deps{
				ManifestPath: env.manifestPath,
				Home:         env.home,
				Sys:          env.sys,
				Run:          env.run,
			})
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
