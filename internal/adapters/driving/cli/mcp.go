package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgersync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can run syncs,
read checkpoints and session history, and run integrity checks.

By default, the server communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  ledgersync mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ledgersync mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ledgersync": {
        "command": "/path/to/ledgersync",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := commandContext(cmd)
	engine, err := newEngine(ctx, false)
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	integrity := integrityChecker
	if integrity == nil {
		integrity = engine.Integrity
	}
	ports := &mcp.Ports{
		Sync:        engine.Sync,
		History:     syncHistory,
		Integrity:   integrity,
		InitiatedBy: "mcp",
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
