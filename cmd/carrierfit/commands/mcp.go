// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents ingest guidelines and evaluate profiles via stdio
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs carrierfit as an MCP (Model Context Protocol) server over stdio,
exposing ingest_document, evaluate_profile, list_carriers,
register_carrier and get_cached_evaluation.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  carrierfit mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "carrierfit": {
  #       "command": "carrierfit",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	server := mcp.NewServer(a, versionInfo.Version)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		a.Logger.Info("MCP server starting on stdio")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			a.Logger.Info("shutdown signal received, closing storage")
		}
		if err := a.Close(); err != nil {
			a.Logger.Warn("error closing storage", "err", err)
		}
	case err := <-serverErr:
		_ = a.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
