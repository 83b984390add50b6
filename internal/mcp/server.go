// ABOUTME: Builds the MCP server exposing the carrier-fit tools
// ABOUTME: Shared by the carrierfit mcp subcommand and the standalone server binary
package mcp

import (
	"github.com/harper/carrierfit/internal/app"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to MCP clients during initialization
const ServerName = "Carrier Fit"

// NewServer creates an MCP server with every tool registered against a
func NewServer(a *app.App, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(false),
	)
	RegisterTools(server, a)
	return server
}
