// ABOUTME: Main entry point for the carrier-fit MCP server with stdio transport
// ABOUTME: Loads configuration, opens storage and serves all tools until stdin closes
package main

import (
	"os"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
	"github.com/harper/carrierfit/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version information (set by goreleaser)
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info").Fatal("invalid configuration", "err", err)
	}

	// stdout carries the protocol; logs go to stderr
	logger := logging.New(os.Stderr, cfg.LogLevel)

	a, err := app.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", "err", err)
	}
	defer func() { _ = a.Close() }()

	server := mcp.NewServer(a, version)

	logger.Info("carrier-fit MCP server starting on stdio", "db", a.Store.Path())
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("server error", "err", err)
		_ = a.Close()
		os.Exit(1)
	}
}
