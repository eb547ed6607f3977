// ABOUTME: Main entry point for the discovery MCP server with stdio transport
// ABOUTME: Initializes storage, the account ranker, and the MCP server with all tools
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/discovery/internal/config"
	"github.com/harper/discovery/internal/logging"
	"github.com/harper/discovery/internal/mcp"
	"github.com/harper/discovery/internal/search"
	"github.com/harper/discovery/internal/storage/sqlite"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		logging.Stderr(logging.Options{Prefix: "server"}).Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// run serves until stdin closes; deferred cleanup always runs before main exits
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.Stderr(logging.Options{Level: cfg.LogLevel, Prefix: "server"})

	store, err := sqlite.NewStorageWithPath(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ranker, err := search.NewFromConfig(store, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize search: %w", err)
	}
	defer ranker.Close()

	server := mcp.NewServer(version, mcp.NewHandlers(ranker, store, cfg.UserEmail, logger))

	logger.Info("discovery MCP server starting on stdio", "db", cfg.DBPath)
	if err := mcpserver.ServeStdio(server); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
