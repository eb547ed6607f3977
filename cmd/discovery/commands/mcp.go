// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to search accounts and read sessions via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/discovery/internal/mcp"
	"github.com/harper/discovery/internal/search"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs Discovery as an MCP (Model Context Protocol) server, enabling
LLM agents to search accounts and read session progress via stdio.

Logs go to stderr; stdout carries the protocol.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an agent host)
  discovery mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "discovery": {
  #       "command": "discovery",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}

	ranker, err := search.NewFromConfig(store, cfg, logger)
	if err != nil {
		_ = store.Close()
		return err
	}

	handlers := mcp.NewHandlers(ranker, store, cfg.UserEmail, logger)
	server := mcp.NewServer(versionInfo.Version, handlers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("discovery MCP server starting on stdio", "db", cfg.DBPath)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serverErr:
	}

	ranker.Close()
	if cerr := store.Close(); cerr != nil {
		logger.Warn("error closing storage", "err", cerr)
	}
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
