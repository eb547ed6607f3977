// ABOUTME: MCP tool handler implementations for the discovery server
// ABOUTME: Tool failures are returned as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/discovery/internal/logging"
	"github.com/harper/discovery/internal/models"
)

// Searcher ranks directory accounts for a query
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.AccountMatch, error)
}

// Sessions reads sessions and their derived progress
type Sessions interface {
	ListProgress(ctx context.Context, userEmail string) ([]models.SessionProgress, error)
	GetDetail(ctx context.Context, sessionID string) (*models.SessionDetail, error)
	Progress(ctx context.Context, sessionID string) (*models.SessionProgress, error)
	Analytics(ctx context.Context, userEmail string) (*models.Analytics, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	searcher    Searcher
	sessions    Sessions
	defaultUser string
	logger      *log.Logger
}

// NewHandlers creates handlers. defaultUser scopes session tools when the
// caller gives no user_email.
func NewHandlers(searcher Searcher, sessions Sessions, defaultUser string, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handlers{searcher: searcher, sessions: sessions, defaultUser: defaultUser, logger: logger}
}

// SearchAccounts handles the search_accounts tool
func (h *Handlers) SearchAccounts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxResults := request.GetInt("max_results", 20)

	matches, err := h.searcher.Search(ctx, query)
	if err != nil {
		h.logger.Error("account search failed", "query", query, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("account search failed: %v", err)), nil
	}
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	return jsonResult(map[string]interface{}{
		"query":   query,
		"count":   len(matches),
		"results": matches,
	})
}

// ListSessions handles the list_sessions tool
func (h *Handlers) ListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user_email", h.defaultUser)

	sessions, err := h.sessions.ListProgress(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}
	if sessions == nil {
		sessions = []models.SessionProgress{}
	}

	return jsonResult(map[string]interface{}{
		"user_email": user,
		"sessions":   sessions,
	})
}

// GetSession handles the get_session tool
func (h *Handlers) GetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	detail, err := h.sessions.GetDetail(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load session: %v", err)), nil
	}
	if detail == nil {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", sessionID)), nil
	}

	return jsonResult(detail)
}

// GetSessionProgress handles the get_session_progress tool
func (h *Handlers) GetSessionProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	progress, err := h.sessions.Progress(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load progress: %v", err)), nil
	}
	if progress == nil {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", sessionID)), nil
	}

	return jsonResult(progress)
}

// SessionAnalytics handles the session_analytics tool
func (h *Handlers) SessionAnalytics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := request.GetString("user_email", h.defaultUser)

	analytics, err := h.sessions.Analytics(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute analytics: %v", err)), nil
	}

	return jsonResult(analytics)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
