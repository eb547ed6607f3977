// ABOUTME: MCP tool definitions and registration for the discovery server
// ABOUTME: Exposes account search, session listing, session detail, progress, and analytics
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Tool names
const (
	ToolSearchAccounts     = "search_accounts"
	ToolListSessions       = "list_sessions"
	ToolGetSession         = "get_session"
	ToolGetSessionProgress = "get_session_progress"
	ToolSessionAnalytics   = "session_analytics"
)

// Tools returns the definitions of every discovery tool
func Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolSearchAccounts,
			Description: "Search the account directory. Handles prefixes, misspellings, sound-alike names, multi-word queries, and exact account ids. Results are ranked by match priority then relevance score.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Company name, keywords, or account id",
					},
					"max_results": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of results to return (default: 20)",
						"default":     20,
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolListSessions,
			Description: "List discovery sessions with completion progress, most recently updated first.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"user_email": map[string]interface{}{
						"type":        "string",
						"description": "Only sessions owned by this user (default: configured user)",
					},
				},
			},
		},
		{
			Name:        ToolGetSession,
			Description: "Get a discovery session with its questions, latest answers, strategic content, and contacts.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session ID",
					},
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        ToolGetSessionProgress,
			Description: "Get question completion and available content for one discovery session.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session ID",
					},
				},
				Required: []string{"session_id"},
			},
		},
		{
			Name:        ToolSessionAnalytics,
			Description: "Aggregate statistics over a user's discovery sessions: totals, unique companies, average completion.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"user_email": map[string]interface{}{
						"type":        "string",
						"description": "User email (default: configured user)",
					},
				},
			},
		},
	}
}

// RegisterTools registers all discovery tools with the server
func RegisterTools(server *mcpserver.MCPServer, handlers *Handlers) {
	byName := map[string]mcpserver.ToolHandlerFunc{
		ToolSearchAccounts:     handlers.SearchAccounts,
		ToolListSessions:       handlers.ListSessions,
		ToolGetSession:         handlers.GetSession,
		ToolGetSessionProgress: handlers.GetSessionProgress,
		ToolSessionAnalytics:   handlers.SessionAnalytics,
	}
	for _, tool := range Tools() {
		server.AddTool(tool, byName[tool.Name])
	}
}

// NewServer creates an MCP server with every discovery tool registered
func NewServer(version string, handlers *Handlers) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer("Discovery", version)
	RegisterTools(server, handlers)
	return server
}
