// ABOUTME: Tests for the discovery MCP tool handlers
// ABOUTME: Runs handlers against in-memory SQLite and the real search ranker
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/discovery/internal/models"
	"github.com/harper/discovery/internal/search"
	"github.com/harper/discovery/internal/storage/sqlite"
)

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	recent := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	accounts := []models.Account{
		{ID: "001000000000001", Name: "Microsoft Corporation", Type: "Customer", Industry: "Software", LastModified: recent},
		{ID: "001000000000002", Name: "Acme Corp", Type: "Prospect", LastModified: recent},
	}
	if _, err := store.ImportAccounts(ctx, accounts); err != nil {
		t.Fatalf("ImportAccounts() error = %v", err)
	}

	detail := &models.SessionDetail{
		Session: models.Session{SessionID: "s1", CompanyName: "Acme", UserEmail: "rep@company.com"},
		Questions: []models.QuestionQA{
			{Question: models.Question{Category: models.CategoryTechnical, QuestionText: "Stack?"}, AnswerText: "Go"},
			{Question: models.Question{Category: models.CategoryBusiness, QuestionText: "Budget?"}},
		},
		Content: []models.ContentItem{{ContentType: models.ContentBusinessCase, ContentText: "Save money"}},
	}
	if err := store.SaveDetail(ctx, detail); err != nil {
		t.Fatalf("SaveDetail() error = %v", err)
	}

	ranker := search.NewRanker(store, search.JaroWinkler{}, search.Options{MinRelevance: 30})
	return NewHandlers(ranker, store, "rep@company.com", nil)
}

func TestTools(t *testing.T) {
	tools := Tools()
	if len(tools) != 5 {
		t.Fatalf("len(Tools()) = %d, want 5", len(tools))
	}
	for _, tool := range tools {
		if tool.Description == "" {
			t.Errorf("%s has no description", tool.Name)
		}
	}
	if tools[0].Name != ToolSearchAccounts || tools[0].InputSchema.Required[0] != "query" {
		t.Errorf("search tool = %+v", tools[0])
	}
}

func TestNewServer(t *testing.T) {
	if NewServer("test", NewHandlers(nil, nil, "", nil)) == nil {
		t.Error("NewServer() returned nil")
	}
}

func TestSearchAccounts(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.SearchAccounts(context.Background(), makeReq(map[string]interface{}{"query": "Micrsoft"}))
	if err != nil {
		t.Fatalf("SearchAccounts() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("SearchAccounts() error result: %s", resultText(result))
	}

	var resp struct {
		Count   int                   `json:"count"`
		Results []models.AccountMatch `json:"results"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Count == 0 || resp.Results[0].Account.Name != "Microsoft Corporation" {
		t.Errorf("results = %+v, want Microsoft Corporation first", resp.Results)
	}
}

func TestSearchAccounts_MaxResults(t *testing.T) {
	h := newTestHandlers(t)

	result, _ := h.SearchAccounts(context.Background(), makeReq(map[string]interface{}{"query": "corp", "max_results": 1}))
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestSearchAccounts_MissingQuery(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.SearchAccounts(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("SearchAccounts() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing query should be an error result")
	}
}

func TestListSessions(t *testing.T) {
	h := newTestHandlers(t)

	result, _ := h.ListSessions(context.Background(), makeReq(map[string]interface{}{}))
	if result.IsError {
		t.Fatalf("ListSessions() error result: %s", resultText(result))
	}
	var resp struct {
		Sessions []models.SessionProgress `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0].CompletionPercentage != 50 {
		t.Errorf("sessions = %+v", resp.Sessions)
	}

	other, _ := h.ListSessions(context.Background(), makeReq(map[string]interface{}{"user_email": "nobody@company.com"}))
	if !strings.Contains(resultText(other), `"sessions":[]`) {
		t.Errorf("other user's sessions = %s, want empty list", resultText(other))
	}
}

func TestGetSession(t *testing.T) {
	h := newTestHandlers(t)

	result, _ := h.GetSession(context.Background(), makeReq(map[string]interface{}{"session_id": "s1"}))
	if result.IsError {
		t.Fatalf("GetSession() error result: %s", resultText(result))
	}
	var detail models.SessionDetail
	if err := json.Unmarshal([]byte(resultText(result)), &detail); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(detail.Questions) != 2 || detail.Questions[0].AnswerText != "Go" {
		t.Errorf("questions = %+v", detail.Questions)
	}

	missing, _ := h.GetSession(context.Background(), makeReq(map[string]interface{}{"session_id": "nope"}))
	if !missing.IsError {
		t.Error("missing session should be an error result")
	}
}

func TestGetSessionProgress(t *testing.T) {
	h := newTestHandlers(t)

	result, _ := h.GetSessionProgress(context.Background(), makeReq(map[string]interface{}{"session_id": "s1"}))
	if result.IsError {
		t.Fatalf("GetSessionProgress() error result: %s", resultText(result))
	}
	var progress models.SessionProgress
	if err := json.Unmarshal([]byte(resultText(result)), &progress); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if progress.TotalQuestions != 2 || progress.AnsweredQuestions != 1 {
		t.Errorf("progress = %+v", progress)
	}
	if len(progress.AvailableContent) != 1 || progress.AvailableContent[0] != models.ContentBusinessCase {
		t.Errorf("AvailableContent = %v", progress.AvailableContent)
	}

	missing, _ := h.GetSessionProgress(context.Background(), makeReq(map[string]interface{}{"session_id": "nope"}))
	if !missing.IsError {
		t.Error("missing session should be an error result")
	}
}

func TestSessionAnalytics(t *testing.T) {
	h := newTestHandlers(t)

	result, _ := h.SessionAnalytics(context.Background(), makeReq(map[string]interface{}{}))
	if result.IsError {
		t.Fatalf("SessionAnalytics() error result: %s", resultText(result))
	}
	var analytics models.Analytics
	if err := json.Unmarshal([]byte(resultText(result)), &analytics); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if analytics.TotalSessions != 1 || analytics.UniqueCompanies != 1 || analytics.TotalAnswers != 1 {
		t.Errorf("analytics = %+v", analytics)
	}
}
