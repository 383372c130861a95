package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	mcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ducksearch/config"
	"ducksearch/page"
	"ducksearch/search"
)

type stubEngine struct {
	resp   *search.SearchResponse
	err    error
	gotReq *search.SearchRequest
}

func (s *stubEngine) Search(ctx context.Context, req *search.SearchRequest) (*search.SearchResponse, error) {
	s.gotReq = req
	return s.resp, s.err
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("network down")
}

func newTestServer(t *testing.T, engine *stubEngine) *Server {
	t.Helper()

	client := &http.Client{Transport: failingTransport{}}
	cfg := &config.Config{DefaultMaxResults: 10, MaxResultsLimit: 20}

	server, err := NewServer(
		engine,
		page.NewFetcher(client, zap.NewNop()),
		search.NewSuggester(client, zap.NewNop()),
		cfg,
		zap.NewNop(),
	)
	require.NoError(t, err)
	return server
}

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, nil, nil, &config.Config{}, zap.NewNop())
	require.Error(t, err)
}

func TestWebSearchRejectsMissingQuery(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleWebSearch(context.Background(),
		callToolRequest("web_search", map[string]any{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestWebSearchRejectsOverlongQuery(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleWebSearch(context.Background(),
		callToolRequest("web_search", map[string]any{"query": strings.Repeat("a", maxQueryLength+1)}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Contains(t, resultText(t, result), "maximum length")
}

func TestWebSearchRejectsInvalidTimePeriod(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleWebSearch(context.Background(),
		callToolRequest("web_search", map[string]any{
			"query":       "widgets",
			"time_period": "fortnight",
		}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestWebSearchClampsMaxResultsAndPassesArguments(t *testing.T) {
	engine := &stubEngine{
		resp: &search.SearchResponse{
			Results: []search.SearchResult{
				{Title: "Widgets", URL: "https://example.com/widgets", Domain: "example.com"},
			},
			TotalResults: 1,
			Page:         1,
			TotalPages:   1,
		},
	}
	server := newTestServer(t, engine)

	result, err := server.handleWebSearch(context.Background(),
		callToolRequest("web_search", map[string]any{
			"query":       "widgets",
			"max_results": float64(100),
			"page":        float64(2),
			"site":        "example.com",
			"time_period": "week",
		}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.NotNil(t, engine.gotReq)
	require.Equal(t, 20, engine.gotReq.MaxResults, "max_results should clamp to the configured limit")
	require.Equal(t, 2, engine.gotReq.Page)
	require.Equal(t, "example.com", engine.gotReq.Site)
	require.Equal(t, "week", engine.gotReq.TimePeriod)

	text := resultText(t, result)
	require.Contains(t, text, "https://example.com/widgets")
	require.Contains(t, text, `"total_results":1`)
}

func TestWebSearchEngineFailureReturnsPayloadWithError(t *testing.T) {
	server := newTestServer(t, &stubEngine{err: fmt.Errorf("upstream exploded")})

	result, err := server.handleWebSearch(context.Background(),
		callToolRequest("web_search", map[string]any{"query": "widgets"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	require.Contains(t, text, "upstream exploded")
	require.Contains(t, text, `"results":[]`)
}

func TestGetPageContentRejectsEmptyURL(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleGetPageContent(context.Background(),
		callToolRequest("get_page_content", map[string]any{"url": "   "}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestGetPageContentBadSchemeReportedInPayload(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleGetPageContent(context.Background(),
		callToolRequest("get_page_content", map[string]any{"url": "file:///etc/passwd"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Contains(t, resultText(t, result), "Only http and https are allowed")
}

func TestGetDetailsRejectsBadScheme(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleGetDetails(context.Background(),
		callToolRequest("get_details", map[string]any{"url": "javascript:alert(1)"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Contains(t, resultText(t, result), "only http and https")
}

func TestSuggestRelatedFallsBackToContextualStatus(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleSuggestRelated(context.Background(),
		callToolRequest("suggest_related_searches", map[string]any{
			"query":           "widgets",
			"max_suggestions": float64(3),
		}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	require.Contains(t, text, `"status":"contextual"`)
	require.Contains(t, text, `"source":"synthesized"`)
	require.Contains(t, text, `"count":3`)
	require.Contains(t, text, `"original_query":"widgets"`)
}

func TestSuggestRelatedRejectsEmptyQuery(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	result, err := server.handleSuggestRelated(context.Background(),
		callToolRequest("suggest_related_searches", map[string]any{"query": ""}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestSearchAssistantPromptRequiresTopic(t *testing.T) {
	server := newTestServer(t, &stubEngine{})

	req := mcp.GetPromptRequest{}
	req.Params.Name = "search_assistant"
	req.Params.Arguments = map[string]string{}

	_, err := server.handleSearchAssistant(context.Background(), req)
	require.Error(t, err)
}

func TestSearchResourceFormatsMarkdown(t *testing.T) {
	engine := &stubEngine{
		resp: &search.SearchResponse{
			Results: []search.SearchResult{
				{Title: "Widgets", URL: "https://example.com/widgets", Description: "All about widgets."},
			},
		},
	}
	server := newTestServer(t, engine)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "search://widget%20care"

	contents, err := server.handleSearchResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	require.Contains(t, text.Text, "[Widgets](https://example.com/widgets)")

	require.NotNil(t, engine.gotReq)
	require.Equal(t, "widget care", engine.gotReq.Query)
	require.Equal(t, 5, engine.gotReq.MaxResults)
}
