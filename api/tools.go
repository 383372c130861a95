package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcp "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"ducksearch/page"
	"ducksearch/search"
)

const maxQueryLength = 400

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("web_search",
		mcp.WithDescription("Search the web with DuckDuckGo and return structured results with pagination metadata."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query (max 400 characters)."),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return."),
		),
		mcp.WithNumber("page",
			mcp.Description("Result page number, starting at 1."),
		),
		mcp.WithString("site",
			mcp.Description("Restrict results to a specific site, e.g. example.com."),
		),
		mcp.WithString("time_period",
			mcp.Description("Restrict results by recency: hour, day, week, month or year."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handleWebSearch)

	s.mcp.AddTool(mcp.NewTool("get_page_content",
		mcp.WithDescription("Fetch a web page and return its title, description and main content as markdown."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The http(s) URL of the page to fetch."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handleGetPageContent)

	s.mcp.AddTool(mcp.NewTool("suggest_related_searches",
		mcp.WithDescription("Suggest related search queries for a topic, from DuckDuckGo's related searches or autocomplete."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The query to find related searches for."),
		),
		mcp.WithNumber("max_suggestions",
			mcp.Description("Maximum number of suggestions to return (1-10)."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handleSuggestRelated)

	s.mcp.AddTool(mcp.NewTool("get_details",
		mcp.WithDescription("Fetch a page and extract detailed metadata: author, publication date, keywords, social links, headings and a content snippet, optionally following related links."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The http(s) URL of the page to analyze."),
		),
		mcp.WithNumber("spider_depth",
			mcp.Description("How many levels of related links to follow (0-3, default 0)."),
		),
		mcp.WithNumber("max_links_per_page",
			mcp.Description("Maximum links to follow per page when spidering (1-5, default 3)."),
		),
		mcp.WithBoolean("same_domain_only",
			mcp.Description("Only follow links on the same domain as the page."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), s.handleGetDetails)
}

func (s *Server) handleWebSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.NewString()

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}
	if len(query) > maxQueryLength {
		return mcp.NewToolResultError(fmt.Sprintf("query exceeds the maximum length of %d characters", maxQueryLength)), nil
	}

	maxResults := readIntArgWithDefault(req, "max_results", s.defaultMaxResults)
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > s.maxResultsLimit {
		maxResults = s.maxResultsLimit
	}

	pageNum := readIntArgWithDefault(req, "page", 1)
	if pageNum < 1 {
		pageNum = 1
	}

	timePeriod := readStringArg(req, "time_period")
	switch timePeriod {
	case "", "hour", "day", "week", "month", "year":
	default:
		return mcp.NewToolResultError("time_period must be one of: hour, day, week, month, year"), nil
	}

	searchReq := &search.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
		Page:       pageNum,
		Site:       readStringArg(req, "site"),
		TimePeriod: timePeriod,
	}

	s.logger.Info("web_search",
		zap.String("request_id", requestID),
		zap.String("query", query),
		zap.Int("max_results", maxResults),
		zap.Int("page", pageNum))

	resp, err := s.engine.Search(ctx, searchReq)
	if err != nil {
		s.logger.Error("web_search failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return mcp.NewToolResultJSON(map[string]any{
			"error":   fmt.Sprintf("search failed: %v", err),
			"query":   query,
			"results": []search.SearchResult{},
		})
	}

	return mcp.NewToolResultJSON(map[string]any{
		"query":         query,
		"results":       resp.Results,
		"total_results": resp.TotalResults,
		"page":          resp.Page,
		"total_pages":   resp.TotalPages,
		"has_next":      resp.HasNext,
		"has_previous":  resp.HasPrevious,
	})
}

func (s *Server) handleGetPageContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.NewString()

	pageURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return mcp.NewToolResultError("url must not be empty"), nil
	}

	s.logger.Info("get_page_content",
		zap.String("request_id", requestID),
		zap.String("url", pageURL))

	return mcp.NewToolResultJSON(s.fetcher.PageContent(ctx, pageURL))
}

func (s *Server) handleSuggestRelated(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.NewString()

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}

	max := readIntArgWithDefault(req, "max_suggestions", 5)
	if max < 1 {
		max = 1
	}
	if max > 10 {
		max = 10
	}

	s.logger.Info("suggest_related_searches",
		zap.String("request_id", requestID),
		zap.String("query", query),
		zap.Int("max_suggestions", max))

	suggestions := s.suggester.Suggest(ctx, query, max)

	// Synthesized suggestions are templates, not observed searches; the
	// status field keeps callers from presenting them as real data.
	status := "success"
	if suggestions.Source == search.SourceSynthesized {
		status = "contextual"
	}

	return mcp.NewToolResultJSON(map[string]any{
		"original_query":   query,
		"related_searches": suggestions.Queries,
		"count":            len(suggestions.Queries),
		"source":           suggestions.Source,
		"status":           status,
	})
}

func (s *Server) handleGetDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.NewString()

	pageURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pageURL = strings.TrimSpace(pageURL)
	if err := page.ValidateURL(pageURL); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	depth := readIntArgWithDefault(req, "spider_depth", 0)
	if depth < 0 {
		depth = 0
	}
	if depth > 3 {
		depth = 3
	}

	maxLinks := readIntArgWithDefault(req, "max_links_per_page", 3)
	if maxLinks < 1 {
		maxLinks = 1
	}
	if maxLinks > 5 {
		maxLinks = 5
	}

	opts := page.DetailOptions{
		SpiderDepth:     depth,
		MaxLinksPerPage: maxLinks,
		SameDomainOnly:  readBoolArg(req, "same_domain_only"),
	}

	s.logger.Info("get_details",
		zap.String("request_id", requestID),
		zap.String("url", pageURL),
		zap.Int("spider_depth", depth),
		zap.Int("max_links_per_page", maxLinks),
		zap.Bool("same_domain_only", opts.SameDomainOnly))

	return mcp.NewToolResultJSON(s.fetcher.Details(ctx, pageURL, opts))
}
