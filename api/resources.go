package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mcp "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"ducksearch/search"
)

const searchDocsMarkdown = `# DuckDuckGo Search

Tools exposed by this server:

## web_search
Search the web and get structured results with pagination metadata.
Parameters: query (required, max 400 chars), max_results, page, site, time_period.

## get_page_content
Fetch a page and read its title, description and main content as markdown.
Parameters: url (required, http or https only).

## suggest_related_searches
Get related queries for a topic. Suggestions are scraped from the results
page when present, taken from the autocomplete API otherwise, and
synthesized from templates as a last resort (status "contextual").
Parameters: query (required), max_suggestions (1-10).

## get_details
Extract full page metadata: author, publication date, keywords, social
links, headings, a content snippet and related links. Set spider_depth to
follow related links and summarize them too.
Parameters: url (required), spider_depth (0-3), max_links_per_page (1-5),
same_domain_only.

## Resources
- docs://search, this document.
- search://{query}, search results for the query as markdown.
`

func (s *Server) registerResources() {
	docs := mcp.NewResource(
		"docs://search",
		"Search tool documentation",
		mcp.WithResourceDescription("Usage notes for the search tools exposed by this server."),
		mcp.WithMIMEType("text/markdown"),
	)
	s.mcp.AddResource(docs, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     searchDocsMarkdown,
			},
		}, nil
	})

	results := mcp.NewResourceTemplate(
		"search://{query}",
		"Search results",
		mcp.WithTemplateDescription("Web search results for the given query, rendered as markdown."),
		mcp.WithTemplateMIMEType("text/markdown"),
	)
	s.mcp.AddResourceTemplate(results, s.handleSearchResource)
}

func (s *Server) handleSearchResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	query := strings.TrimPrefix(req.Params.URI, "search://")
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query in resource URI %q", req.Params.URI)
	}

	resp, err := s.engine.Search(ctx, &search.SearchRequest{
		Query:      query,
		MaxResults: 5,
		Page:       1,
	})
	if err != nil {
		s.logger.Error("search resource failed",
			zap.String("query", query),
			zap.Error(err))
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     formatResultsMarkdown(query, resp.Results),
		},
	}, nil
}

func formatResultsMarkdown(query string, results []search.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search results for %q\n\n", query)
	if len(results) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}
	for i, result := range results {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, result.Title, result.URL)
		if result.Description != "" {
			fmt.Fprintf(&b, "   %s\n", result.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
