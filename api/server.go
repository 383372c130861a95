package api

import (
	"context"
	"fmt"

	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"ducksearch/config"
	"ducksearch/page"
	"ducksearch/search"
)

// Server wires the search engine, page fetcher and suggester into an MCP
// server and owns its transports.
type Server struct {
	mcp       *srv.MCPServer
	logger    *zap.Logger
	engine    search.SearchEngine
	fetcher   *page.Fetcher
	suggester *search.Suggester

	defaultMaxResults int
	maxResultsLimit   int
}

func NewServer(engine search.SearchEngine, fetcher *page.Fetcher,
	suggester *search.Suggester, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("search engine is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if suggester == nil {
		return nil, fmt.Errorf("suggester is required")
	}

	mcpServer := srv.NewMCPServer(
		"ducksearch",
		"1.0.0",
		srv.WithToolCapabilities(true),
		srv.WithResourceCapabilities(true, true),
		srv.WithPromptCapabilities(true),
		srv.WithInstructions("Search the web with DuckDuckGo: web_search for results, "+
			"get_page_content to read a page, suggest_related_searches for follow-up "+
			"queries, get_details for full page metadata with optional link spidering."),
		srv.WithRecovery(),
		srv.WithHooks(newHooks(logger.Named("mcp_hooks"))),
	)

	s := &Server{
		mcp:               mcpServer,
		logger:            logger.Named("api"),
		engine:            engine,
		fetcher:           fetcher,
		suggester:         suggester,
		defaultMaxResults: cfg.DefaultMaxResults,
		maxResultsLimit:   cfg.MaxResultsLimit,
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	return srv.ServeStdio(s.mcp)
}

// ServeHTTP blocks serving the streamable HTTP transport on the port.
func (s *Server) ServeHTTP(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
	return srv.NewStreamableHTTPServer(s.mcp).Start(addr)
}

func newHooks(logger *zap.Logger) *srv.Hooks {
	hooks := &srv.Hooks{}

	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		logger.Debug("mcp request received",
			zap.Any("request_id", id),
			zap.String("method", string(method)))
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Error("mcp request failed",
			zap.Any("request_id", id),
			zap.String("method", string(method)),
			zap.Error(err))
	})

	return hooks
}
