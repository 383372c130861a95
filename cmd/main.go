package main

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"ducksearch/api"
	"ducksearch/config"
	"ducksearch/page"
	"ducksearch/search"
)

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// HTTP
	// =========
	httpClient := NewHttpClient(cfg.ProxyURL, time.Duration(cfg.FetchTimeoutSecs)*time.Second)

	// =========
	// Search engine
	// =========
	engine := search.NewEngine(httpClient, time.Duration(cfg.SearchTimeoutSecs)*time.Second, logger)

	// =========
	// Page fetcher
	// =========
	fetcher := page.NewFetcher(httpClient, logger)

	// =========
	// Suggester
	// =========
	suggester := search.NewSuggester(httpClient, logger)

	// =========
	// MCP server
	// =========
	server, err := api.NewServer(engine, fetcher, suggester, cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	if cfg.AppPort > 0 {
		if err := server.ServeHTTP(cfg.AppPort); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
		return
	}

	if err := server.ServeStdio(); err != nil {
		logger.Fatal("stdio server stopped", zap.Error(err))
	}
}

func NewHttpClient(proxyUrl string, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: timeout,
	}
	if proxyUrl != "" {
		if proxyURL, err := url.Parse(proxyUrl); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
