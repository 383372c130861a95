package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	htmlSearchURL        = "https://html.duckduckgo.com/html/"
	defaultSearchTimeout = 15 * time.Second
	htmlFetchTimeout     = 15 * time.Second

	// DuckDuckGo serves a degraded or empty page to clients that do not
	// look like a browser.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var commonHeaders = map[string]string{
	"User-Agent":                browserUserAgent,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// timePeriodParams maps the accepted time_period filter values to
// DuckDuckGo's df query parameter.
var timePeriodParams = map[string]string{
	"hour":  "h",
	"day":   "d",
	"week":  "w",
	"month": "m",
	"year":  "y",
}

type Engine struct {
	client        *http.Client
	searchTimeout time.Duration
	logger        *zap.Logger
}

// NewEngine builds a search engine over the shared client. searchTimeout
// bounds each upstream fetch; zero or negative selects the default.
func NewEngine(client *http.Client, searchTimeout time.Duration, logger *zap.Logger) *Engine {
	if searchTimeout <= 0 {
		searchTimeout = defaultSearchTimeout
	}
	return &Engine{
		client:        client,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
}

// Search merges instant answers and scraped HTML results for the query.
// The two upstream fetches run concurrently; instant answers are merged
// first because they are higher-confidence. Both sub-searches contain
// their own failures, so an empty response is a valid non-error outcome.
func (e *Engine) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	count := req.MaxResults
	if count <= 0 {
		count = 10
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	query := strings.TrimSpace(req.Query)
	if req.Site != "" {
		query = fmt.Sprintf("%s site:%s", query, req.Site)
	}

	e.logger.Info("searching",
		zap.String("query", query),
		zap.Int("max_results", count),
		zap.Int("page", page))

	var (
		wg             sync.WaitGroup
		instantResults []SearchResult
		htmlResults    []SearchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		instantResults = e.searchInstant(ctx, query)
	}()
	go func() {
		defer wg.Done()
		htmlResults = e.searchHTML(ctx, query, count, page, req.TimePeriod)
	}()
	wg.Wait()

	e.logger.Info("search results collected",
		zap.Int("instant", len(instantResults)),
		zap.Int("html", len(htmlResults)))

	merged := mergeResults(instantResults, htmlResults, count)
	return paginate(merged, count, page), nil
}

// searchHTML fetches and parses the HTML results page. All failures are
// logged and converted to an empty slice.
func (e *Engine) searchHTML(ctx context.Context, query string, count, page int, timePeriod string) []SearchResult {
	ctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", "wt-wt")
	if df, ok := timePeriodParams[timePeriod]; ok {
		params.Set("df", df)
	}
	if page > 1 {
		params.Set("s", strconv.Itoa((page-1)*count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, htmlSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		e.logger.Error("html search: failed to create request", zap.Error(err))
		return nil
	}
	for key, value := range commonHeaders {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("html search: request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("html search: unexpected status", zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.logger.Error("html search: failed to read response", zap.Error(err))
		return nil
	}

	return e.parseResultsPage(string(body), count)
}

// mergeResults concatenates instant-answer results before HTML results,
// drops anything without a usable http(s) URL, deduplicates by exact URL
// preserving first-seen order, and truncates to count.
func mergeResults(instant, html []SearchResult, count int) []SearchResult {
	seen := make(map[string]struct{}, len(instant)+len(html))
	merged := make([]SearchResult, 0, count)

	for _, result := range append(instant, html...) {
		if result.URL == "" || !strings.HasPrefix(result.URL, "http") {
			continue
		}
		if _, dup := seen[result.URL]; dup {
			continue
		}
		seen[result.URL] = struct{}{}
		merged = append(merged, result)
		if len(merged) >= count {
			break
		}
	}

	return merged
}

// paginate derives the pagination fields. Upstream exposes no authoritative
// total, so the estimate deliberately claims one more page whenever a full
// page came back.
func paginate(results []SearchResult, count, page int) *SearchResponse {
	fetched := len(results)
	total := (page-1)*count + fetched
	hasNext := fetched == count
	if hasNext {
		total += count
	}

	totalPages := (total + count - 1) / count
	if totalPages < 1 {
		totalPages = 1
	}
	// A response never claims fewer pages than the page it is reporting on.
	if totalPages < page {
		totalPages = page
	}

	return &SearchResponse{
		Results:      results,
		TotalResults: total,
		Page:         page,
		TotalPages:   totalPages,
		HasNext:      hasNext,
		HasPrevious:  page > 1,
	}
}
