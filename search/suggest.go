package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kljensen/snowball"
	"go.uber.org/zap"
)

const (
	autocompleteURL     = "https://duckduckgo.com/ac/"
	autocompleteTimeout = 10 * time.Second
	maxSuggestionPool   = 10
)

// Suggestion sources, surfaced to callers so synthesized queries are never
// mistaken for scraped ones.
const (
	SourceScraped      = "scraped"
	SourceAutocomplete = "autocomplete"
	SourceSynthesized  = "synthesized"
)

// relatedSearchSelectors locate DuckDuckGo's related-searches UI region.
// Ordered broad-to-narrow like the result selectors; the markup differs
// between the html and lite frontends.
var relatedSearchSelectors = []string{
	".related-searches a",
	"div.related_searches a",
	"a.related-searches__link",
	"td.result-sprel a",
	`div[class*="related"] a`,
}

type Suggestions struct {
	Queries []string
	Source  string
}

type Suggester struct {
	client *http.Client
	logger *zap.Logger
}

func NewSuggester(client *http.Client, logger *zap.Logger) *Suggester {
	return &Suggester{
		client: client,
		logger: logger,
	}
}

// Suggest produces up to max related query strings. Scraped suggestions are
// preferred, then the autocomplete API, then synthesized templates. The
// Source field records which path produced the output.
func (s *Suggester) Suggest(ctx context.Context, query string, max int) Suggestions {
	if max < 1 {
		max = 1
	}
	if max > maxSuggestionPool {
		max = maxSuggestionPool
	}

	if scraped := s.scrapeRelated(ctx, query); len(scraped) > 0 {
		return Suggestions{Queries: truncate(scraped, max), Source: SourceScraped}
	}

	if completions := s.autocomplete(ctx, query); len(completions) > 0 {
		return Suggestions{Queries: truncate(completions, max), Source: SourceAutocomplete}
	}

	return Suggestions{Queries: truncate(synthesize(query), max), Source: SourceSynthesized}
}

// scrapeRelated looks for a related-searches region on the results page.
// Any failure, including the request itself, yields nil so the caller falls
// through to the next source.
func (s *Suggester) scrapeRelated(ctx context.Context, query string) []string {
	ctx, cancel := context.WithTimeout(ctx, htmlFetchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, htmlSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		s.logger.Error("related: failed to create request", zap.Error(err))
		return nil
	}
	for key, value := range commonHeaders {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("related: request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("related: unexpected status", zap.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.logger.Warn("related: failed to parse page", zap.Error(err))
		return nil
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[string]struct{})
	var suggestions []string

	for _, selector := range relatedSearchSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
			if len(suggestions) >= maxSuggestionPool {
				return false
			}
			text := strings.TrimSpace(anchor.Text())
			key := strings.ToLower(text)
			if text == "" || key == lowered {
				return true
			}
			if _, dup := seen[key]; dup {
				return true
			}
			seen[key] = struct{}{}
			suggestions = append(suggestions, text)
			return true
		})
		if len(suggestions) > 0 {
			break
		}
	}

	return suggestions
}

// autocomplete queries DuckDuckGo's suggestion API. The response is a
// two-element array: the query followed by a list of suggestion strings.
func (s *Suggester) autocomplete(ctx context.Context, query string) []string {
	ctx, cancel := context.WithTimeout(ctx, autocompleteTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "list")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, autocompleteURL+"?"+params.Encode(), nil)
	if err != nil {
		s.logger.Error("autocomplete: failed to create request", zap.Error(err))
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("autocomplete: request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("autocomplete: unexpected status", zap.Int("status", resp.StatusCode))
		return nil
	}

	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Warn("autocomplete: failed to decode response", zap.Error(err))
		return nil
	}
	if len(payload) < 2 {
		return nil
	}

	var completions []string
	if err := json.Unmarshal(payload[1], &completions); err != nil {
		s.logger.Warn("autocomplete: unexpected payload shape", zap.Error(err))
		return nil
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	var suggestions []string
	for _, completion := range completions {
		completion = strings.TrimSpace(completion)
		if completion == "" || strings.ToLower(completion) == lowered {
			continue
		}
		suggestions = append(suggestions, completion)
	}
	return suggestions
}

// Topic keyword sets for synthesized suggestions, matched against snowball
// stems of the query words.
var (
	newsKeywords     = stemAll("news", "latest", "today", "current", "breaking", "election", "war", "crisis", "update")
	techKeywords     = stemAll("programming", "software", "code", "api", "framework", "install", "error", "computer", "app", "technology", "library")
	researchKeywords = stemAll("research", "study", "theory", "analysis", "science", "history", "definition", "paper")
)

// synthesize builds template suggestions when nothing real was available.
// The template set is chosen by stem-matching the query words against the
// topic keyword sets.
func synthesize(query string) []string {
	query = strings.TrimSpace(query)

	var templates []string
	switch {
	case queryMatches(query, newsKeywords):
		templates = []string{
			"%s latest news",
			"%s today",
			"%s updates",
			"%s timeline",
			"what happened with %s",
			"%s explained",
			"%s analysis",
			"%s background",
			"%s summary",
			"%s reactions",
		}
	case queryMatches(query, techKeywords):
		templates = []string{
			"%s tutorial",
			"%s documentation",
			"how to use %s",
			"%s examples",
			"%s best practices",
			"%s alternatives",
			"%s vs",
			"%s getting started",
			"%s troubleshooting",
			"%s performance",
		}
	case queryMatches(query, researchKeywords):
		templates = []string{
			"%s explained",
			"%s overview",
			"%s research papers",
			"history of %s",
			"%s examples",
			"%s criticism",
			"%s applications",
			"%s methodology",
			"what is %s",
			"%s summary",
		}
	default:
		templates = []string{
			"what is %s",
			"%s guide",
			"%s examples",
			"%s vs",
			"%s benefits",
			"best %s",
			"%s reviews",
			"how does %s work",
			"%s alternatives",
			"%s meaning",
		}
	}

	lowered := strings.ToLower(query)
	seen := make(map[string]struct{})
	var suggestions []string
	for _, template := range templates {
		suggestion := strings.TrimSpace(strings.ReplaceAll(template, "%s", query))
		key := strings.ToLower(suggestion)
		if key == lowered {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}

func queryMatches(query string, keywords map[string]struct{}) bool {
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if _, ok := keywords[stemWord(word)]; ok {
			return true
		}
	}
	return false
}

func stemWord(word string) string {
	stem, err := snowball.Stem(word, "english", true)
	if err != nil {
		return word
	}
	return stem
}

func stemAll(words ...string) map[string]struct{} {
	stems := make(map[string]struct{}, len(words))
	for _, word := range words {
		stems[stemWord(word)] = struct{}{}
	}
	return stems
}

func truncate(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
