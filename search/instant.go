package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const instantAnswerURL = "https://api.duckduckgo.com/"

type instantAnswer struct {
	Abstract      string         `json:"Abstract"`
	AbstractURL   string         `json:"AbstractURL"`
	Heading       string         `json:"Heading"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// searchInstant queries the instant-answer API. Transport and decode
// failures are logged and degrade to an empty slice; the caller never sees
// an error from this path.
func (e *Engine) searchInstant(ctx context.Context, query string) []SearchResult {
	ctx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instantAnswerURL+"?"+params.Encode(), nil)
	if err != nil {
		e.logger.Error("instant: failed to create request", zap.Error(err))
		return nil
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("instant: request failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("instant: unexpected status", zap.Int("status", resp.StatusCode))
		return nil
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		e.logger.Error("instant: failed to decode response", zap.Error(err))
		return nil
	}

	return parseInstantAnswer(&answer, query)
}

// parseInstantAnswer turns an instant-answer payload into results: the
// abstract first (title falls back to the query when Heading is absent),
// then one result per related topic carrying both Text and FirstURL.
func parseInstantAnswer(answer *instantAnswer, query string) []SearchResult {
	var results []SearchResult

	if answer.Abstract != "" {
		title := answer.Heading
		if title == "" {
			title = query
		}
		results = append(results, SearchResult{
			Title:       title,
			URL:         answer.AbstractURL,
			Description: answer.Abstract,
			Domain:      ExtractDomain(answer.AbstractURL),
		})
	}

	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:       topic.Text,
			URL:         topic.FirstURL,
			Description: topic.Text,
			Domain:      ExtractDomain(topic.FirstURL),
		})
	}

	return results
}
