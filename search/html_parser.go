package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DuckDuckGo's result markup changes over time and across rollout cohorts,
// so each extraction step tries an ordered list of selectors and takes the
// first that matches.
var (
	resultBlockSelectors = []string{
		"div.result",
		`div[class*="result"]`,
		".result",
		".web-result",
		".result_body",
	}

	titleLinkSelectors = []string{
		"a.result__a",
		`a[class*="result"]`,
		".result__title a",
		"h3 a",
		"a",
	}

	snippetSelectors = []string{
		"a.result__snippet",
		".result__snippet",
		".result__body",
		".snippet",
		"p",
	}
)

// parseResultsPage extracts up to count search results from a DuckDuckGo
// HTML results page. It never fails: unparseable markup yields an empty
// slice, and a broken block is skipped rather than aborting the page.
func (e *Engine) parseResultsPage(htmlBody string, count int) []SearchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		e.logger.Error("failed to parse results page", zap.Error(err))
		return nil
	}

	var blocks *goquery.Selection
	for _, selector := range resultBlockSelectors {
		found := doc.Find(selector)
		if found.Length() > 0 {
			e.logger.Debug("result blocks matched",
				zap.String("selector", selector),
				zap.Int("count", found.Length()))
			blocks = found
			break
		}
	}

	if blocks == nil {
		e.logger.Warn("no result blocks found, falling back to raw anchors")
		return collectRawAnchors(doc, count)
	}

	var results []SearchResult
	blocks.EachWithBreak(func(i int, block *goquery.Selection) bool {
		if len(results) >= count {
			return false
		}

		result, ok := parseResultBlock(block)
		if !ok {
			e.logger.Debug("skipping unparseable result block", zap.Int("index", i))
			return true
		}

		results = append(results, result)
		return true
	})

	return results
}

func parseResultBlock(block *goquery.Selection) (SearchResult, bool) {
	var title, href string
	for _, selector := range titleLinkSelectors {
		link := block.Find(selector).First()
		if link.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(link.Text())
		if text == "" {
			continue
		}
		title = text
		href, _ = link.Attr("href")
		break
	}

	resolved := ResolveRedirect(href)
	if resolved == "" || title == "" {
		return SearchResult{}, false
	}

	var description string
	for _, selector := range snippetSelectors {
		snippet := block.Find(selector).First()
		if snippet.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(snippet.Text()); text != "" {
			description = text
			break
		}
	}

	return SearchResult{
		Title:       title,
		URL:         resolved,
		Description: description,
		Domain:      ExtractDomain(resolved),
	}, true
}

// collectRawAnchors is the last-resort strategy when no block selector
// matches: accept any anchor with a non-empty href and text that is not a
// pure in-page anchor.
func collectRawAnchors(doc *goquery.Document, count int) []SearchResult {
	var results []SearchResult
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if len(results) >= count {
			return false
		}

		href, _ := anchor.Attr("href")
		text := strings.TrimSpace(anchor.Text())
		if href == "" || text == "" || strings.HasPrefix(href, "#") {
			return true
		}

		results = append(results, SearchResult{
			Title:  text,
			URL:    href,
			Domain: ExtractDomain(href),
		})
		return true
	})
	return results
}
