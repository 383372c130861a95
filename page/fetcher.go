package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"ducksearch/search"
)

const (
	fetchTimeout     = 15 * time.Second
	previewLength    = 500
	snippetMaxLength = 1000
	maxHeadings      = 10

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ValidateURL rejects anything that is not plain http(s) before a request
// is made. This is the security boundary that keeps the detail tools from
// being used to read file:, javascript: or other local schemes.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q: only http and https are allowed", parsed.Scheme)
	}
	return nil
}

type Fetcher struct {
	client *http.Client
	logger *zap.Logger
	spider *Spider
}

func NewFetcher(client *http.Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger,
		spider: NewSpider(logger),
	}
}

// fetchDocument retrieves a page with browser-like headers and parses it.
// The raw body is returned alongside the document for extractors that need
// a second pass over the bytes.
func (f *Fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return doc, body, nil
}

// PageContent fetches a page and extracts its title, description and main
// content. Failures never propagate: the returned value always describes
// the URL, with the Error field set when something went wrong.
func (f *Fetcher) PageContent(ctx context.Context, pageURL string) *PageContent {
	result := &PageContent{
		URL:    pageURL,
		Domain: search.ExtractDomain(pageURL),
	}

	if err := ValidateURL(pageURL); err != nil {
		result.Error = "Invalid URL scheme. Only http and https are allowed."
		return result
	}

	doc, body, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		f.logger.Error("failed to fetch page content",
			zap.String("url", pageURL),
			zap.Error(err))
		result.Error = err.Error()
		return result
	}

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	result.Description = extractDescription(doc)
	result.Content = f.extractMainContent(doc, body, pageURL)
	result.ContentPreview = truncateText(result.Content, previewLength)

	return result
}

// Details fetches a page and extracts the full metadata set, content
// snippet, headings and related links, optionally spidering the related
// links to the requested depth.
func (f *Fetcher) Details(ctx context.Context, pageURL string, opts DetailOptions) *DetailedResult {
	result := &DetailedResult{
		URL:    pageURL,
		Domain: search.ExtractDomain(pageURL),
	}

	if err := ValidateURL(pageURL); err != nil {
		result.ContentSnippet = "Invalid URL scheme. Only http and https are allowed."
		return result
	}

	doc, body, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		f.logger.Error("failed to fetch page details",
			zap.String("url", pageURL),
			zap.Error(err))
		result.ContentSnippet = fmt.Sprintf("Failed to fetch page: %v", err)
		return result
	}

	meta := extractTrafilaturaMetadata(body, pageURL, f.logger)

	result.Title = firstNonEmpty(
		strings.TrimSpace(doc.Find("title").First().Text()),
		meta.title,
		pageURL,
	)
	result.Description = firstNonEmpty(extractDescription(doc), meta.description)
	result.PublishedDate = firstNonEmpty(extractPublishedDate(doc), meta.date)
	result.Author = firstNonEmpty(extractAuthor(doc), meta.author)
	result.Keywords = extractKeywords(doc)
	result.MainImage = firstNonEmpty(extractMainImage(doc), meta.image)
	result.SocialLinks = extractSocialLinks(doc)
	result.IsOfficial = boolPtr(isOfficialSource(result.Domain, pageURL, result.Title, doc))

	result.ContentSnippet = truncateText(extractContentSnippet(result.Domain, doc, body, pageURL), snippetMaxLength)
	result.Headings = extractHeadings(doc)
	result.RelatedLinks = collectRelatedLinks(doc, pageURL, result.Domain, opts)

	if opts.SpiderDepth > 0 && len(result.RelatedLinks) > 0 {
		result.LinkedContent = f.spider.Follow(result.RelatedLinks, opts.SpiderDepth,
			opts.MaxLinksPerPage, opts.SameDomainOnly, result.Domain)
	}

	return result
}

// collectRelatedLinks gathers the page's outbound absolute http(s) links,
// excluding the page itself, optionally filtered to the same domain.
func collectRelatedLinks(doc *goquery.Document, pageURL, domain string, opts DetailOptions) []string {
	maxLinks := opts.MaxLinksPerPage
	if maxLinks < 1 {
		maxLinks = 1
	}
	if maxLinks > 5 {
		maxLinks = 5
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if len(links) >= maxLinks {
			return false
		}

		href, _ := anchor.Attr("href")
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return true
		}
		if href == pageURL {
			return true
		}
		if opts.SameDomainOnly && search.ExtractDomain(href) != domain {
			return true
		}
		if _, dup := seen[href]; dup {
			return true
		}

		seen[href] = struct{}{}
		links = append(links, href)
		return true
	})
	return links
}

// truncateText caps text at max bytes without splitting a multibyte rune.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func boolPtr(value bool) *bool {
	return &value
}
