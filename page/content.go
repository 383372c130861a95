package page

import (
	"bytes"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// contentSelectors locate the main content container of an arbitrary page,
// tried in order.
var contentSelectors = []string{
	"main article",
	"article",
	`[role="main"]`,
	".content",
	".article-content",
	".post-content",
	"#content",
	"#article",
	".entry-content",
}

var newsDomains = []string{
	"cnn.com",
	"bbc.com",
	"bbc.co.uk",
	"nytimes.com",
	"reuters.com",
	"theguardian.com",
	"washingtonpost.com",
	"apnews.com",
}

var blogDomains = []string{
	"medium.com",
	"blogspot.com",
	"wordpress.com",
	"dev.to",
	"substack.com",
}

// contentStrategy pairs a domain predicate with an extraction routine.
// Strategies are evaluated in order and fall through to the generic
// extractor when none match or the match produced nothing.
type contentStrategy struct {
	name    string
	matches func(domain string) bool
	extract func(doc *goquery.Document) string
}

var contentStrategies = []contentStrategy{
	{
		name: "wikipedia",
		matches: func(domain string) bool {
			return strings.Contains(domain, "wikipedia.org")
		},
		extract: func(doc *goquery.Document) string {
			return paragraphsText(doc.Find("div.mw-parser-output p"), 5)
		},
	},
	{
		name: "docs",
		matches: func(domain string) bool {
			return strings.HasPrefix(domain, "docs.") ||
				strings.HasPrefix(domain, "developer.") ||
				strings.Contains(domain, "readthedocs") ||
				strings.Contains(domain, "documentation")
		},
		extract: extractDocsContent,
	},
	{
		name: "news",
		matches: func(domain string) bool {
			host := stripPort(domain)
			for _, known := range newsDomains {
				if host == known || strings.HasSuffix(host, "."+known) {
					return true
				}
			}
			return strings.Contains(domain, "news")
		},
		extract: func(doc *goquery.Document) string {
			for _, selector := range []string{"article p", ".article-body p", ".story-body p"} {
				if text := paragraphsText(doc.Find(selector), 8); text != "" {
					return text
				}
			}
			return ""
		},
	},
	{
		name: "blog",
		matches: func(domain string) bool {
			host := stripPort(domain)
			for _, known := range blogDomains {
				if host == known || strings.HasSuffix(host, "."+known) {
					return true
				}
			}
			return strings.Contains(domain, "blog")
		},
		extract: func(doc *goquery.Document) string {
			for _, selector := range []string{".post-content p", ".entry-content p", "article p"} {
				if text := paragraphsText(doc.Find(selector), 8); text != "" {
					return text
				}
			}
			return ""
		},
	},
}

// extractContentSnippet picks a content extraction strategy by domain
// pattern and falls back to the generic chain when the matched strategy
// yields nothing.
func extractContentSnippet(domain string, doc *goquery.Document, body []byte, pageURL string) string {
	for _, strategy := range contentStrategies {
		if !strategy.matches(domain) {
			continue
		}
		if text := strategy.extract(doc); text != "" {
			return text
		}
		break
	}
	return extractGenericContent(doc, body, pageURL)
}

// extractDocsContent gathers paragraphs and code blocks from the main
// content area of a documentation site, code prefixed with a marker.
func extractDocsContent(doc *goquery.Document) string {
	var container *goquery.Selection
	for _, selector := range []string{"main", "article", ".document", `[role="main"]`, ".body"} {
		found := doc.Find(selector).First()
		if found.Length() > 0 {
			container = found
			break
		}
	}
	if container == nil {
		return ""
	}

	var parts []string
	container.Find("p, pre").EachWithBreak(func(_ int, element *goquery.Selection) bool {
		if len(parts) >= 10 {
			return false
		}
		text := strings.TrimSpace(element.Text())
		if text == "" {
			return true
		}
		if goquery.NodeName(element) == "pre" {
			text = "code:\n" + text
		}
		parts = append(parts, text)
		return true
	})
	return strings.Join(parts, "\n\n")
}

// extractGenericContent is the fallthrough chain: container ids, container
// classes, body paragraphs, then readability over the whole document.
func extractGenericContent(doc *goquery.Document, body []byte, pageURL string) string {
	for _, selector := range []string{"#content", "#main-content", "#article"} {
		if text := paragraphsText(doc.Find(selector+" p"), 8); text != "" {
			return text
		}
	}
	for _, selector := range []string{".content", ".article-content", ".post-content", ".entry-content", "main article", "article", `[role="main"]`} {
		if text := paragraphsText(doc.Find(selector+" p"), 8); text != "" {
			return text
		}
	}
	if text := paragraphsText(doc.Find("body p"), 8); text != "" {
		return text
	}
	return readabilityText(body, pageURL)
}

// extractMainContent produces the markdown content for get_page_content:
// the first matching content container rendered to markdown, readability's
// article when no container matches, then plain paragraphs.
func (f *Fetcher) extractMainContent(doc *goquery.Document, body []byte, pageURL string) string {
	for _, selector := range contentSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(container)
		if err != nil {
			continue
		}
		if markdown, err := htmltomarkdown.ConvertString(html); err == nil {
			if markdown = strings.TrimSpace(markdown); markdown != "" {
				return markdown
			}
		} else {
			f.logger.Debug("markdown conversion failed",
				zap.String("url", pageURL),
				zap.Error(err))
		}
		if text := strings.TrimSpace(container.Text()); text != "" {
			return text
		}
	}

	if article := readabilityArticle(body, pageURL); article != nil && article.Content != "" {
		if markdown, err := htmltomarkdown.ConvertString(article.Content); err == nil {
			if markdown = strings.TrimSpace(markdown); markdown != "" {
				return markdown
			}
		}
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}

	return paragraphsText(doc.Find("p"), 5)
}

func readabilityArticle(body []byte, pageURL string) *readability.Article {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil
	}
	return &article
}

func readabilityText(body []byte, pageURL string) string {
	article := readabilityArticle(body, pageURL)
	if article == nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func extractHeadings(doc *goquery.Document) []string {
	var headings []string
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if len(headings) >= maxHeadings {
			return false
		}
		if text := strings.TrimSpace(heading.Text()); text != "" {
			headings = append(headings, text)
		}
		return true
	})
	return headings
}

// paragraphsText joins the first limit non-empty paragraph texts.
func paragraphsText(selection *goquery.Selection, limit int) string {
	var parts []string
	selection.EachWithBreak(func(_ int, paragraph *goquery.Selection) bool {
		if len(parts) >= limit {
			return false
		}
		if text := strings.TrimSpace(paragraph.Text()); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, "\n\n")
}

func stripPort(domain string) string {
	if idx := strings.Index(domain, ":"); idx >= 0 {
		return domain[:idx]
	}
	return domain
}
