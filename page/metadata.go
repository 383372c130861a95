package page

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"go.uber.org/zap"
)

// publishedDateSelectors is the fixed priority order for publication date
// metadata. A <time datetime=""> element is the last resort.
var publishedDateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[itemprop="datePublished"]`,
	`meta[name="pubdate"]`,
	`meta[name="date"]`,
	`meta[name="publishdate"]`,
}

var authorSelectors = []string{
	`meta[name="author"]`,
	`meta[property="article:author"]`,
}

var authorClassSelectors = []string{
	".author",
	".byline",
	`[rel="author"]`,
}

var mainImageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[name="twitter:image"]`,
}

// socialPlatforms maps a platform tag to the host fragments that identify
// its profile links.
var socialPlatforms = map[string][]string{
	"twitter":   {"twitter.com", "x.com"},
	"facebook":  {"facebook.com"},
	"linkedin":  {"linkedin.com"},
	"instagram": {"instagram.com"},
	"youtube":   {"youtube.com"},
	"github":    {"github.com"},
}

var officialDomainSuffixes = []string{".gov", ".edu", ".org", ".mil"}

// extractDescription tries the meta description, then Open Graph, then the
// first paragraph longer than 50 characters.
func extractDescription(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc := strings.TrimSpace(content); desc != "" {
			return desc
		}
	}
	if content, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		if desc := strings.TrimSpace(content); desc != "" {
			return desc
		}
	}

	var description string
	doc.Find("p").EachWithBreak(func(_ int, paragraph *goquery.Selection) bool {
		text := strings.TrimSpace(paragraph.Text())
		if len(text) > 50 {
			description = text
			return false
		}
		return true
	})
	return description
}

func extractPublishedDate(doc *goquery.Document) string {
	for _, selector := range publishedDateSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if date := strings.TrimSpace(content); date != "" {
				return date
			}
		}
	}

	var date string
	doc.Find("time").EachWithBreak(func(_ int, element *goquery.Selection) bool {
		if datetime, ok := element.Attr("datetime"); ok {
			if datetime = strings.TrimSpace(datetime); datetime != "" {
				date = datetime
				return false
			}
		}
		return true
	})
	return date
}

func extractAuthor(doc *goquery.Document) string {
	for _, selector := range authorSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if author := strings.TrimSpace(content); author != "" {
				return author
			}
		}
	}
	for _, selector := range authorClassSelectors {
		if author := strings.TrimSpace(doc.Find(selector).First().Text()); author != "" {
			return author
		}
	}
	return ""
}

func extractKeywords(doc *goquery.Document) []string {
	content, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content")
	if !ok {
		return nil
	}

	seen := make(map[string]struct{})
	var keywords []string
	for _, keyword := range strings.Split(content, ",") {
		keyword = strings.TrimSpace(keyword)
		key := strings.ToLower(keyword)
		if keyword == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, keyword)
		if len(keywords) >= 10 {
			break
		}
	}
	return keywords
}

func extractMainImage(doc *goquery.Document) string {
	for _, selector := range mainImageSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if image := strings.TrimSpace(content); image != "" {
				return image
			}
		}
	}
	if src, ok := doc.Find("article img, main img").First().Attr("src"); ok {
		return strings.TrimSpace(src)
	}
	return ""
}

func extractSocialLinks(doc *goquery.Document) map[string]string {
	links := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		host := strings.ToLower(hostOf(href))
		if host == "" {
			return
		}
		for platform, fragments := range socialPlatforms {
			if _, found := links[platform]; found {
				continue
			}
			for _, fragment := range fragments {
				if host == fragment || strings.HasSuffix(host, "."+fragment) {
					links[platform] = href
					break
				}
			}
		}
	})
	if len(links) == 0 {
		return nil
	}
	return links
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// isOfficialSource is a heuristic, not a verified trust signal: TLD class,
// "official" in the URL or title, or a "verified" marker in the body.
func isOfficialSource(domain, pageURL, title string, doc *goquery.Document) bool {
	host := stripPort(domain)
	for _, suffix := range officialDomainSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(pageURL), "official") {
		return true
	}
	if strings.Contains(strings.ToLower(title), "official") {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Find("body").Text()), "verified")
}

// pageMetadata is trafilatura's view of a page, used as a fallback behind
// the meta-tag heuristics.
type pageMetadata struct {
	title       string
	description string
	author      string
	date        string
	image       string
}

func extractTrafilaturaMetadata(body []byte, pageURL string, logger *zap.Logger) pageMetadata {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return pageMetadata{}
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{
		OriginalURL: parsedURL,
	})
	if err != nil {
		logger.Debug("trafilatura extraction failed",
			zap.String("url", pageURL),
			zap.Error(err))
		return pageMetadata{}
	}

	meta := pageMetadata{
		title:       result.Metadata.Title,
		description: result.Metadata.Description,
		author:      result.Metadata.Author,
		image:       result.Metadata.Image,
	}
	if !result.Metadata.Date.IsZero() {
		meta.date = result.Metadata.Date.Format("2006-01-02")
	}
	return meta
}
