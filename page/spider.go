package page

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	maxSpiderDepth    = 3
	maxSpiderLinks    = 5
	spiderTimeout     = 10 * time.Second
	linkedSnippetSize = 300
)

// Spider follows links discovered on a fetched page and extracts a reduced
// summary for each, bounded by depth and a per-page link cap. The total
// fetch fan-out never exceeds maxLinks^depth.
type Spider struct {
	logger *zap.Logger
}

func NewSpider(logger *zap.Logger) *Spider {
	return &Spider{logger: logger}
}

func (s *Spider) Follow(links []string, depth, maxLinks int, sameDomain bool, baseDomain string) []LinkedContent {
	if depth <= 0 || len(links) == 0 {
		return nil
	}
	if depth > maxSpiderDepth {
		depth = maxSpiderDepth
	}
	if maxLinks < 1 {
		maxLinks = 1
	}
	if maxLinks > maxSpiderLinks {
		maxLinks = maxSpiderLinks
	}

	budget := 1
	for i := 0; i < depth; i++ {
		budget *= maxLinks
	}

	options := []colly.CollectorOption{
		colly.UserAgent(browserUserAgent),
		colly.MaxDepth(depth),
		colly.IgnoreRobotsTxt(),
	}
	if sameDomain && baseDomain != "" {
		options = append(options, colly.AllowedDomains(stripPort(baseDomain)))
	}

	collector := colly.NewCollector(options...)
	collector.SetRequestTimeout(spiderTimeout)

	var (
		mu        sync.Mutex
		fetched   int
		perPage   = make(map[string]int)
		collected []LinkedContent
	)

	collector.OnRequest(func(r *colly.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fetched >= budget {
			r.Abort()
			return
		}
		fetched++
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			return
		}

		pageKey := e.Request.URL.String()
		mu.Lock()
		if perPage[pageKey] >= maxLinks {
			mu.Unlock()
			return
		}
		mu.Unlock()

		// Only an accepted visit consumes a slot: already-visited,
		// off-domain and max-depth links must not starve the cap.
		if err := e.Request.Visit(link); err != nil {
			return
		}

		mu.Lock()
		perPage[pageKey]++
		mu.Unlock()
	})

	collector.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			s.logger.Debug("spider: failed to parse followed page",
				zap.String("url", r.Request.URL.String()),
				zap.Error(err))
			return
		}

		relation := RelationLinked
		if r.Request.Depth > 1 {
			relation = RelationNested
		}

		content := LinkedContent{
			URL:            r.Request.URL.String(),
			Title:          strings.TrimSpace(doc.Find("title").First().Text()),
			ContentSnippet: truncateText(paragraphsText(doc.Find("p"), 2), linkedSnippetSize),
			Relation:       relation,
		}

		mu.Lock()
		collected = append(collected, content)
		mu.Unlock()
	})

	collector.OnError(func(r *colly.Response, err error) {
		// A failed link is omitted from the output; partial results are fine.
		s.logger.Debug("spider: fetch failed",
			zap.String("url", r.Request.URL.String()),
			zap.Error(err))
	})

	for i, link := range links {
		if i >= maxLinks {
			break
		}
		if err := collector.Visit(link); err != nil {
			s.logger.Debug("spider: failed to visit link",
				zap.String("url", link),
				zap.Error(err))
		}
	}

	return collected
}
