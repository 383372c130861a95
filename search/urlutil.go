package search

import (
	"net/url"
	"strings"
)

// ExtractDomain returns the lower-cased host of rawURL, including the port
// when present. A URL that cannot be parsed yields the empty string.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// ResolveRedirect unwraps DuckDuckGo's internal redirect form
// (/l/?uddg=<encoded-target>) to the real target URL. Anything that cannot
// be decoded is returned unchanged.
func ResolveRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}

	target := parsed.Query().Get("uddg")
	if target == "" {
		return href
	}
	return target
}
