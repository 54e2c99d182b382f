package engine

import (
	"net/url"
	"strings"
)

// ParseDDGHTML extracts search results from a DuckDuckGo HTML-endpoint SERP.
func ParseDDGHTML(html string, maxResults int) ([]SearchResult, error) {
	return parseResults(html, maxResults, ddgSelectors, ddgUnwrapURL)
}

// ddgUnwrapURL extracts the actual URL from DDG redirect wrappers.
// DDG HTML wraps links as: //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
func ddgUnwrapURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	return href
}
