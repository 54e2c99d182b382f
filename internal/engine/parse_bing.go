package engine

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// ParseBingHTML extracts search results from a Bing SERP.
func ParseBingHTML(html string, maxResults int) ([]SearchResult, error) {
	return parseResults(html, maxResults, bingSelectors, bingUnwrapURL)
}

// bingUnwrapURL decodes Bing's click-tracking wrapper. Bing links results
// as /ck/a?...&u=a1<base64url-of-destination>&ntb=1; the destination is
// prefixed "a1" and encoded without padding.
func bingUnwrapURL(href string) string {
	if !strings.Contains(href, "bing.com/ck/") && !strings.Contains(href, "/ck/a") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	wrapped := u.Query().Get("u")
	if wrapped == "" {
		return href
	}
	wrapped = strings.TrimPrefix(wrapped, "a1")
	decoded, err := base64.RawURLEncoding.DecodeString(wrapped)
	if err != nil {
		// Some wrappers arrive padded.
		decoded, err = base64.URLEncoding.DecodeString(wrapped)
		if err != nil {
			return href
		}
	}
	target := string(decoded)
	if !strings.HasPrefix(target, "http") {
		return href
	}
	return target
}
