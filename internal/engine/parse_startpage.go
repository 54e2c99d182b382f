package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ParseStartpageHTML extracts search results from a Startpage SERP.
func ParseStartpageHTML(html string, maxResults int) ([]SearchResult, error) {
	return parseResults(html, maxResults, startpageSelectors, startpageCleanURL)
}

// startpageCleanURL drops Startpage's own action links; organic results
// already carry direct destination URLs.
func startpageCleanURL(href string) string {
	if strings.Contains(href, "startpage.com/do/") {
		return ""
	}
	return href
}

// SearchStartpageDirect queries Startpage over direct HTTP using the
// browser TLS fingerprint. This is the only backend that never needs a
// rendered browser.
func SearchStartpageDirect(ctx context.Context, bc *BrowserClient, query string, maxResults int) ([]SearchResult, error) {
	metrics.StartpageRequests.Add(1)

	form := url.Values{
		"query":    {query},
		"cat":      {"web"},
		"language": {"english"},
	}

	headers := ChromeHeaders()
	headers["referer"] = "https://www.startpage.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"
	headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	data, err := RetryDo(ctx, func() ([]byte, error) {
		body, _, status, err := bc.Do(ctx, "POST", "https://www.startpage.com/sp/search", headers, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		if IsRetryableStatus(status) {
			return nil, fmt.Errorf("startpage status %d", status)
		}
		if status != 200 {
			return nil, Permanent(fmt.Errorf("startpage status %d", status))
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("startpage request: %w", err)
	}

	results, err := ParseStartpageHTML(string(data), maxResults)
	if err != nil {
		return nil, fmt.Errorf("startpage parse: %w", err)
	}

	slog.Debug("startpage direct results", slog.Int("count", len(results)), slog.String("query", query))
	return results, nil
}
