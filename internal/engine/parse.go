package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// firstMatch returns the first selection with any match across the ordered
// selector list.
func firstMatch(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// parseResults extracts up to maxResults SearchResult records from SERP
// markup using an ordered selector chain. cleanURL unwraps engine-specific
// redirect wrappers; results whose URL fails http/https validation are
// dropped.
func parseResults(html string, maxResults int, chain selectorChain, cleanURL func(string) string) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	blocks := firstMatch(doc.Selection, chain.container)
	if blocks == nil {
		return nil, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var results []SearchResult

	blocks.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}

		link := firstMatch(s, chain.link)
		if link == nil {
			return true
		}
		link = link.First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return true
		}

		href = AbsoluteURL(cleanURL(href))
		if href == "" {
			return true
		}

		description := NoDescription
		if snippet := firstMatch(s, chain.snippet); snippet != nil {
			if text := strings.TrimSpace(snippet.First().Text()); text != "" {
				description = text
			}
		}

		results = append(results, SearchResult{
			Title:       title,
			URL:         href,
			Description: description,
			Timestamp:   now,
		})
		return true
	})

	return results, nil
}
