package engine

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// maxQueryRunes bounds normalized query length.
const maxQueryRunes = 400

// stopWords are function words dropped before relevance matching.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "by": true, "from": true, "as": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "what": true,
	"which": true, "who": true, "how": true, "when": true, "where": true,
	"why": true, "do": true, "does": true, "can": true, "will": true,
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	wordSplitRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeQuery trims and caps a search query.
func NormalizeQuery(query string) string {
	return strutil.TruncateWith(strings.TrimSpace(query), maxQueryRunes, "")
}

// ContentWords lowercases s, splits on non-alphanumerics and drops stop
// words and single characters.
func ContentWords(s string) []string {
	var words []string
	for _, w := range wordSplitRe.Split(strings.ToLower(s), -1) {
		if len(w) < 2 || stopWords[w] {
			continue
		}
		words = append(words, w)
	}
	return words
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ValidURL reports whether raw is an absolute http/https URL with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// AbsoluteURL restores protocol-relative URLs to https and rejects
// anything that is not absolute http/https.
func AbsoluteURL(raw string) string {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	if !ValidURL(raw) {
		return ""
	}
	return raw
}

// IsPDFURL reports whether the URL path points at a PDF resource.
func IsPDFURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(raw), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
