package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	// contentFloor is the minimum length for a candidate block to win
	// main-content selection.
	contentFloor = 200
	// paragraphFloor is the lower bar for the paragraph-collection fallback.
	paragraphFloor = 50
	// lowQualityFloor marks a fast-path response as an empty shell.
	lowQualityFloor = 200
	// previewLength bounds SearchResult.ContentPreview.
	previewLength = 300
)

// botChallengeMarkers identify anti-bot interstitials in fast-path bodies.
var botChallengeMarkers = []string{
	"enable javascript",
	"javascript is required",
	"javascript is disabled",
	"please verify you are a human",
	"are you a robot",
	"captcha",
	"unusual traffic",
	"access to this page has been denied",
	"checking your browser",
}

// jsRenderedHosts always go straight to the rendered path: their fast-path
// response is a script shell with no content.
var jsRenderedHosts = []string{
	"twitter.com", "x.com", "instagram.com", "facebook.com",
	"linkedin.com", "threads.net", "tiktok.com",
}

// boilerplatePhrases are stripped from extracted text, and paragraphs
// leading with them are dropped by the fallback collector.
var boilerplatePhrases = []string{
	"all rights reserved",
	"privacy policy",
	"terms of service",
	"terms and conditions",
	"cookie policy",
	"we use cookies",
	"subscribe to our newsletter",
}

var (
	imageResidueRe = regexp.MustCompile(`data:image/[a-zA-Z+]+;base64,[A-Za-z0-9+/=]+`)
	imageURLLineRe = regexp.MustCompile(`(?m)^\s*https?://\S+\.(?:png|jpe?g|gif|webp|svg)\S*\s*$`)
	spacesRe       = regexp.MustCompile(`[ \t]+`)
	newlinesRe     = regexp.MustCompile(`\n{3,}`)
	blankLineRe    = regexp.MustCompile(`(?m)^[ \t]+$`)
)

// Extractor fetches single pages and fills in content across result
// batches. Fast path is direct HTTP with a browser TLS fingerprint; slow
// path renders through the pool.
type Extractor struct {
	cfg      *Config
	client   *BrowserClient
	renderer PageRenderer
	cache    *Cache

	mu           sync.Mutex
	hostFailures map[string]int
}

// NewExtractor builds an extractor over the shared client, renderer and cache.
func NewExtractor(cfg *Config, client *BrowserClient, renderer PageRenderer, cache *Cache) *Extractor {
	return &Extractor{
		cfg:          cfg,
		client:       client,
		renderer:     renderer,
		cache:        cache,
		hostFailures: make(map[string]int),
	}
}

type pageContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractContent fetches url and returns its title and cleaned main text,
// truncated to maxLen characters (0 = unlimited).
func (e *Extractor) ExtractContent(ctx context.Context, rawURL string, timeout time.Duration, maxLen int) (title, content string, err error) {
	if !ValidURL(rawURL) {
		return "", "", fmt.Errorf("invalid URL: %q (must be absolute http/https)", rawURL)
	}
	if timeout <= 0 {
		timeout = e.cfg.FetchTimeout
	}

	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	cacheKey := CacheKey("page", rawURL)
	if page, ok := CacheLoadJSON[pageContent](ctx, e.cache, cacheKey); ok {
		return page.Title, truncateContent(page.Content, maxLen), nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	html, err := e.fetchPage(ctx, rawURL, timeout)
	if err != nil {
		return "", "", err
	}

	title, content = extractMainContent(html, rawURL)
	if content == "" {
		return title, "", fmt.Errorf("no readable content at %s", rawURL)
	}

	CacheStoreJSON(ctx, e.cache, cacheKey, pageContent{Title: title, Content: content})
	return title, truncateContent(content, maxLen), nil
}

// fetchPage returns raw markup via the fast path, promoting to the rendered
// path on failure, low quality, or for known JS-rendered hosts.
func (e *Extractor) fetchPage(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	if e.preferRendered(rawURL) {
		return e.fetchRendered(ctx, rawURL, timeout)
	}

	html, fastErr := e.fetchFast(ctx, rawURL)
	if fastErr == nil {
		return html, nil
	}
	slog.Debug("fast path failed, rendering", slog.String("url", rawURL), slog.Any("error", fastErr))
	e.recordFastFailure(rawURL)

	html, renderErr := e.fetchRendered(ctx, rawURL, timeout)
	if renderErr != nil {
		return "", fmt.Errorf("fetch failed (direct: %v; rendered: %w)", fastErr, renderErr)
	}
	return html, nil
}

// fetchFast is the direct-HTTP tier. A 403 gets one immediate retry with
// the alternate header set before giving up.
func (e *Extractor) fetchFast(ctx context.Context, rawURL string) (string, error) {
	body, _, status, err := e.client.Do(ctx, "GET", rawURL, ChromeHeaders(), nil)
	if err != nil {
		return "", err
	}
	if status == 403 {
		body, _, status, err = e.client.Do(ctx, "GET", rawURL, FirefoxHeaders(), nil)
		if err != nil {
			return "", err
		}
	}
	if status != 200 {
		return "", fmt.Errorf("status %d", status)
	}

	html := string(body)
	if reason := lowQualityReason(html); reason != "" {
		metrics.FastPathBlocked.Add(1)
		return "", fmt.Errorf("low-quality response: %s", reason)
	}
	return html, nil
}

func (e *Extractor) fetchRendered(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	metrics.RenderRequests.Add(1)
	html, err := e.renderer.RenderPage(ctx, rawURL, RenderOpts{Timeout: timeout})
	if err != nil {
		metrics.RenderErrors.Add(1)
		return "", err
	}
	return html, nil
}

// preferRendered skips the fast path for hosts that never serve content
// without scripts, or that have burned through the failure allowance.
func (e *Extractor) preferRendered(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, h := range jsRenderedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hostFailures[host] >= e.cfg.FastPathFailureLimit
}

func (e *Extractor) recordFastFailure(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	e.mu.Lock()
	e.hostFailures[host]++
	e.mu.Unlock()
}

// lowQualityReason classifies a fast-path body as a bot challenge or empty
// shell. Empty string means the body looks usable.
func lowQualityReason(html string) string {
	if len(html) < lowQualityFloor {
		return "implausibly short"
	}
	lower := strings.ToLower(html)
	for _, marker := range botChallengeMarkers {
		if strings.Contains(lower, marker) {
			return "bot challenge: " + marker
		}
	}
	return ""
}

// extractMainContent turns raw markup into a page title and cleaned main
// text. Readability runs first; the selector pipeline covers what it
// cannot.
func extractMainContent(html, rawURL string) (title, content string) {
	pageURL, _ := url.Parse(rawURL)

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err == nil {
		title = article.Title
		md, convErr := htmltomarkdown.ConvertString(article.Content)
		if convErr != nil {
			md = article.TextContent
		}
		if text := CleanText(md); len(text) >= contentFloor {
			return title, text
		}
	}

	selTitle, selContent := extractWithSelectors(html)
	if title == "" {
		title = selTitle
	}
	if selContent != "" {
		return title, CleanText(selContent)
	}
	// Keep whatever readability managed, even below the floor.
	if err == nil {
		return title, CleanText(article.TextContent)
	}
	return title, ""
}

// extractWithSelectors is the goquery pipeline: strip non-content markup,
// then pick the longest block matching a content-area selector, falling
// back to paragraph collection and finally the whole visible text.
func extractWithSelectors(html string) (title, content string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
			title = strings.TrimSpace(og)
		}
	}

	doc.Find(strings.Join(strippedSelectors, ", ")).Remove()
	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		attrs := strings.ToLower(class + " " + id)
		for _, frag := range junkClassFragments {
			if strings.Contains(attrs, frag) {
				s.Remove()
				return
			}
		}
	})

	// Longest matching content block above the floor; a short match on a
	// high-priority selector must not beat the real article body.
	var longest string
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > len(longest) {
				longest = text
			}
		})
	}
	if len(longest) >= contentFloor {
		return title, longest
	}

	// Paragraph fallback: individual <p> blocks that clear the lower floor
	// and don't open with boilerplate.
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) <= paragraphFloor || looksLikeBoilerplate(text) {
			return
		}
		paragraphs = append(paragraphs, text)
	})
	if len(paragraphs) > 0 {
		return title, strings.Join(paragraphs, "\n\n")
	}

	// Last resort: everything visible.
	return title, strings.TrimSpace(doc.Find("body").Text())
}

// looksLikeBoilerplate reports whether a paragraph opens with a legal or
// site-chrome preamble.
func looksLikeBoilerplate(text string) bool {
	head := strings.ToLower(Truncate(text, 120))
	if strings.HasPrefix(head, "copyright") || strings.HasPrefix(head, "©") {
		return true
	}
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(head, phrase) {
			return true
		}
	}
	return false
}

// CleanText normalizes extracted text: strips image residue and residual
// boilerplate phrases, collapses horizontal whitespace and excess blank
// lines. Idempotent: cleaning cleaned text is a no-op.
func CleanText(s string) string {
	s = imageResidueRe.ReplaceAllString(s, "")
	s = imageURLLineRe.ReplaceAllString(s, "")
	s = stripBoilerplate(s)
	s = spacesRe.ReplaceAllString(s, " ")
	s = blankLineRe.ReplaceAllString(s, "")
	s = newlinesRe.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripBoilerplate removes boilerplate phrases until a fixpoint. Deleting
// one occurrence can splice neighboring words into a fresh occurrence
// ("privacy privacy policy policy"), so a single pass is not enough: each
// round collapses spacing first, then removes, and repeats until the text
// stops changing.
func stripBoilerplate(s string) string {
	for {
		out := spacesRe.ReplaceAllString(s, " ")
		for _, phrase := range boilerplatePhrases {
			out = strings.ReplaceAll(out, phrase, "")
			out = strings.ReplaceAll(out, sentenceCase(phrase), "")
			out = strings.ReplaceAll(out, titleCasePhrase(phrase), "")
		}
		if out == s {
			return out
		}
		s = out
	}
}

func sentenceCase(phrase string) string {
	return strings.ToUpper(phrase[:1]) + phrase[1:]
}

// titleCasePhrase uppercases the first letter of each word, matching how
// boilerplate usually appears in page footers.
func titleCasePhrase(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// truncateContent applies the caller's length cap. Zero means unlimited.
func truncateContent(content string, maxLen int) string {
	if maxLen <= 0 || len(content) <= maxLen {
		return content
	}
	return content[:maxLen]
}
