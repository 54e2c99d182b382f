package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// RenderOpts configures one rendered page fetch.
type RenderOpts struct {
	Family  string // engine family, defaults to chromium
	Timeout time.Duration
}

// PageRenderer is the capability the content extractor depends on. The
// real implementation is the chromedp Pool; tests substitute a stub.
type PageRenderer interface {
	RenderPage(ctx context.Context, url string, opts RenderOpts) (string, error)
	CloseAll()
}

// stealthScript masks the most common automation markers before any page
// script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
window.chrome = window.chrome || {runtime: {}};
`

// blockedPatterns are sub-resource loads skipped for speed. The rendered
// markup is all we read, so images, fonts and media are dead weight.
var blockedPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3", "*.avi",
}

var renderLocales = []string{"en-US", "en-GB", "en-CA"}

var renderTimezones = []string{
	"America/New_York", "America/Chicago", "America/Los_Angeles",
	"Europe/London", "Europe/Berlin",
}

// RenderPage fetches url through a pooled browser and returns the rendered
// markup. Each call runs in a fresh isolated tab (no shared cookies or
// storage with concurrent fetches) that is always closed on exit. A
// transport-level HTTP/2 failure triggers one retry in a throwaway browser
// forced down to HTTP/1.1.
func (p *Pool) RenderPage(ctx context.Context, url string, opts RenderOpts) (string, error) {
	if opts.Family == "" {
		opts.Family = p.defaultFamily()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = p.cfg.FetchTimeout
	}

	entry, err := p.acquire(opts.Family)
	if err != nil {
		return "", err
	}

	html, err := renderInBrowser(ctx, entry.browserCtx, url, opts.Timeout)
	if err != nil && isProtocolError(err) {
		slog.Debug("render protocol error, retrying on http/1.1",
			slog.String("url", url), slog.Any("error", err))
		return p.renderHTTP1(ctx, url, opts)
	}
	return html, err
}

// renderHTTP1 runs one fetch in a short-lived browser with HTTP/2 disabled.
func (p *Pool) renderHTTP1(ctx context.Context, url string, opts RenderOpts) (string, error) {
	entry, err := p.launch(opts.Family+"-http1", chromedp.Flag("disable-http2", true))
	if err != nil {
		return "", fmt.Errorf("http1 fallback launch: %w", err)
	}
	defer closeEntry(entry)
	return renderInBrowser(ctx, entry.browserCtx, url, opts.Timeout)
}

// renderInBrowser opens an isolated tab, applies fingerprint randomization
// and stealth shims, navigates, and reads the rendered markup.
func renderInBrowser(ctx context.Context, browserCtx context.Context, url string, timeout time.Duration) (string, error) {
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	width := int64(1200 + rand.Intn(400))
	height := int64(700 + rand.Intn(300))
	locale := renderLocales[rand.Intn(len(renderLocales))]
	tz := renderTimezones[rand.Intn(len(renderTimezones))]
	pause := time.Duration(500+rand.Intn(1000)) * time.Millisecond

	var html string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetBlockedURLs(blockedPatterns),
		chromedp.EmulateViewport(width, height),
		emulation.SetLocaleOverride().WithLocale(locale),
		emulation.SetTimezoneOverride(tz),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(url),
		// Content loaded, not full resource wait.
		chromedp.WaitReady("body"),
		chromedp.Sleep(pause),
		chromedp.ActionFunc(func(ctx context.Context) error {
			x := float64(100 + rand.Intn(400))
			y := float64(100 + rand.Intn(300))
			return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		// The browser context dying means the process is gone; mark it so
		// the caller can flush the pool. A plain run timeout is just the
		// tab expiring.
		if browserCtx.Err() != nil {
			return "", fmt.Errorf("browser session lost: %w", err)
		}
		if runCtx.Err() != nil {
			return "", fmt.Errorf("render timeout after %s: %w", timeout, err)
		}
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

// isProtocolError matches transport-level failures worth retrying on
// HTTP/1.1.
func isProtocolError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ERR_HTTP2") ||
		strings.Contains(msg, "ERR_QUIC") ||
		strings.Contains(msg, "ERR_SPDY") ||
		strings.Contains(msg, "PROTOCOL_ERROR")
}
