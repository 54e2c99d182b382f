package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Engine families the pool can host. Only chromium-class browsers are
// launchable through chromedp; the family key keeps the pool ready for
// additional classes.
const FamilyChromium = "chromium"

// poolEntry is one long-lived browser process with its contexts.
type poolEntry struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	launchedAt    time.Time
}

// Pool manages reusable browser processes keyed by engine family. It is
// the only cross-call shared mutable state in the engine; callers go
// through RenderPage and never hold a process handle.
type Pool struct {
	mu      sync.Mutex
	cfg     *Config
	entries map[string]*poolEntry

	// launch is swappable for tests.
	launch func(family string, extraFlags ...chromedp.ExecAllocatorOption) (*poolEntry, error)
}

// NewPool creates an empty pool. Browsers launch lazily on first use.
func NewPool(cfg *Config) *Pool {
	p := &Pool{
		cfg:     cfg,
		entries: make(map[string]*poolEntry),
	}
	p.launch = p.launchBrowser
	return p
}

// defaultFamily is the first configured engine family.
func (p *Pool) defaultFamily() string {
	if len(p.cfg.BrowserFamilies) > 0 && p.cfg.BrowserFamilies[0] != "" {
		return p.cfg.BrowserFamilies[0]
	}
	return FamilyChromium
}

// launchBrowser starts a headless browser process for family.
func (p *Pool) launchBrowser(family string, extraFlags ...chromedp.ExecAllocatorOption) (*poolEntry, error) {
	opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
	copy(opts, chromedp.DefaultExecAllocatorOptions[:])
	opts = append(opts,
		chromedp.Flag("headless", p.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 720),
	)
	opts = append(opts, extraFlags...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the process by running an empty action, bounded so a broken
	// chrome install cannot hang the caller.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(browserCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-time.After(30 * time.Second):
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: timed out")
	}

	slog.Info("browser launched", slog.String("family", family), slog.Bool("headless", p.cfg.Headless))
	return &poolEntry{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		launchedAt:    time.Now(),
	}, nil
}

// acquire returns a healthy entry for family, launching or relaunching as
// needed. The entry stays owned by the pool.
func (p *Pool) acquire(family string) (*poolEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.entries[family]; ok {
		if p.probe(entry) {
			return entry, nil
		}
		slog.Warn("browser failed health check, relaunching", slog.String("family", family))
		closeEntry(entry)
		delete(p.entries, family)
	}

	p.evictIfFull()

	entry, err := p.launch(family)
	if err != nil {
		return nil, err
	}
	p.entries[family] = entry
	return entry, nil
}

// probe confirms the browser process is still connected by opening and
// closing a throwaway tab.
func (p *Pool) probe(entry *poolEntry) bool {
	if entry.browserCtx.Err() != nil {
		return false
	}
	tabCtx, tabCancel := chromedp.NewContext(entry.browserCtx)
	defer tabCancel()
	probeCtx, cancel := context.WithTimeout(tabCtx, 5*time.Second)
	defer cancel()
	return chromedp.Run(probeCtx) == nil
}

// evictIfFull closes the oldest entry when the pool is at its ceiling.
// Caller must hold mu.
func (p *Pool) evictIfFull() {
	maxPool := p.cfg.MaxBrowsers
	if maxPool <= 0 || len(p.entries) < maxPool {
		return
	}
	var oldestKey string
	var oldestAt time.Time
	for k, e := range p.entries {
		if oldestKey == "" || e.launchedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.launchedAt
		}
	}
	if oldestKey != "" {
		slog.Debug("evicting oldest browser", slog.String("family", oldestKey))
		closeEntry(p.entries[oldestKey])
		delete(p.entries, oldestKey)
	}
}

// CloseAll tears down every browser. Individual close failures are
// tolerated; the map is always cleared so no handle dangles.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for family, entry := range p.entries {
		closeEntry(entry)
		slog.Debug("browser closed", slog.String("family", family))
	}
	p.entries = make(map[string]*poolEntry)
}

func closeEntry(entry *poolEntry) {
	defer func() { _ = recover() }()
	if entry.browserCancel != nil {
		entry.browserCancel()
	}
	if entry.allocCancel != nil {
		entry.allocCancel()
	}
}

// IsSessionDead reports whether err looks like the underlying browser
// session disconnecting rather than an ordinary navigation failure. Bare
// context cancellation is not a marker: a caller cancelling its own
// context must not get a healthy pool flushed.
func IsSessionDead(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"browser session lost",
		"session closed",
		"target closed",
		"browser closed",
		"websocket",
		"connection refused",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
