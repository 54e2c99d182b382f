package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// maxAttemptBudget caps the slice of the total timeout any one backend may
// consume, so a hung engine cannot exhaust the whole call.
const maxAttemptBudget = 15 * time.Second

// backend is one search engine attempt in the fallback order.
type backend struct {
	name   string
	search func(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]SearchResult, error)
}

// Orchestrator drives the ordered multi-engine attempt sequence. Backends
// run strictly sequentially: each attempt's relevance score decides whether
// the next one runs at all.
type Orchestrator struct {
	cfg      *Config
	governor *Governor
	renderer PageRenderer
	client   *BrowserClient
	cache    *Cache
	backends []backend
}

// NewOrchestrator wires the backend order: Bing and DuckDuckGo through the
// rendered browser, Startpage over direct HTTP.
func NewOrchestrator(cfg *Config, governor *Governor, renderer PageRenderer, client *BrowserClient, cache *Cache) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		governor: governor,
		renderer: renderer,
		client:   client,
		cache:    cache,
	}
	o.backends = []backend{
		{name: "bing", search: o.searchBing},
		{name: "duckduckgo", search: o.searchDDG},
		{name: "startpage", search: o.searchStartpage},
	}
	return o
}

// Search runs the fallback sequence for query and returns the best outcome.
// Ordinary backend failure never returns an error: the worst case is an
// empty outcome with Engine == EngineNone. Errors are reserved for systemic
// faults (rate limit, invalid input).
func (o *Orchestrator) Search(ctx context.Context, query string, numResults int, timeout time.Duration) (SearchOutcome, error) {
	query = NormalizeQuery(query)
	if query == "" {
		return SearchOutcome{}, fmt.Errorf("query is required")
	}
	if numResults <= 0 {
		numResults = 5
	}
	if timeout <= 0 {
		timeout = o.cfg.SearchTimeout
	}

	metrics.SearchRequests.Add(1)

	release, err := o.governor.Acquire(ctx)
	if err != nil {
		metrics.SearchRateLimited.Add(1)
		return SearchOutcome{}, err
	}
	defer release()

	cacheKey := CacheKey("search", query, fmt.Sprint(numResults))
	if out, ok := CacheLoadJSON[SearchOutcome](ctx, o.cache, cacheKey); ok {
		return out, nil
	}

	var out SearchOutcome
	_ = TrackOperation(ctx, "search:"+query, func(ctx context.Context) error {
		out = o.runBackends(ctx, query, numResults, timeout)
		return nil
	})
	if len(out.Results) > 0 {
		CacheStoreJSON(ctx, o.cache, cacheKey, out)
	}
	return out, nil
}

// runBackends executes the sequential attempt loop with relevance gating.
func (o *Orchestrator) runBackends(ctx context.Context, query string, numResults int, timeout time.Duration) SearchOutcome {
	attemptBudget := min(timeout/time.Duration(len(o.backends)), maxAttemptBudget)

	var best SearchOutcome
	var bestScore float64

	for i, b := range o.backends {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptBudget)
		results, err := b.search(attemptCtx, query, numResults, attemptBudget)
		cancel()

		if err != nil {
			slog.Warn("backend failed", slog.String("engine", b.name), slog.Any("error", err))
			if IsSessionDead(err) {
				slog.Warn("browser session died, flushing pool", slog.String("engine", b.name))
				o.renderer.CloseAll()
			}
			continue
		}
		if len(results) == 0 {
			slog.Debug("backend returned no results", slog.String("engine", b.name))
			continue
		}

		if !o.cfg.RelevanceCheck {
			return SearchOutcome{Results: results, Engine: b.name}
		}

		score := ScoreResults(query, results)
		slog.Debug("backend scored",
			slog.String("engine", b.name),
			slog.Int("count", len(results)),
			slog.Float64("score", score))

		if score > bestScore || best.Engine == "" {
			best = SearchOutcome{Results: results, Engine: b.name}
			bestScore = score
		}

		if o.cfg.ForceAllBackends {
			continue
		}
		if score >= o.cfg.RelevanceAccept {
			return SearchOutcome{Results: results, Engine: b.name}
		}
		// The primary backend is normally the most reliable, so its
		// results are held to the stricter bar; later backends may
		// return at the minimum.
		if i > 0 && score >= o.cfg.RelevanceMinimum {
			return SearchOutcome{Results: results, Engine: b.name}
		}
	}

	if len(best.Results) > 0 {
		// Best candidate below the floor still beats nothing.
		if bestScore < o.cfg.RelevanceMinimum {
			slog.Debug("returning best candidate below minimum relevance",
				slog.String("engine", best.Engine),
				slog.Float64("score", bestScore))
		}
		return best
	}
	return SearchOutcome{Results: []SearchResult{}, Engine: EngineNone}
}

func (o *Orchestrator) searchBing(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]SearchResult, error) {
	metrics.BingRequests.Add(1)
	u := fmt.Sprintf("https://www.bing.com/search?q=%s&count=%d", url.QueryEscape(query), maxResults)
	html, err := o.renderer.RenderPage(ctx, u, RenderOpts{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("bing render: %w", err)
	}
	return ParseBingHTML(html, maxResults)
}

func (o *Orchestrator) searchDDG(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]SearchResult, error) {
	metrics.DDGRequests.Add(1)
	u := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	html, err := o.renderer.RenderPage(ctx, u, RenderOpts{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("ddg render: %w", err)
	}
	return ParseDDGHTML(html, maxResults)
}

func (o *Orchestrator) searchStartpage(ctx context.Context, query string, maxResults int, _ time.Duration) ([]SearchResult, error) {
	return SearchStartpageDirect(ctx, o.client, query, maxResults)
}

// DedupByDomain limits results to maxPerDomain per domain.
func DedupByDomain(results []SearchResult, maxPerDomain int) []SearchResult {
	counts := make(map[string]int)
	var out []SearchResult
	for _, r := range results {
		u, err := url.Parse(r.URL)
		if err != nil {
			continue
		}
		domain := u.Hostname()
		if counts[domain] < maxPerDomain {
			out = append(out, r)
			counts[domain]++
		}
	}
	return out
}
