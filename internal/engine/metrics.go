package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests    atomic.Int64
	SearchRateLimited atomic.Int64
	BingRequests      atomic.Int64
	DDGRequests       atomic.Int64
	StartpageRequests atomic.Int64
	RenderRequests    atomic.Int64
	RenderErrors      atomic.Int64
	FetchRequests     atomic.Int64
	FetchErrors       atomic.Int64
	FastPathBlocked   atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"search_rate_limited": metrics.SearchRateLimited.Load(),
		"bing_requests":       metrics.BingRequests.Load(),
		"ddg_requests":        metrics.DDGRequests.Load(),
		"startpage_requests":  metrics.StartpageRequests.Load(),
		"render_requests":     metrics.RenderRequests.Load(),
		"render_errors":       metrics.RenderErrors.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"fast_path_blocked":   metrics.FastPathBlocked.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "search_rate_limited",
		"bing_requests", "ddg_requests", "startpage_requests",
		"render_requests", "render_errors",
		"fetch_requests", "fetch_errors", "fast_path_blocked",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
