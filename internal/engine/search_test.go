package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRenderer satisfies PageRenderer without a browser.
type stubRenderer struct {
	html    string
	err     error
	calls   int
	flushed int
}

func (s *stubRenderer) RenderPage(_ context.Context, _ string, _ RenderOpts) (string, error) {
	s.calls++
	return s.html, s.err
}

func (s *stubRenderer) CloseAll() { s.flushed++ }

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 1000
	cfg.MaxConcurrent = 10
	return &cfg
}

func testOrchestrator(cfg *Config, r PageRenderer) *Orchestrator {
	return NewOrchestrator(cfg, NewGovernor(cfg.RequestsPerMinute, cfg.MaxConcurrent), r, nil, nil)
}

// fixedBackend returns canned results and counts invocations.
type fixedBackend struct {
	results []SearchResult
	err     error
	calls   int
}

func (f *fixedBackend) search(_ context.Context, _ string, _ int, _ time.Duration) ([]SearchResult, error) {
	f.calls++
	return f.results, f.err
}

func matching(query string, n int) []SearchResult {
	results := make([]SearchResult, n)
	for i := range results {
		results[i] = SearchResult{
			Title:       query + " result",
			URL:         "https://example.com/page",
			Description: "all about " + query,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}
	}
	return results
}

func TestSearchShortCircuit(t *testing.T) {
	cfg := testConfig()
	o := testOrchestrator(cfg, &stubRenderer{})

	primary := &fixedBackend{results: matching("javascript tutorial", 5)}
	secondary := &fixedBackend{}
	tertiary := &fixedBackend{}
	o.backends = []backend{
		{name: "bing", search: primary.search},
		{name: "duckduckgo", search: secondary.search},
		{name: "startpage", search: tertiary.search},
	}

	out, err := o.Search(context.Background(), "javascript tutorial", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "bing", out.Engine)
	assert.Len(t, out.Results, 5)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls, "high-confidence primary must short-circuit")
	assert.Zero(t, tertiary.calls)
}

func TestSearchFallsThroughToTertiary(t *testing.T) {
	cfg := testConfig()
	o := testOrchestrator(cfg, &stubRenderer{})

	primary := &fixedBackend{}
	secondary := &fixedBackend{}
	tertiary := &fixedBackend{results: matching("go concurrency patterns", 3)}
	o.backends = []backend{
		{name: "bing", search: primary.search},
		{name: "duckduckgo", search: secondary.search},
		{name: "startpage", search: tertiary.search},
	}

	out, err := o.Search(context.Background(), "go concurrency patterns", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "startpage", out.Engine)
	assert.Len(t, out.Results, 3)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestSearchAllBackendsFail(t *testing.T) {
	cfg := testConfig()
	o := testOrchestrator(cfg, &stubRenderer{})

	failing := &fixedBackend{err: errors.New("network unreachable")}
	o.backends = []backend{
		{name: "bing", search: failing.search},
		{name: "duckduckgo", search: failing.search},
		{name: "startpage", search: failing.search},
	}

	out, err := o.Search(context.Background(), "anything at all", 5, time.Minute)
	require.NoError(t, err, "ordinary backend failure must not surface as an error")
	assert.Equal(t, EngineNone, out.Engine)
	assert.Empty(t, out.Results)
}

func TestSearchBestCandidateFallback(t *testing.T) {
	cfg := testConfig()
	o := testOrchestrator(cfg, &stubRenderer{})

	// Results that only partially match: below both thresholds.
	weak := []SearchResult{{
		Title:       "unrelated page",
		URL:         "https://example.com/other",
		Description: "nothing relevant",
	}}
	primary := &fixedBackend{results: weak}
	secondary := &fixedBackend{}
	tertiary := &fixedBackend{}
	o.backends = []backend{
		{name: "bing", search: primary.search},
		{name: "duckduckgo", search: secondary.search},
		{name: "startpage", search: tertiary.search},
	}

	out, err := o.Search(context.Background(), "quantum chromodynamics lattice", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "bing", out.Engine, "non-empty best candidate beats empty outcome")
	assert.Len(t, out.Results, 1)
	assert.Equal(t, 1, secondary.calls, "weak primary must not short-circuit")
	assert.Equal(t, 1, tertiary.calls)
}

func TestSearchPrimaryHeldToStricterBar(t *testing.T) {
	cfg := testConfig()
	o := testOrchestrator(cfg, &stubRenderer{})

	// Half coverage: score 0.5, at the minimum but below accept.
	half := []SearchResult{{
		Title:       "rust language overview",
		URL:         "https://example.com/rust",
		Description: "about rust",
	}}
	primary := &fixedBackend{results: half}
	secondary := &fixedBackend{results: half}
	o.backends = []backend{
		{name: "bing", search: primary.search},
		{name: "duckduckgo", search: secondary.search},
	}

	out, err := o.Search(context.Background(), "rust embedded", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, secondary.calls, "primary at minimum threshold must still fall through")
	assert.Equal(t, "duckduckgo", out.Engine, "secondary may return at the minimum threshold")
}

func TestSearchForceAllBackends(t *testing.T) {
	cfg := testConfig()
	cfg.ForceAllBackends = true
	o := testOrchestrator(cfg, &stubRenderer{})

	primary := &fixedBackend{results: matching("javascript tutorial", 5)}
	secondary := &fixedBackend{results: matching("javascript tutorial", 2)}
	o.backends = []backend{
		{name: "bing", search: primary.search},
		{name: "duckduckgo", search: secondary.search},
	}

	_, err := o.Search(context.Background(), "javascript tutorial", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls, "force flag must disable short-circuit")
}

func TestSearchRelevanceDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RelevanceCheck = false
	o := testOrchestrator(cfg, &stubRenderer{})

	primary := &fixedBackend{results: matching("completely different topic", 2)}
	secondary := &fixedBackend{}
	o.backends = []backend{
		{name: "bing", search: primary.search},
		{name: "duckduckgo", search: secondary.search},
	}

	out, err := o.Search(context.Background(), "unrelated query terms", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "bing", out.Engine)
	assert.Zero(t, secondary.calls)
	assert.Len(t, out.Results, 2)
}

func TestSearchFlushesPoolOnDeadSession(t *testing.T) {
	cfg := testConfig()
	r := &stubRenderer{}
	o := testOrchestrator(cfg, r)

	dead := &fixedBackend{err: errors.New("render: target closed")}
	good := &fixedBackend{results: matching("golang generics", 3)}
	o.backends = []backend{
		{name: "bing", search: dead.search},
		{name: "duckduckgo", search: good.search},
	}

	out, err := o.Search(context.Background(), "golang generics", 3, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, r.flushed, "dead session must flush the pool")
	assert.Equal(t, "duckduckgo", out.Engine)
}

func TestSearchKeepsPoolOnCancelledAttempt(t *testing.T) {
	cfg := testConfig()
	r := &stubRenderer{}
	o := testOrchestrator(cfg, r)

	cancelled := &fixedBackend{err: errors.New("bing render: context canceled")}
	good := &fixedBackend{results: matching("golang generics", 2)}
	o.backends = []backend{
		{name: "bing", search: cancelled.search},
		{name: "duckduckgo", search: good.search},
	}

	out, err := o.Search(context.Background(), "golang generics", 2, time.Minute)
	require.NoError(t, err)
	assert.Zero(t, r.flushed, "plain cancellation must not flush a healthy pool")
	assert.Equal(t, "duckduckgo", out.Engine)
}

func TestSearchInvalidInput(t *testing.T) {
	cfg := testConfig()
	o := testOrchestrator(cfg, &stubRenderer{})

	_, err := o.Search(context.Background(), "   ", 5, time.Minute)
	assert.Error(t, err, "blank query is rejected before any network work")
}

func TestSearchRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RequestsPerMinute = 1
	o := NewOrchestrator(cfg, NewGovernor(1, 10), &stubRenderer{}, nil, nil)
	o.backends = []backend{{name: "bing", search: (&fixedBackend{results: matching("x y", 1)}).search}}

	_, err := o.Search(context.Background(), "first query here", 1, time.Minute)
	require.NoError(t, err)

	_, err = o.Search(context.Background(), "second query here", 1, time.Minute)
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Greater(t, rl.RetryAfter, time.Duration(0))
}

func TestDedupByDomain(t *testing.T) {
	results := []SearchResult{
		{Title: "a1", URL: "https://example.com/1"},
		{Title: "a2", URL: "https://example.com/2"},
		{Title: "a3", URL: "https://example.com/3"},
		{Title: "b1", URL: "https://other.com/1"},
	}

	t.Run("limits per domain", func(t *testing.T) {
		got := DedupByDomain(results, 2)
		if len(got) != 3 {
			t.Errorf("expected 3 results, got %d", len(got))
		}
	})

	t.Run("max 1 per domain", func(t *testing.T) {
		got := DedupByDomain(results, 1)
		if len(got) != 2 {
			t.Errorf("expected 2 results, got %d", len(got))
		}
	})
}
