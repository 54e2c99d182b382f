// go_websearch — multi-engine web search & content extraction MCP server.
//
// Exposes three MCP tools: full-web-search, get-web-search-summaries,
// get-single-web-page-content. Searches fall through Bing (rendered),
// DuckDuckGo (rendered) and Startpage (direct HTTP) until a result set
// clears the relevance bar; page content is extracted over a fast direct
// path with a rendered-browser fallback.
package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_websearch/internal/engine"
	"github.com/anatolykoptev/go_websearch/internal/webserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	cfg := loadConfig()

	slog.Info("starting go_websearch",
		slog.String("port", mcpPort),
		slog.Bool("headless", cfg.Headless),
	)

	client, err := engine.NewBrowserClient(int(cfg.FetchTimeout / time.Second))
	if err != nil {
		slog.Error("browser client init failed", slog.Any("error", err))
		return
	}

	pool := engine.NewPool(&cfg)
	defer pool.CloseAll()

	cache := engine.NewCache(&cfg)
	governor := engine.NewGovernor(cfg.RequestsPerMinute, cfg.MaxConcurrent)
	orch := engine.NewOrchestrator(&cfg, governor, pool, client, cache)
	extractor := engine.NewExtractor(&cfg, client, pool, cache)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_websearch",
		Version: version,
	}, nil)

	webserver.RegisterTools(server, webserver.Deps{
		Cfg:       &cfg,
		Orch:      orch,
		Extractor: extractor,
	})
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_websearch",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	cfg := engine.DefaultConfig()

	cfg.MaxContentLength = env.Int("MAX_CONTENT_LENGTH", cfg.MaxContentLength)
	cfg.SearchTimeout = env.Duration("SEARCH_TIMEOUT", cfg.SearchTimeout)
	cfg.FetchTimeout = env.Duration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.FastPathFailureLimit = env.Int("FAST_PATH_FAILURE_LIMIT", cfg.FastPathFailureLimit)
	cfg.Headless = envBool("BROWSER_HEADLESS", cfg.Headless)
	cfg.BrowserFamilies = env.List("BROWSER_FAMILIES", strings.Join(cfg.BrowserFamilies, ","))
	cfg.MaxBrowsers = env.Int("MAX_BROWSERS", cfg.MaxBrowsers)
	cfg.RequestsPerMinute = env.Int("REQUESTS_PER_MINUTE", cfg.RequestsPerMinute)
	cfg.MaxConcurrent = env.Int("MAX_CONCURRENT", cfg.MaxConcurrent)
	cfg.RelevanceCheck = envBool("RELEVANCE_CHECK", cfg.RelevanceCheck)
	cfg.RelevanceAccept = env.Float("RELEVANCE_ACCEPT", cfg.RelevanceAccept)
	cfg.RelevanceMinimum = env.Float("RELEVANCE_MINIMUM", cfg.RelevanceMinimum)
	cfg.ForceAllBackends = envBool("FORCE_ALL_BACKENDS", cfg.ForceAllBackends)
	cfg.CacheTTL = env.Duration("CACHE_TTL", cfg.CacheTTL)
	cfg.CacheMaxEntries = env.Int("CACHE_MAX_ENTRIES", cfg.CacheMaxEntries)
	cfg.CacheCleanupInterval = env.Duration("CACHE_CLEANUP_INTERVAL", cfg.CacheCleanupInterval)
	cfg.RedisURL = env.Str("REDIS_URL", "")

	return cfg
}

func envBool(key string, def bool) bool {
	s := env.Str(key, "")
	if s == "" {
		return def
	}
	return s == "1" || strings.EqualFold(s, "true") || strings.EqualFold(s, "yes")
}
