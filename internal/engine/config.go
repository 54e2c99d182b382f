package engine

import (
	"time"
)

// Config holds all engine configuration, built once in main and passed by
// pointer into the Orchestrator, Pool and Extractor constructors. No
// package-level config state.
type Config struct {
	// Content extraction
	MaxContentLength     int           // default cap on extracted text (0 = unlimited)
	FetchTimeout         time.Duration // per-page fetch budget
	FastPathFailureLimit int           // direct-HTTP failures per host before preferring the rendered path

	// Search
	SearchTimeout    time.Duration // whole-search budget, sliced across backends
	RelevanceCheck   bool          // score results and gate backend fallthrough
	RelevanceAccept  float64       // short-circuit threshold, any backend
	RelevanceMinimum float64       // acceptance floor for non-primary backends
	ForceAllBackends bool          // try every backend regardless of score (eval mode)

	// Render pool
	Headless        bool
	BrowserFamilies []string // enabled engine families, first is the default
	MaxBrowsers     int      // pool size ceiling

	// Governor
	RequestsPerMinute int
	MaxConcurrent     int

	// Cache
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	RedisURL             string // empty disables the L2 tier
}

// DefaultConfig returns the documented defaults. main overrides from env.
func DefaultConfig() Config {
	return Config{
		MaxContentLength:     10000,
		FetchTimeout:         15 * time.Second,
		FastPathFailureLimit: 3,
		SearchTimeout:        30 * time.Second,
		RelevanceCheck:       true,
		RelevanceAccept:      0.8,
		RelevanceMinimum:     0.5,
		Headless:             true,
		BrowserFamilies:      []string{FamilyChromium},
		MaxBrowsers:          2,
		RequestsPerMinute:    30,
		MaxConcurrent:        5,
		CacheTTL:             15 * time.Minute,
		CacheMaxEntries:      1000,
		CacheCleanupInterval: 5 * time.Minute,
	}
}
