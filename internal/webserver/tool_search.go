package webserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_websearch/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultLimit = 5
	maxLimit     = 10

	// maxPerDomain caps how many results one site may occupy.
	maxPerDomain = 5
)

// clampLimit applies the 1-10 range with the documented default.
func clampLimit(limit int) (int, error) {
	if limit == 0 {
		return defaultLimit, nil
	}
	if limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d, got %d", maxLimit, limit)
	}
	return limit, nil
}

// resolveMaxLen maps the optional maxContentLength input onto a concrete
// cap: absent means the server default, an explicit 0 means unlimited.
func resolveMaxLen(v *int, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v < 0 {
		return 0, fmt.Errorf("maxContentLength must be >= 0")
	}
	return *v, nil
}

func registerFullWebSearch(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "full-web-search",
		Description: "Search the web and return results with full page content. Tries multiple search engines in order and extracts the main text of each result page. Use this as the primary web search tool.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.FullSearchInput) (*mcp.CallToolResult, engine.FullSearchOutput, error) {
		if input.Query == "" {
			return nil, engine.FullSearchOutput{}, fmt.Errorf("query is required")
		}
		limit, err := clampLimit(input.Limit)
		if err != nil {
			return nil, engine.FullSearchOutput{}, err
		}
		maxLen, err := resolveMaxLen(input.MaxContentLength, deps.Cfg.MaxContentLength)
		if err != nil {
			return nil, engine.FullSearchOutput{}, err
		}
		includeContent := input.IncludeContent == nil || *input.IncludeContent

		outcome, err := deps.Orch.Search(ctx, input.Query, limit, deps.Cfg.SearchTimeout)
		if err != nil {
			return nil, engine.FullSearchOutput{}, err
		}

		results := engine.DedupByDomain(outcome.Results, maxPerDomain)
		if includeContent && len(results) > 0 {
			results = deps.Extractor.ExtractForResults(ctx, results, limit, maxLen)
		} else if len(results) > limit {
			results = results[:limit]
		}

		out := engine.FullSearchOutput{
			Query:   input.Query,
			Engine:  outcome.Engine,
			Results: results,
		}
		return textResult(formatFullResults(out, includeContent)), out, nil
	})
}
