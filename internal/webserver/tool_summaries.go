package webserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_websearch/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSearchSummaries(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get-web-search-summaries",
		Description: "Search the web and return only titles, URLs and snippets, without fetching page content. Faster and lighter than full-web-search.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummariesInput) (*mcp.CallToolResult, engine.FullSearchOutput, error) {
		if input.Query == "" {
			return nil, engine.FullSearchOutput{}, fmt.Errorf("query is required")
		}
		limit, err := clampLimit(input.Limit)
		if err != nil {
			return nil, engine.FullSearchOutput{}, err
		}

		outcome, err := deps.Orch.Search(ctx, input.Query, limit, deps.Cfg.SearchTimeout)
		if err != nil {
			return nil, engine.FullSearchOutput{}, err
		}

		results := engine.DedupByDomain(outcome.Results, maxPerDomain)
		if len(results) > limit {
			results = results[:limit]
		}
		out := engine.FullSearchOutput{
			Query:   input.Query,
			Engine:  outcome.Engine,
			Results: results,
		}
		return textResult(formatFullResults(out, false)), out, nil
	})
}
