package webserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_websearch/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// capContent applies the resolved length cap. Zero means unlimited; the
// flag reports whether anything was actually cut.
func capContent(content string, maxLen int) (string, bool) {
	if maxLen <= 0 || len(content) <= maxLen {
		return content, false
	}
	return content[:maxLen], true
}

func registerPageContent(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get-single-web-page-content",
		Description: "Fetch one web page and return its cleaned main text content. Uses a direct HTTP fetch with a rendered-browser fallback for JS-heavy or bot-protected pages.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.PageContentInput) (*mcp.CallToolResult, engine.PageContentOutput, error) {
		if input.URL == "" {
			return nil, engine.PageContentOutput{}, fmt.Errorf("url is required")
		}
		if !engine.ValidURL(input.URL) {
			return nil, engine.PageContentOutput{}, fmt.Errorf("invalid URL: %q (must be absolute http/https)", input.URL)
		}
		maxLen, err := resolveMaxLen(input.MaxContentLength, deps.Cfg.MaxContentLength)
		if err != nil {
			return nil, engine.PageContentOutput{}, err
		}

		// Extract uncapped, then cap here: only comparing against the full
		// text can tell an exactly-maxLen page from a cut one.
		title, full, err := deps.Extractor.ExtractContent(ctx, input.URL, deps.Cfg.FetchTimeout, 0)
		if err != nil {
			return nil, engine.PageContentOutput{}, err
		}
		content, truncated := capContent(full, maxLen)

		out := engine.PageContentOutput{
			URL:       input.URL,
			Title:     title,
			WordCount: engine.WordCount(content),
			Content:   content,
			Truncated: truncated,
		}
		return textResult(formatPageContent(out)), out, nil
	})
}
