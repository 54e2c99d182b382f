package webserver

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_websearch/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// formatFullResults renders a result list as readable text. Extraction
// failures are annotated per result instead of blanking the response.
func formatFullResults(out engine.FullSearchOutput, withContent bool) string {
	if len(out.Results) == 0 {
		return fmt.Sprintf("No results found for %q.", out.Query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for %q (engine: %s):\n\n", out.Query, out.Engine)
	for i, r := range out.Results {
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   %s\n", i+1, r.Title, r.URL, r.Description)
		if !withContent {
			sb.WriteString("\n")
			continue
		}
		switch r.FetchStatus {
		case engine.FetchSuccess:
			fmt.Fprintf(&sb, "   Words: %d\n\n%s\n\n", r.WordCount, r.FullContent)
		case engine.FetchTimeout, engine.FetchError:
			fmt.Fprintf(&sb, "   [content unavailable: %s]\n\n", r.Error)
		default:
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func formatPageContent(out engine.PageContentOutput) string {
	var sb strings.Builder
	if out.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", out.Title)
	}
	fmt.Fprintf(&sb, "URL: %s\nWords: %d", out.URL, out.WordCount)
	if out.Truncated {
		sb.WriteString(" (truncated)")
	}
	fmt.Fprintf(&sb, "\n\n%s\n", out.Content)
	return sb.String()
}
