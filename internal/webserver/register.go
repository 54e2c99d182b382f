// Package webserver registers the MCP tool surface over the search engine:
// full-web-search, get-web-search-summaries, get-single-web-page-content.
package webserver

import (
	"github.com/anatolykoptev/go_websearch/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps carries the engine components the tools run on.
type Deps struct {
	Cfg       *engine.Config
	Orch      *engine.Orchestrator
	Extractor *engine.Extractor
}

// RegisterTools registers all web search tools on the given MCP server.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerFullWebSearch(server, deps)
	registerSearchSummaries(server, deps)
	registerPageContent(server, deps)
}
