package engine

// --- Core search types ---

// FetchStatus classifies the outcome of one page-content extraction.
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchError   FetchStatus = "error"
	FetchTimeout FetchStatus = "timeout"
)

// SearchResult is one found page reference. Content fields are populated
// only after extraction; discovery and extraction succeed or fail
// independently.
type SearchResult struct {
	Title          string      `json:"title"`
	URL            string      `json:"url"`
	Description    string      `json:"description"`
	FullContent    string      `json:"full_content,omitempty"`
	ContentPreview string      `json:"content_preview,omitempty"`
	WordCount      int         `json:"word_count,omitempty"`
	FetchStatus    FetchStatus `json:"fetch_status,omitempty"`
	Error          string      `json:"error,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

// EngineNone is the sentinel engine name when no backend produced results.
const EngineNone = "none"

// SearchOutcome is the result of one orchestrator run. Engine names the
// backend that supplied Results, or EngineNone.
type SearchOutcome struct {
	Results []SearchResult `json:"results"`
	Engine  string         `json:"engine"`
}

// NoDescription is the placeholder stored when an engine omits a snippet.
const NoDescription = "No description available"

// --- Tool input types ---

type FullSearchInput struct {
	Query            string `json:"query" jsonschema:"Search query"`
	Limit            int    `json:"limit,omitempty" jsonschema:"Number of results (1-10, default 5)"`
	IncludeContent   *bool  `json:"includeContent,omitempty" jsonschema:"Fetch full page content for each result (default true)"`
	MaxContentLength *int   `json:"maxContentLength,omitempty" jsonschema:"Max characters of extracted content per page (0 = unlimited, omit for the server default)"`
}

type SummariesInput struct {
	Query string `json:"query" jsonschema:"Search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"Number of results (1-10, default 5)"`
}

type PageContentInput struct {
	URL              string `json:"url" jsonschema:"HTTP or HTTPS URL to fetch"`
	MaxContentLength *int   `json:"maxContentLength,omitempty" jsonschema:"Max characters of extracted content (0 = unlimited, omit for the server default)"`
}

// --- Tool output types (JSON responses) ---

type FullSearchOutput struct {
	Query   string         `json:"query"`
	Engine  string         `json:"engine"`
	Results []SearchResult `json:"results"`
}

type PageContentOutput struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	WordCount int    `json:"word_count"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}
