package webserver

import (
	"strings"
	"testing"

	"github.com/anatolykoptev/go_websearch/internal/engine"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 5, false},
		{1, 1, false},
		{10, 10, false},
		{11, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := clampLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("clampLimit(%d) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResolveMaxLen(t *testing.T) {
	const def = 10000
	intp := func(v int) *int { return &v }

	t.Run("absent means server default", func(t *testing.T) {
		got, err := resolveMaxLen(nil, def)
		if err != nil || got != def {
			t.Errorf("got (%d, %v)", got, err)
		}
	})

	t.Run("explicit zero means unlimited", func(t *testing.T) {
		got, err := resolveMaxLen(intp(0), def)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0 {
			t.Errorf("explicit 0 must not fall back to the default, got %d", got)
		}
	})

	t.Run("positive passes through", func(t *testing.T) {
		got, err := resolveMaxLen(intp(250), def)
		if err != nil || got != 250 {
			t.Errorf("got (%d, %v)", got, err)
		}
	})

	t.Run("negative rejected", func(t *testing.T) {
		if _, err := resolveMaxLen(intp(-1), def); err == nil {
			t.Error("expected error")
		}
	})
}

func TestCapContent(t *testing.T) {
	text := strings.Repeat("a", 100)

	t.Run("under the cap", func(t *testing.T) {
		got, truncated := capContent(text, 200)
		if truncated || got != text {
			t.Errorf("got truncated=%v len=%d", truncated, len(got))
		}
	})

	t.Run("exactly the cap is not truncated", func(t *testing.T) {
		_, truncated := capContent(text, 100)
		if truncated {
			t.Error("content exactly maxLen long was never cut")
		}
	})

	t.Run("over the cap", func(t *testing.T) {
		got, truncated := capContent(text, 60)
		if !truncated || len(got) != 60 {
			t.Errorf("got truncated=%v len=%d", truncated, len(got))
		}
	})

	t.Run("zero means unlimited", func(t *testing.T) {
		got, truncated := capContent(text, 0)
		if truncated || len(got) != 100 {
			t.Errorf("got truncated=%v len=%d", truncated, len(got))
		}
	})
}

func TestFormatFullResultsEmpty(t *testing.T) {
	out := engine.FullSearchOutput{Query: "golang"}
	text := formatFullResults(out, true)
	if !strings.Contains(text, "No results found") {
		t.Errorf("got %q", text)
	}
	if !strings.Contains(text, `"golang"`) {
		t.Errorf("empty message should include the query: %q", text)
	}
}

func TestFormatFullResultsAnnotatesFailures(t *testing.T) {
	out := engine.FullSearchOutput{
		Query:  "golang",
		Engine: "bing",
		Results: []engine.SearchResult{
			{
				Title:       "Good",
				URL:         "https://example.com/a",
				Description: "desc a",
				FullContent: "the full page text",
				WordCount:   4,
				FetchStatus: engine.FetchSuccess,
			},
			{
				Title:       "Bad",
				URL:         "https://example.com/b",
				Description: "desc b",
				FetchStatus: engine.FetchError,
				Error:       "render failed",
			},
			{
				Title:       "Slow",
				URL:         "https://example.com/c",
				Description: "desc c",
				FetchStatus: engine.FetchTimeout,
				Error:       "fetch timed out",
			},
		},
	}

	text := formatFullResults(out, true)

	if !strings.Contains(text, "the full page text") {
		t.Error("successful content missing")
	}
	if !strings.Contains(text, "[content unavailable: render failed]") {
		t.Error("error annotation missing")
	}
	if !strings.Contains(text, "[content unavailable: fetch timed out]") {
		t.Error("timeout annotation missing")
	}
	if !strings.Contains(text, "engine: bing") {
		t.Error("engine label missing")
	}
	// Failed results keep their title and URL so the caller can retry.
	for _, want := range []string{"Bad", "https://example.com/b", "Slow"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in output", want)
		}
	}
}

func TestFormatFullResultsWithoutContent(t *testing.T) {
	out := engine.FullSearchOutput{
		Query:  "golang",
		Engine: "duckduckgo",
		Results: []engine.SearchResult{
			{Title: "T", URL: "https://example.com", Description: "d", FullContent: "should not appear", FetchStatus: engine.FetchSuccess},
		},
	}
	text := formatFullResults(out, false)
	if strings.Contains(text, "should not appear") {
		t.Error("content included despite withContent=false")
	}
	if !strings.Contains(text, "https://example.com") {
		t.Error("URL missing")
	}
}

func TestFormatPageContent(t *testing.T) {
	out := engine.PageContentOutput{
		URL:       "https://example.com/page",
		Title:     "Example",
		Content:   "body text here",
		WordCount: 3,
		Truncated: true,
	}
	text := formatPageContent(out)

	for _, want := range []string{"Title: Example", "https://example.com/page", "Words: 3", "(truncated)", "body text here"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}

	out.Title = ""
	out.Truncated = false
	text = formatPageContent(out)
	if strings.Contains(text, "Title:") {
		t.Error("empty title should be omitted")
	}
	if strings.Contains(text, "(truncated)") {
		t.Error("truncated marker should be omitted")
	}
}
