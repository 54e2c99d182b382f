package engine

import "testing"

func TestScoreResults(t *testing.T) {
	query := "javascript tutorial"

	full := []SearchResult{
		{Title: "JavaScript Tutorial for Beginners", URL: "https://example.com/javascript-tutorial", Description: "A complete javascript tutorial"},
		{Title: "Learn JavaScript", URL: "https://example.org/js", Description: "javascript tutorial with examples"},
	}
	none := []SearchResult{
		{Title: "Best Pizza Recipes", URL: "https://food.example.com", Description: "cooking at home"},
		{Title: "Garden Tips", URL: "https://garden.example.com", Description: "growing tomatoes"},
	}

	t.Run("monotonic in keyword coverage", func(t *testing.T) {
		if ScoreResults(query, full) < ScoreResults(query, none) {
			t.Error("full-coverage set must score >= zero-coverage set")
		}
	})

	t.Run("full coverage scores high", func(t *testing.T) {
		if got := ScoreResults(query, full); got < 0.9 {
			t.Errorf("expected >= 0.9 with phrase bonus, got %f", got)
		}
	})

	t.Run("empty set scores zero", func(t *testing.T) {
		if got := ScoreResults(query, nil); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("stop-word-only query passes", func(t *testing.T) {
		if got := ScoreResults("the of and", full); got != 1.0 {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("off-topic penalty lowers score", func(t *testing.T) {
		clean := []SearchResult{
			{Title: "javascript tutorial", URL: "https://a.example.com", Description: "learn javascript"},
		}
		offTopic := []SearchResult{
			{Title: "javascript tutorial", URL: "https://a.example.com", Description: "learn javascript with free shipping discount"},
		}
		if ScoreResults(query, offTopic) >= ScoreResults(query, clean) {
			t.Error("off-topic match must lower the score")
		}
	})

	t.Run("score stays in range", func(t *testing.T) {
		sets := [][]SearchResult{full, none, {{Title: "casino betting lottery", URL: "https://x.example.com", Description: "horoscope gossip"}}}
		for _, s := range sets {
			got := ScoreResults(query, s)
			if got < 0 || got > 1 {
				t.Errorf("score %f out of [0,1]", got)
			}
		}
	})
}

func TestQueryPhrases(t *testing.T) {
	got := queryPhrases([]string{"go", "http", "server"})
	want := map[string]bool{
		"go http": true, "http server": true, "go http server": true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d phrases, got %v", len(want), got)
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected phrase %q", p)
		}
	}
}
