package engine

import "strings"

// Relevance scoring is a tuned heuristic, not a correctness oracle: the
// phrase bonus, off-topic penalty and the acceptance thresholds in Config
// are empirical defaults, adjustable per deployment.

const (
	phraseBonus     = 0.1
	phraseBonusCap  = 0.2
	offTopicPenalty = 0.3
)

// offTopicPatterns flag result sets that drifted into unrelated commercial
// or lifestyle categories.
var offTopicPatterns = []string{
	"shopping", "buy now", "add to cart", "free shipping", "discount",
	"weather forecast", "temperature today",
	"celebrity", "gossip", "horoscope", "lottery",
	"flight deals", "hotel booking", "vacation package",
	"recipe", "casino", "betting",
}

// ScoreResults computes the heuristic [0,1] relevance of a result set
// against the query: per-result content-word coverage over
// title+description+url, a bonus for verbatim 2-3 word query phrases, and
// a penalty for off-topic category matches, averaged across the set.
func ScoreResults(query string, results []SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	words := ContentWords(query)
	if len(words) == 0 {
		return 1.0 // nothing to match against, don't block the set
	}
	phrases := queryPhrases(words)

	var total float64
	for _, r := range results {
		total += scoreResult(words, phrases, r)
	}
	return total / float64(len(results))
}

func scoreResult(words, phrases []string, r SearchResult) float64 {
	haystack := strings.ToLower(r.Title + " " + r.Description + " " + r.URL)

	matched := 0
	for _, w := range words {
		if strings.Contains(haystack, w) {
			matched++
		}
	}
	score := float64(matched) / float64(len(words))

	var bonus float64
	for _, p := range phrases {
		if strings.Contains(haystack, p) {
			bonus += phraseBonus
		}
	}
	score += min(bonus, phraseBonusCap)

	for _, pat := range offTopicPatterns {
		if strings.Contains(haystack, pat) {
			score -= offTopicPenalty
			break
		}
	}

	return max(0, min(1, score))
}

// queryPhrases returns contiguous 2- and 3-word windows of the query's
// content words.
func queryPhrases(words []string) []string {
	var phrases []string
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(words); i++ {
			phrases = append(phrases, strings.Join(words[i:i+n], " "))
		}
	}
	return phrases
}
