package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// BestMatch returns the index of the candidate most similar to `query` by
// Jaro-Winkler similarity of the normalized names, or -1 if no candidate
// reaches `threshold`. A candidate containing the query always matches.
func BestMatch(query string, candidates []string, threshold float64) (int, float64) {
	query = NormalizeName(query)
	if query == "" {
		return -1, 0
	}

	best := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		normalized := NormalizeName(candidate)
		score := matchr.JaroWinkler(query, normalized, false)
		if strings.Contains(normalized, query) {
			score = max(score, threshold)
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if bestScore < threshold {
		return -1, bestScore
	}
	return best, bestScore
}
