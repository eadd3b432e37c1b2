package metrics

import (
	"regexp"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/classification"
)

// SpeciesMatch is the comparison of a predicted species with the reference label
type SpeciesMatch struct {
	Expected string  `json:"expected" yaml:"expected"`
	Actual   string  `json:"actual" yaml:"actual"`
	Score    float64 `json:"score" yaml:"score"`
	Method   string  `json:"method" yaml:"method"`
}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// CompareSpecies scores a predicted species against the expected one.
// Methods: exact, substring, fuzzy_high, fuzzy_medium, no_match, actual_missing.
func CompareSpecies(expected, actual string) SpeciesMatch {
	match := SpeciesMatch{Expected: expected, Actual: actual}

	if !classification.IsAnimalSpecies(actual) {
		match.Method = "actual_missing"
		return match
	}

	exp := normalizeForComparison(expected)
	act := normalizeForComparison(actual)

	switch {
	case exp == act:
		match.Score = 1.0
		match.Method = "exact"
		return match
	case exp != "" && act != "" && (strings.Contains(act, exp) || strings.Contains(exp, act)):
		// "Fox" vs "Red Fox"
		match.Score = 0.8
		match.Method = "substring"
		return match
	}

	similarity := calculateSimilarity(exp, act)
	switch {
	case similarity >= 0.85:
		match.Score = similarity
		match.Method = "fuzzy_high"
	case similarity >= 0.7:
		match.Score = similarity
		match.Method = "fuzzy_medium"
	default:
		match.Score = 0.0
		match.Method = "no_match"
	}
	return match
}

func normalizeForComparison(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// calculateSimilarity is 1 - levenshtein/maxLen
func calculateSimilarity(s1, s2 string) float64 {
	r1, r2 := []rune(s1), []rune(s2)
	maxLen := max(len(r1), len(r2))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

func levenshteinDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
