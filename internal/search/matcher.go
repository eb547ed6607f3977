// ABOUTME: String similarity and phonetic coding capabilities for fuzzy account search
// ABOUTME: Jaro-Winkler and Levenshtein similarity, both with Soundex codes, via smetrics
package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xrash/smetrics"
)

// Matcher supplies the fuzzy primitives the ranker depends on.
// Similarity is symmetric and returns a score in [0, 1]; PhoneticCode is a
// deterministic many-to-one mapping, "" when s has no letters.
type Matcher interface {
	Similarity(a, b string) float64
	PhoneticCode(s string) string
}

// SimilarityFloor is implemented by matchers that declare the similarity
// below which two strings are treated as unrelated
type SimilarityFloor interface {
	MinSimilarity() float64
}

func similarityFloor(m Matcher) float64 {
	if f, ok := m.(SimilarityFloor); ok && f.MinSimilarity() > 0 {
		return f.MinSimilarity()
	}
	return DefaultMinSimilarity
}

// Similarity metric names accepted by NewMatcher
const (
	MetricJaroWinkler = "jarowinkler"
	MetricLevenshtein = "levenshtein"
)

// NewMatcher returns the matcher for a metric name
func NewMatcher(metric string) (Matcher, error) {
	switch strings.ToLower(metric) {
	case MetricJaroWinkler, "":
		return JaroWinkler{}, nil
	case MetricLevenshtein:
		return Levenshtein{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q", metric)
	}
}

// JaroWinkler scores with the Jaro-Winkler distance (boost threshold 0.7,
// prefix scale over up to 4 characters)
type JaroWinkler struct{}

func (JaroWinkler) Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}

func (JaroWinkler) PhoneticCode(s string) string {
	return soundex(s)
}

// MinSimilarity sits above the 0.4 to 0.7 unrelated words typically score
func (JaroWinkler) MinSimilarity() float64 { return 0.85 }

// Levenshtein scores 1 - editDistance/maxLen
type Levenshtein struct{}

func (Levenshtein) Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 || a == "" || b == "" {
		return 0
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 1)
	if d >= longest {
		return 0
	}
	return 1 - float64(d)/float64(longest)
}

func (Levenshtein) PhoneticCode(s string) string {
	return soundex(s)
}

// MinSimilarity admits about one edit in four characters
func (Levenshtein) MinSimilarity() float64 { return 0.75 }

// soundex codes the ASCII letters of s; smetrics.Soundex requires a
// non-empty input
func soundex(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return smetrics.Soundex(b.String())
}
