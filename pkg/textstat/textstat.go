// Package textstat provides the small text statistics shared by the
// deterministic scorers: word counts, phrase hit counts, and density
// normalization. Everything operates on lowercased input and is free of
// I/O so scorer results stay reproducible.
package textstat

import (
	"strings"
	"unicode"
)

// WordCount returns the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CountHits returns the total number of non-overlapping occurrences of
// the given terms in text. Both sides are compared lowercased, so terms
// may be multi-word phrases.
func CountHits(text string, terms []string) int {
	lowered := strings.ToLower(text)
	total := 0
	for _, term := range terms {
		total += strings.Count(lowered, strings.ToLower(term))
	}
	return total
}

// Density normalizes a hit count against the word count, saturating at
// 1.0 once hits-per-word reaches the given ratio. A saturation of 0.04
// means "4% of the words" produces the full signal.
func Density(hits, words int, saturation float64) float64 {
	if hits <= 0 || words <= 0 || saturation <= 0 {
		return 0
	}
	d := (float64(hits) / float64(words)) / saturation
	if d > 1 {
		return 1
	}
	return d
}

// ExclamationCount returns the number of '!' runes in text.
func ExclamationCount(text string) int {
	return strings.Count(text, "!")
}

// CapsWordCount counts words of three or more letters written entirely
// in upper case. Short acronyms like "AI" are deliberately excluded.
func CapsWordCount(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		letters := 0
		upper := true
		for _, r := range word {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			if !unicode.IsUpper(r) {
				upper = false
				break
			}
		}
		if upper && letters >= 3 {
			count++
		}
	}
	return count
}

// Clamp01 bounds v to the [0,1] interval.
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
