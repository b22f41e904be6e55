package scoring

import "math"

const (
	minScore = 1
	maxScore = 10

	emptyConfidence = 0.1
	floorConfidence = 0.2
	ceilConfidence  = 0.8

	shortWordCount = 50
	longWordCount  = 300
)

// lengthConfidence estimates score trustworthiness from content size:
// a floor of 0.2 below 50 words, rising linearly to 0.8 at 300 words.
// Empty input gets the absolute minimum so callers can discount it.
func lengthConfidence(words int) float64 {
	switch {
	case words <= 0:
		return emptyConfidence
	case words < shortWordCount:
		return floorConfidence
	case words >= longWordCount:
		return ceilConfidence
	}
	span := float64(longWordCount - shortWordCount)
	return floorConfidence + (ceilConfidence-floorConfidence)*float64(words-shortWordCount)/span
}

// scale maps a 0-1 composite onto the 1-10 integer scale.
func scale(composite float64) int {
	return clampScore(int(math.Round(minScore + composite*(maxScore-minScore))))
}

func clampScore(score int) int {
	switch {
	case score < minScore:
		return minScore
	case score > maxScore:
		return maxScore
	}
	return score
}
