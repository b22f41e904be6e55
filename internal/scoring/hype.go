package scoring

import (
	"fmt"
	"strings"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/lexicon"
	"StoryScanner/pkg/textstat"
)

// Hype sub-signal weights; they must sum to 1.
const (
	hypeMarketingWeight    = 0.25
	hypeSuperlativeWeight  = 0.20
	hypeBreakthroughWeight = 0.25
	hypePunctuationWeight  = 0.15
	hypeRatioWeight        = 0.15
)

// Density saturation points: the hits-per-word ratio at which a signal
// maxes out.
const (
	marketingSaturation    = 0.04
	superlativeSaturation  = 0.03
	breakthroughSaturation = 0.02
)

// punctuationFull is the exclamation-plus-caps count treated as fully
// sensational punctuation.
const punctuationFull = 4.0

// signalTagThreshold marks a sub-signal strong enough to earn a tag.
const signalTagThreshold = 0.7

// HypeScorer measures marketing and exaggeration intensity in story
// text. It is a stateless value: identical input always produces an
// identical result.
type HypeScorer struct{}

// NewHypeScorer constructs the scorer.
func NewHypeScorer() HypeScorer {
	return HypeScorer{}
}

// Score computes the 1-10 hype score with per-factor breakdown,
// threshold tags, and reasoning. Degenerate input yields the minimum
// score at minimum confidence, never an error.
func (HypeScorer) Score(content domain.StoryContent) domain.LocalScoreResult {
	text := strings.TrimSpace(content.Title + " " + content.Body)
	words := textstat.WordCount(text)

	if words == 0 {
		return domain.LocalScoreResult{
			Score:      minScore,
			Confidence: emptyConfidence,
			Breakdown:  emptyHypeBreakdown(),
			Reasoning:  []string{"no scorable text"},
		}
	}

	marketingHits := textstat.CountHits(text, lexicon.Marketing)
	superlativeHits := textstat.CountHits(text, lexicon.Superlatives)
	breakthroughHits := textstat.CountHits(text, lexicon.Breakthrough)
	technicalHits := textstat.CountHits(text, lexicon.Technical)
	exclaims := textstat.ExclamationCount(text)
	capsWords := textstat.CapsWordCount(text)

	marketing := textstat.Density(marketingHits, words, marketingSaturation)
	superlative := textstat.Density(superlativeHits, words, superlativeSaturation)
	breakthrough := textstat.Density(breakthroughHits, words, breakthroughSaturation)
	punctuation := textstat.Clamp01(float64(exclaims+capsWords) / punctuationFull)

	ratio := 0.0
	if marketingHits+technicalHits > 0 {
		ratio = float64(marketingHits) / float64(marketingHits+technicalHits)
	}

	composite := hypeMarketingWeight*marketing +
		hypeSuperlativeWeight*superlative +
		hypeBreakthroughWeight*breakthrough +
		hypePunctuationWeight*punctuation +
		hypeRatioWeight*ratio

	breakdown := map[string]float64{
		"marketing":    marketing * 10,
		"superlatives": superlative * 10,
		"breakthrough": breakthrough * 10,
		"punctuation":  punctuation * 10,
		"ratio":        ratio * 10,
	}

	var tags []string
	if marketing > signalTagThreshold {
		tags = append(tags, "marketing-heavy")
	}
	if superlative > signalTagThreshold {
		tags = append(tags, "superlative-laden")
	}
	if breakthrough > signalTagThreshold {
		tags = append(tags, "breakthrough-claims")
	}
	if punctuation > signalTagThreshold {
		tags = append(tags, "sensational-punctuation")
	}
	if ratio > signalTagThreshold {
		tags = append(tags, "marketing-over-substance")
	}

	var reasoning []string
	if marketingHits > 0 {
		reasoning = append(reasoning, fmt.Sprintf("marketing vocabulary: %d hits in %d words", marketingHits, words))
	}
	if superlativeHits > 0 {
		reasoning = append(reasoning, fmt.Sprintf("superlatives: %d hits", superlativeHits))
	}
	if breakthroughHits > 0 {
		reasoning = append(reasoning, fmt.Sprintf("breakthrough claims: %d hits", breakthroughHits))
	}
	if exclaims+capsWords > 0 {
		reasoning = append(reasoning, fmt.Sprintf("punctuation intensity: %d exclamations, %d shouted words", exclaims, capsWords))
	}
	if technicalHits > 0 {
		reasoning = append(reasoning, fmt.Sprintf("technical vocabulary: %d hits offsetting marketing", technicalHits))
	}
	if len(reasoning) == 0 {
		reasoning = append(reasoning, "no hype indicators found")
	}

	return domain.LocalScoreResult{
		Score:      scale(composite),
		Confidence: lengthConfidence(words),
		Breakdown:  breakdown,
		Tags:       tags,
		Reasoning:  reasoning,
	}
}

func emptyHypeBreakdown() map[string]float64 {
	return map[string]float64{
		"marketing":    0,
		"superlatives": 0,
		"breakthrough": 0,
		"punctuation":  0,
		"ratio":        0,
	}
}
