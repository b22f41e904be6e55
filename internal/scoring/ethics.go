package scoring

import (
	"fmt"
	"strings"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/lexicon"
	"StoryScanner/pkg/textstat"
)

const (
	ethicsBaseline = 0.5

	positiveStep = 0.1
	negativeStep = 0.15

	// companyBoost is added to a category backed by a published policy
	// document.
	companyBoost = 0.15

	// negativePenaltyStep accumulates per negative hit across all
	// categories; the total penalty is capped.
	negativePenaltyStep = 0.1
	negativePenaltyCap  = 0.5

	// contextConfidenceBoost rewards the presence of company context.
	contextConfidenceBoost = 0.1

	categoryPositiveThreshold = 0.7
	categoryConcernThreshold  = 0.3
	recommendationThreshold   = 0.5
)

// EthicsScorer measures ethical-practice signals across five
// categories. Stateless and deterministic; the indicator vocabulary is
// injected so tuning never touches the arithmetic.
type EthicsScorer struct {
	registry *lexicon.Registry
}

// NewEthicsScorer constructs a scorer over the given indicator
// registry; nil selects the built-in vocabulary.
func NewEthicsScorer(registry *lexicon.Registry) EthicsScorer {
	if registry == nil {
		registry = lexicon.DefaultEthics()
	}
	return EthicsScorer{registry: registry}
}

// Score computes the 1-10 ethics score with per-category breakdown,
// impact tags, and recommendations. Company context is optional and
// only ever raises category scores and confidence.
func (s EthicsScorer) Score(content domain.StoryContent, company *domain.CompanyContext) domain.LocalScoreResult {
	text := strings.TrimSpace(content.Title + " " + content.Body)
	words := textstat.WordCount(text)

	if words == 0 {
		// Empty text carries no ethics signal either way: neutral
		// score at minimum confidence.
		return domain.LocalScoreResult{
			Score:      scale(ethicsBaseline),
			Confidence: emptyConfidence,
			Breakdown:  emptyEthicsBreakdown(),
			Reasoning:  []string{"no scorable text"},
		}
	}

	breakdown := make(map[string]float64, len(lexicon.Categories))
	var tags, reasoning, recommendations []string
	composite := 0.0
	totalNegative := 0

	for _, cat := range lexicon.Categories {
		ind, err := s.registry.Resolve(cat.Name)
		if err != nil {
			ind = lexicon.Indicators{}
		}

		positive := textstat.CountHits(text, ind.Positive)
		negative := textstat.CountHits(text, ind.Negative)
		totalNegative += negative

		score := ethicsBaseline + positiveStep*float64(positive) - negativeStep*float64(negative)
		score += s.companyBoost(cat.Name, company)
		score = textstat.Clamp01(score)

		breakdown[cat.Name] = score * 10
		composite += cat.Weight * score

		switch {
		case score > categoryPositiveThreshold:
			tags = append(tags, cat.Name+"-positive")
		case score < categoryConcernThreshold:
			tags = append(tags, cat.Name+"-concern")
		}
		if score < recommendationThreshold {
			recommendations = append(recommendations, recommendationFor(cat.Name))
		}
		if positive+negative > 0 {
			reasoning = append(reasoning, fmt.Sprintf("%s: %d positive, %d negative indicators", cat.Name, positive, negative))
		}
	}

	penalty := negativePenaltyStep * float64(totalNegative)
	if penalty > negativePenaltyCap {
		penalty = negativePenaltyCap
	}
	if penalty > 0 {
		reasoning = append(reasoning, fmt.Sprintf("negative-indicator penalty: %.2f", penalty))
	}
	if len(reasoning) == 0 {
		reasoning = append(reasoning, "no ethics indicators found; neutral baseline")
	}

	confidence := lengthConfidence(words)
	if company != nil {
		confidence = textstat.Clamp01(confidence + contextConfidenceBoost)
	}

	return domain.LocalScoreResult{
		Score:           scale(textstat.Clamp01(composite - penalty)),
		Confidence:      confidence,
		Breakdown:       breakdown,
		Tags:            tags,
		Reasoning:       reasoning,
		Recommendations: recommendations,
	}
}

// HasRedFlags applies the hard-gate pattern list independently of the
// numeric score.
func (EthicsScorer) HasRedFlags(content domain.StoryContent) bool {
	text := content.Title + " " + content.Body
	return textstat.CountHits(text, lexicon.RedFlags) > 0
}

func (EthicsScorer) companyBoost(category string, company *domain.CompanyContext) float64 {
	if company == nil {
		return 0
	}
	switch category {
	case "privacy":
		if company.HasPrivacyPolicy {
			return companyBoost
		}
	case "transparency":
		if company.HasEthicsStatement {
			return companyBoost
		}
	}
	return 0
}

func recommendationFor(category string) string {
	switch category {
	case "privacy":
		return "clarify data collection and consent practices"
	case "labor":
		return "address working conditions and fair-pay signals"
	case "environment":
		return "disclose environmental impact and mitigation"
	case "safety":
		return "document safety testing and independent review"
	case "transparency":
		return "publish audits or an ethics statement"
	}
	return "review " + category + " practices"
}

func emptyEthicsBreakdown() map[string]float64 {
	breakdown := make(map[string]float64, len(lexicon.Categories))
	for _, cat := range lexicon.Categories {
		breakdown[cat.Name] = ethicsBaseline * 10
	}
	return breakdown
}
