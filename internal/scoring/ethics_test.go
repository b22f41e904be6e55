package scoring

import (
	"reflect"
	"strings"
	"testing"

	"StoryScanner/internal/domain"
)

func TestEthicsScoreDeterminism(t *testing.T) {
	t.Parallel()

	content := domain.StoryContent{
		Title: "Company publishes transparency report",
		Body:  "The company disclosed a data breach but committed to encryption and user consent going forward.",
	}

	scorer := NewEthicsScorer(nil)
	first := scorer.Score(content, nil)
	second := scorer.Score(content, nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEthicsScoreNeutralBaseline(t *testing.T) {
	t.Parallel()

	result := NewEthicsScorer(nil).Score(domain.StoryContent{
		Body: "A company announced a product update on Tuesday afternoon.",
	}, nil)

	if result.Score != 6 {
		t.Fatalf("expected neutral baseline score 6, got %d (%+v)", result.Score, result)
	}
	if len(result.Tags) != 0 {
		t.Fatalf("expected no tags at baseline, got %v", result.Tags)
	}
}

func TestEthicsScoreNegativeIndicators(t *testing.T) {
	t.Parallel()

	scorer := NewEthicsScorer(nil)

	neutral := scorer.Score(domain.StoryContent{Body: "A company announced a product update."}, nil)
	bad := scorer.Score(domain.StoryContent{
		Body: "After the data breach the company was caught selling user data, tracking users without consent, and running covert surveillance.",
	}, nil)

	if bad.Score >= neutral.Score {
		t.Fatalf("negative indicators should lower the score: neutral=%d bad=%d", neutral.Score, bad.Score)
	}
	if !contains(bad.Tags, "privacy-concern") {
		t.Fatalf("expected privacy-concern tag, got %v", bad.Tags)
	}
	if len(bad.Recommendations) == 0 {
		t.Fatal("expected recommendations for low categories")
	}
}

func TestEthicsScoreCompanyBoost(t *testing.T) {
	t.Parallel()

	scorer := NewEthicsScorer(nil)
	content := domain.StoryContent{Body: "A company announced a product update for enterprise customers."}

	without := scorer.Score(content, nil)
	with := scorer.Score(content, &domain.CompanyContext{
		ID:                 "acme",
		HasPrivacyPolicy:   true,
		HasEthicsStatement: true,
	})

	if with.Breakdown["privacy"] <= without.Breakdown["privacy"] {
		t.Fatalf("privacy policy should boost privacy category: %f vs %f", with.Breakdown["privacy"], without.Breakdown["privacy"])
	}
	if with.Breakdown["transparency"] <= without.Breakdown["transparency"] {
		t.Fatalf("ethics statement should boost transparency category: %f vs %f", with.Breakdown["transparency"], without.Breakdown["transparency"])
	}
	if with.Confidence <= without.Confidence {
		t.Fatalf("company context should boost confidence: %f vs %f", with.Confidence, without.Confidence)
	}
}

func TestEthicsScoreEmptyInput(t *testing.T) {
	t.Parallel()

	result := NewEthicsScorer(nil).Score(domain.StoryContent{}, nil)
	if result.Score < 1 || result.Score > 10 {
		t.Fatalf("score %d out of bounds on empty input", result.Score)
	}
	if result.Confidence != emptyConfidence {
		t.Fatalf("expected minimum confidence, got %f", result.Confidence)
	}
}

func TestEthicsPositiveCategoryTag(t *testing.T) {
	t.Parallel()

	result := NewEthicsScorer(nil).Score(domain.StoryContent{
		Body: strings.Repeat("The rollout included safety testing, an independent audit, a red team exercise, and a published risk assessment. ", 3),
	}, nil)

	if !contains(result.Tags, "safety-positive") {
		t.Fatalf("expected safety-positive tag, got %v", result.Tags)
	}
}

func TestHasRedFlags(t *testing.T) {
	t.Parallel()

	scorer := NewEthicsScorer(nil)

	flagged := domain.StoryContent{Body: "Leaked documents show the firm sold user data without consent."}
	clean := domain.StoryContent{Body: "The firm published its quarterly results."}

	if !scorer.HasRedFlags(flagged) {
		t.Fatal("expected red flags for undisclosed data sale")
	}
	if scorer.HasRedFlags(clean) {
		t.Fatal("unexpected red flags for clean content")
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
