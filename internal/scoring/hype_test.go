package scoring

import (
	"reflect"
	"testing"

	"StoryScanner/internal/domain"
)

func TestHypeScoreDeterminism(t *testing.T) {
	t.Parallel()

	content := domain.StoryContent{
		Title: "Revolutionary platform disrupts everything",
		Body:  "The best, fastest, most advanced product ever built!!!",
	}

	scorer := NewHypeScorer()
	first := scorer.Score(content)
	second := scorer.Score(content)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestHypeScoreBounds(t *testing.T) {
	t.Parallel()

	scorer := NewHypeScorer()

	inputs := []domain.StoryContent{
		{},
		{Title: "!!!"},
		{Title: "Revolutionary breakthrough", Body: "The greatest, best, most advanced, game-changing, revolutionary, unprecedented breakthrough that will change everything!!! 10x!!!"},
		{Body: "plain factual text about a product release"},
	}

	for _, content := range inputs {
		result := scorer.Score(content)
		if result.Score < 1 || result.Score > 10 {
			t.Fatalf("score %d out of bounds for %q", result.Score, content.Title)
		}
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Fatalf("confidence %f out of bounds", result.Confidence)
		}
		for name, sub := range result.Breakdown {
			if sub < 0 || sub > 10 {
				t.Fatalf("breakdown %s=%f out of bounds", name, sub)
			}
		}
	}
}

func TestHypeScoreEmptyInput(t *testing.T) {
	t.Parallel()

	result := NewHypeScorer().Score(domain.StoryContent{})
	if result.Score != 1 {
		t.Fatalf("expected minimum score 1, got %d", result.Score)
	}
	if result.Confidence != emptyConfidence {
		t.Fatalf("expected minimum confidence %f, got %f", emptyConfidence, result.Confidence)
	}
}

func TestHypeScoreSensationalHeadline(t *testing.T) {
	t.Parallel()

	result := NewHypeScorer().Score(domain.StoryContent{
		Title: "Revolutionary AI breakthrough that will change everything!!!",
	})

	if result.Score < 8 {
		t.Fatalf("expected hype >= 8 for sensational headline, got %d (%+v)", result.Score, result)
	}
}

func TestHypeScoreTechnicalHeadline(t *testing.T) {
	t.Parallel()

	result := NewHypeScorer().Score(domain.StoryContent{
		Title: "Technical analysis of algorithm optimization in machine learning models",
	})

	if result.Score > 3 {
		t.Fatalf("expected hype <= 3 for technical headline, got %d (%+v)", result.Score, result)
	}
}

func TestHypeConfidenceGrowsWithLength(t *testing.T) {
	t.Parallel()

	scorer := NewHypeScorer()

	short := scorer.Score(domain.StoryContent{Body: "a short note about routers"})
	long := scorer.Score(domain.StoryContent{Body: repeatWords("the network stack handles packet scheduling across interfaces ", 60)})

	if short.Confidence >= long.Confidence {
		t.Fatalf("expected confidence to grow with length: short=%f long=%f", short.Confidence, long.Confidence)
	}
	if long.Confidence != ceilConfidence {
		t.Fatalf("expected long content to reach %f, got %f", ceilConfidence, long.Confidence)
	}
}

func repeatWords(chunk string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += chunk
	}
	return out
}
