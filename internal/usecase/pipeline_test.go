package usecase

import (
	"context"
	"reflect"
	"testing"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
	"StoryScanner/internal/scoring"
)

type stubEnhancer struct {
	result *domain.EnhancementResult
	err    error
	calls  int
}

func (s *stubEnhancer) Enhance(_ context.Context, _ domain.StoryContent, _, _ domain.LocalScoreResult) (*domain.EnhancementResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEnhancer) Configured() bool { return s.err == nil }

func newTestPipeline(enhancer ports.Enhancer) *Pipeline {
	return NewPipeline(PipelineDeps{
		Hype:     scoring.NewHypeScorer(),
		Ethics:   scoring.NewEthicsScorer(nil),
		Enhancer: enhancer,
	})
}

func TestScoreLocalCombinesBothScorers(t *testing.T) {
	t.Parallel()

	pipeline := newTestPipeline(nil)
	result := pipeline.ScoreLocal(context.Background(), domain.StoryContent{
		Title: "Revolutionary AI breakthrough that will change everything!!!",
	}, nil)

	if result.Enhanced {
		t.Fatal("local scoring must not set the enhanced flag")
	}
	if result.HypeScore < 8 {
		t.Fatalf("expected high hype score, got %d", result.HypeScore)
	}
	if !hasTag(result.ImpactTags, "high-hype") {
		t.Fatalf("expected high-hype tag, got %v", result.ImpactTags)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Fatalf("confidence %f out of bounds", result.Confidence)
	}
}

func TestScoreWithEnhancementFallback(t *testing.T) {
	t.Parallel()

	content := domain.StoryContent{
		Title: "Vendor announces incremental firmware update",
		Body:  "The release focuses on protocol compliance and latency improvements.",
	}

	enhancer := &stubEnhancer{err: ports.ErrUnavailable}
	pipeline := newTestPipeline(enhancer)

	local := pipeline.ScoreLocal(context.Background(), content, nil)
	fallback := pipeline.ScoreWithEnhancement(context.Background(), content, nil)

	if enhancer.calls != 1 {
		t.Fatalf("expected exactly one enhancement attempt, got %d", enhancer.calls)
	}
	if fallback.Enhanced {
		t.Fatal("fallback result must not be marked enhanced")
	}

	// ProcessingTimeMs is wall-clock and may differ between calls.
	local.ProcessingTimeMs = 0
	fallback.ProcessingTimeMs = 0
	if !reflect.DeepEqual(local, fallback) {
		t.Fatalf("fallback differs from local:\nlocal:    %+v\nfallback: %+v", local, fallback)
	}
}

func TestScoreWithEnhancementBlend(t *testing.T) {
	t.Parallel()

	// Local hype for this content is 4; blended with enhanced 8 the
	// fixed 80/20 mix must round to 7.
	if got := blend(8, 4); got != 7 {
		t.Fatalf("blend(8, 4) = %d, want 7", got)
	}
	if got := blend(10, 1); got != 8 {
		t.Fatalf("blend(10, 1) = %d, want 8", got)
	}
}

func TestScoreWithEnhancementAppliesResult(t *testing.T) {
	t.Parallel()

	enhancer := &stubEnhancer{result: &domain.EnhancementResult{
		HypeScore:   10,
		EthicsScore: 1,
		Confidence:  0.95,
		Summary:     "pure marketing",
	}}
	pipeline := newTestPipeline(enhancer)

	result := pipeline.ScoreWithEnhancement(context.Background(), domain.StoryContent{
		Title: "Startup ships minor dashboard refresh",
	}, nil)

	if !result.Enhanced {
		t.Fatal("expected enhanced flag")
	}
	if result.Confidence != 0.95 {
		t.Fatalf("expected max confidence 0.95, got %f", result.Confidence)
	}
	if result.HypeScore < 8 {
		t.Fatalf("expected blended hype >= 8, got %d", result.HypeScore)
	}
	if result.EthicsScore > clickbaitEthicsMax {
		t.Fatalf("expected blended ethics <= %d, got %d", clickbaitEthicsMax, result.EthicsScore)
	}
	if !hasTag(result.ImpactTags, "potential-clickbait") {
		t.Fatalf("expected potential-clickbait tag, got %v", result.ImpactTags)
	}
}

func TestClickbaitTagAbsentForCleanContent(t *testing.T) {
	t.Parallel()

	enhancer := &stubEnhancer{result: &domain.EnhancementResult{
		HypeScore:   2,
		EthicsScore: 9,
		Confidence:  0.9,
	}}
	pipeline := newTestPipeline(enhancer)

	result := pipeline.ScoreWithEnhancement(context.Background(), domain.StoryContent{
		Title: "Vendor publishes transparency report and independent audit",
	}, nil)

	if hasTag(result.ImpactTags, "potential-clickbait") {
		t.Fatalf("unexpected potential-clickbait tag in %v", result.ImpactTags)
	}
}

func TestCrossTags(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hype, ethics int
		want         []string
	}{
		{9, 3, []string{"high-hype", "unethical", "potential-clickbait"}},
		{2, 9, []string{"low-hype", "ethical"}},
		{5, 5, nil},
		{8, 4, []string{"high-hype", "potential-clickbait"}},
	}

	for _, tc := range cases {
		got := crossTags(tc.hype, tc.ethics)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("crossTags(%d, %d) = %v, want %v", tc.hype, tc.ethics, got, tc.want)
		}
	}
}

func TestEnqueueWithoutQueue(t *testing.T) {
	t.Parallel()

	pipeline := newTestPipeline(nil)
	if _, err := pipeline.EnqueueEnhancement(context.Background(), "story-1"); err == nil {
		t.Fatal("expected error when queue is not attached")
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
