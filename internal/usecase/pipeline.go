package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
	"StoryScanner/internal/scoring"
)

// Blend weights applied when enhancement succeeds: the external score
// dominates, but the local score keeps a floor influence so one bad
// response cannot swing the result to an extreme.
const (
	enhancedBlendWeight = 0.8
	localBlendWeight    = 0.2
)

// Cross-cutting tag thresholds derived from the final combined scores.
const (
	highScoreThreshold = 8
	lowScoreThreshold  = 3
	clickbaitEthicsMax = 4
)

// EnhancementQueue is the asynchronous surface the pipeline delegates
// to for out-of-band enhancement.
type EnhancementQueue interface {
	Enqueue(ctx context.Context, storyID string) (string, error)
	Job(ctx context.Context, jobID string) (*domain.ScoringJob, error)
	Stats(ctx context.Context) (domain.QueueStats, error)
}

// PipelineDeps wires the scorers and the enhancement adapter into the
// orchestration pipeline.
type PipelineDeps struct {
	Hype     scoring.HypeScorer
	Ethics   scoring.EthicsScorer
	Enhancer ports.Enhancer
	Logger   *slog.Logger
}

// Pipeline orchestrates the two-tier scoring flow: deterministic local
// scoring always, external enhancement when available.
type Pipeline struct {
	hype     scoring.HypeScorer
	ethics   scoring.EthicsScorer
	enhancer ports.Enhancer
	queue    EnhancementQueue
	logger   *slog.Logger
}

var _ ports.StoryScorer = (*Pipeline)(nil)

// NewPipeline constructs the orchestration component. The queue is
// attached separately because its worker consumes the pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		hype:     deps.Hype,
		ethics:   deps.Ethics,
		enhancer: deps.Enhancer,
		logger:   deps.Logger,
	}
}

// AttachQueue binds the job queue once it exists. Must be called
// before any asynchronous entry point is used.
func (p *Pipeline) AttachQueue(queue EnhancementQueue) {
	p.queue = queue
}

// ScoreLocal runs both deterministic scorers and combines them. It
// never fails: degenerate input degrades to minimum-confidence scores.
func (p *Pipeline) ScoreLocal(ctx context.Context, content domain.StoryContent, company *domain.CompanyContext) domain.CombinedScoreResult {
	start := time.Now()
	hype := p.hype.Score(content)
	ethics := p.ethics.Score(content, company)
	return p.combine(hype, ethics, nil, start)
}

// ScoreWithEnhancement runs the local tier, then attempts one bounded
// enhancement call. Unavailable enhancement degrades transparently to
// the local-only result; only the Enhanced flag tells the caller.
func (p *Pipeline) ScoreWithEnhancement(ctx context.Context, content domain.StoryContent, company *domain.CompanyContext) domain.CombinedScoreResult {
	start := time.Now()
	hype := p.hype.Score(content)
	ethics := p.ethics.Score(content, company)

	if p.enhancer == nil {
		return p.combine(hype, ethics, nil, start)
	}

	enhanced, err := p.enhancer.Enhance(ctx, content, hype, ethics)
	if err != nil {
		if !errors.Is(err, ports.ErrUnavailable) {
			p.debug("enhancement error treated as unavailable", "story", content.ID, "error", err)
		}
		return p.combine(hype, ethics, nil, start)
	}

	p.debug("enhancement applied",
		"story", content.ID,
		"latency_ms", enhanced.LatencyMs,
		"summary", enhanced.Summary)
	return p.combine(hype, ethics, enhanced, start)
}

// EnqueueEnhancement submits asynchronous enhancement for a stored
// story. A second enqueue while a job is in flight returns the
// existing job id rather than duplicating work.
func (p *Pipeline) EnqueueEnhancement(ctx context.Context, storyID string) (string, error) {
	if p.queue == nil {
		return "", fmt.Errorf("enhancement queue is not configured")
	}
	return p.queue.Enqueue(ctx, storyID)
}

// JobStatus looks up an enhancement job. Unknown or expired ids return
// nil, which callers must treat as "unknown", not as failure.
func (p *Pipeline) JobStatus(ctx context.Context, jobID string) (*domain.ScoringJob, error) {
	if p.queue == nil {
		return nil, fmt.Errorf("enhancement queue is not configured")
	}
	return p.queue.Job(ctx, jobID)
}

// QueueStats reports job counts and whether the enhancement service is
// configured, for operational dashboards.
func (p *Pipeline) QueueStats(ctx context.Context) (domain.QueueStats, error) {
	if p.queue == nil {
		return domain.QueueStats{}, fmt.Errorf("enhancement queue is not configured")
	}
	stats, err := p.queue.Stats(ctx)
	if err != nil {
		return domain.QueueStats{}, err
	}
	stats.EnhancerConfigured = p.enhancer != nil && p.enhancer.Configured()
	return stats, nil
}

func (p *Pipeline) combine(hype, ethics domain.LocalScoreResult, enhanced *domain.EnhancementResult, start time.Time) domain.CombinedScoreResult {
	result := domain.CombinedScoreResult{
		HypeScore:       hype.Score,
		EthicsScore:     ethics.Score,
		Confidence:      (hype.Confidence + ethics.Confidence) / 2,
		Recommendations: dedup(append(hype.Recommendations, ethics.Recommendations...)),
	}

	tags := append(append([]string{}, hype.Tags...), ethics.Tags...)

	if enhanced != nil {
		result.HypeScore = blend(enhanced.HypeScore, hype.Score)
		result.EthicsScore = blend(enhanced.EthicsScore, ethics.Score)
		result.Confidence = math.Max(result.Confidence, enhanced.Confidence)
		result.Enhanced = true
	}

	tags = append(tags, crossTags(result.HypeScore, result.EthicsScore)...)
	result.ImpactTags = dedup(tags)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// blend mixes the enhanced and local scores at the fixed 80/20 ratio
// and re-clamps, since the enhanced side is untrusted input.
func blend(enhanced, local int) int {
	mixed := int(math.Round(float64(enhanced)*enhancedBlendWeight + float64(local)*localBlendWeight))
	switch {
	case mixed < 1:
		return 1
	case mixed > 10:
		return 10
	}
	return mixed
}

// crossTags derives the signals neither scorer alone can produce.
func crossTags(hypeScore, ethicsScore int) []string {
	var tags []string
	switch {
	case hypeScore >= highScoreThreshold:
		tags = append(tags, "high-hype")
	case hypeScore <= lowScoreThreshold:
		tags = append(tags, "low-hype")
	}
	switch {
	case ethicsScore >= highScoreThreshold:
		tags = append(tags, "ethical")
	case ethicsScore <= lowScoreThreshold:
		tags = append(tags, "unethical")
	}
	if hypeScore >= highScoreThreshold && ethicsScore <= clickbaitEthicsMax {
		tags = append(tags, "potential-clickbait")
	}
	return tags
}

// dedup removes duplicates while preserving first-seen order, so tag
// output stays deterministic.
func dedup(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
