package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"StoryScanner/internal/config"
	"StoryScanner/internal/domain"
	"StoryScanner/internal/ports"
)

// Client implements ports.Enhancer against OpenAI-compatible chat
// APIs. Every failure mode collapses to ports.ErrUnavailable: the
// pipeline falls back to local scores, it never sees transport errors.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

var _ ports.Enhancer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.EnhancerConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Configured reports whether the service can be contacted at all.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != "" && c.model != ""
}

// enhancementPayload is the structured answer requested from the
// service. Everything in it is untrusted and re-clamped.
type enhancementPayload struct {
	HypeScore    float64 `json:"hype_score"`
	EthicsScore  float64 `json:"ethics_score"`
	RealityCheck string  `json:"reality_check"`
	Summary      string  `json:"summary"`
	Confidence   float64 `json:"confidence"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Enhance performs one bounded call refining the local scores.
func (c *Client) Enhance(ctx context.Context, content domain.StoryContent, hype, ethics domain.LocalScoreResult) (*domain.EnhancementResult, error) {
	if !c.Configured() {
		return nil, ports.ErrUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, ports.ErrUnavailable
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": c.systemPrompt},
			{"role": "user", "content": buildPrompt(content, hype, ethics)},
		},
	})
	if err != nil {
		return nil, ports.ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ports.ErrUnavailable
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ports.ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, ports.ErrUnavailable
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, ports.ErrUnavailable
	}
	if len(parsed.Choices) == 0 {
		return nil, ports.ErrUnavailable
	}

	payload, err := extractPayload(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, ports.ErrUnavailable
	}

	return &domain.EnhancementResult{
		HypeScore:    clampScore(payload.HypeScore),
		EthicsScore:  clampScore(payload.EthicsScore),
		RealityCheck: strings.TrimSpace(payload.RealityCheck),
		Summary:      strings.TrimSpace(payload.Summary),
		Confidence:   clampConfidence(payload.Confidence),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func buildPrompt(content domain.StoryContent, hype, ethics domain.LocalScoreResult) string {
	request := map[string]any{
		"title":              content.Title,
		"body":               content.Body,
		"source_url":         content.SourceURL,
		"local_hype_score":   hype.Score,
		"local_ethics_score": ethics.Score,
	}
	encoded, _ := json.Marshal(request)

	return "Refine the local hype and ethics scores for this technology story. " +
		"Respond with a JSON object containing hype_score (1-10), ethics_score (1-10), " +
		"reality_check (one short paragraph), summary (one sentence), and confidence (0-1).\n" +
		string(encoded)
}

// extractPayload pulls the structured answer out of the message even
// when the service wraps it in markdown fences or surrounding prose.
func extractPayload(message string) (enhancementPayload, error) {
	var payload enhancementPayload

	cleaned := strings.TrimSpace(message)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return payload, fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

func clampScore(v float64) int {
	score := int(v + 0.5)
	switch {
	case score < 1:
		return 1
	case score > 10:
		return 10
	}
	return score
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You review technology stories for hype and ethics signals."
	}
	return prompt
}
