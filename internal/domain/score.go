package domain

// LocalScoreResult is the output of one deterministic scorer invocation.
// It is never persisted on its own; callers receive it wrapped in a
// CombinedScoreResult.
type LocalScoreResult struct {
	Score           int
	Confidence      float64
	Breakdown       map[string]float64
	Tags            []string
	Reasoning       []string
	Recommendations []string
}

// EnhancementResult is the refined output of the external analysis
// service. Absent entirely when the call fails, times out, or the
// service is unconfigured.
type EnhancementResult struct {
	HypeScore    int
	EthicsScore  int
	RealityCheck string
	Summary      string
	Confidence   float64
	LatencyMs    int64
}

// CombinedScoreResult is the only externally visible scoring artifact.
// It is derived from the local and (optional) enhancement results but
// retains no references to them.
type CombinedScoreResult struct {
	HypeScore        int      `json:"hypeScore"`
	EthicsScore      int      `json:"ethicsScore"`
	ImpactTags       []string `json:"impactTags"`
	Confidence       float64  `json:"confidence"`
	Enhanced         bool     `json:"enhanced"`
	Recommendations  []string `json:"recommendations"`
	ProcessingTimeMs int64    `json:"processingTimeMs"`
}

// QueueStats is the operational health read exposed for dashboards.
type QueueStats struct {
	Waiting            int  `json:"waiting"`
	Active             int  `json:"active"`
	Completed          int  `json:"completed"`
	Failed             int  `json:"failed"`
	EnhancerConfigured bool `json:"enhancerConfigured"`
}
