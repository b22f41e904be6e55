package domain

// StoryContent is the editorial text a scoring attempt operates on.
// It is owned by the persistent store; the pipeline never mutates it.
type StoryContent struct {
	ID        string
	Title     string
	Body      string
	SourceURL string
	CompanyID string
}

// CompanyContext carries optional company metadata used to adjust
// ethics category scores and confidence.
type CompanyContext struct {
	ID                 string
	Name               string
	Sectors            []string
	HasEthicsStatement bool
	HasPrivacyPolicy   bool
	PriorCredibility   *float64
	PriorEthicsScore   *float64
}
