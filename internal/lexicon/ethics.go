package lexicon

import "fmt"

// Indicators pairs the positive and negative vocabulary for one ethics
// category.
type Indicators struct {
	Positive []string
	Negative []string
}

// Category names the five ethics dimensions with their combination
// weights. Order matters: it fixes the iteration order of every
// breakdown, tag, and recommendation the ethics scorer emits.
type Category struct {
	Name   string
	Weight float64
}

// Categories lists the ethics dimensions in canonical order.
var Categories = []Category{
	{Name: "privacy", Weight: 0.25},
	{Name: "labor", Weight: 0.20},
	{Name: "environment", Weight: 0.15},
	{Name: "safety", Weight: 0.25},
	{Name: "transparency", Weight: 0.15},
}

// Registry maps category names to their indicator sets.
type Registry struct {
	indicators map[string]Indicators
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{indicators: map[string]Indicators{}}
}

// Register adds or replaces the indicator set for a category.
func (r *Registry) Register(category string, ind Indicators) {
	if r.indicators == nil {
		r.indicators = map[string]Indicators{}
	}
	r.indicators[category] = ind
}

// Resolve returns the indicator set for a category or an error if it
// is absent.
func (r *Registry) Resolve(category string) (Indicators, error) {
	if ind, ok := r.indicators[category]; ok {
		return ind, nil
	}
	return Indicators{}, fmt.Errorf("category %s is not registered", category)
}

// DefaultEthics returns a registry preloaded with the built-in
// indicator vocabulary for all five categories.
func DefaultEthics() *Registry {
	r := NewRegistry()
	r.Register("privacy", Indicators{
		Positive: []string{
			"privacy policy", "data protection", "encryption", "end-to-end",
			"anonymized", "gdpr", "opt-in", "user consent", "data minimization",
		},
		Negative: []string{
			"data breach", "sold user data", "selling user data", "tracking users",
			"without consent", "surveillance", "data leak", "third-party trackers",
		},
	})
	r.Register("labor", Indicators{
		Positive: []string{
			"fair wages", "living wage", "unionized", "employee benefits",
			"worker safety", "collective bargaining", "parental leave",
		},
		Negative: []string{
			"layoffs", "wage theft", "union busting", "union-busting",
			"overworked", "gig workers", "unpaid overtime", "sweatshop",
		},
	})
	r.Register("environment", Indicators{
		Positive: []string{
			"carbon neutral", "renewable energy", "sustainability", "recycl",
			"emissions reduction", "net zero", "net-zero",
		},
		Negative: []string{
			"carbon emissions", "e-waste", "pollution", "greenwashing",
			"water usage", "fossil fuel", "environmental damage",
		},
	})
	r.Register("safety", Indicators{
		Positive: []string{
			"safety testing", "safety review", "red team", "red-team",
			"risk assessment", "independent audit", "responsible disclosure",
			"guardrails",
		},
		Negative: []string{
			"safety incident", "recall", "untested", "rushed to market",
			"ignored warnings", "falsified safety", "unsafe",
		},
	})
	r.Register("transparency", Indicators{
		Positive: []string{
			"transparency report", "open source", "open-source", "disclosed",
			"published audit", "peer-reviewed", "peer reviewed", "ethics statement",
		},
		Negative: []string{
			"secretive", "undisclosed", "refused to comment", "cover-up",
			"hidden fees", "misleading", "non-disclosure",
		},
	})
	return r
}
