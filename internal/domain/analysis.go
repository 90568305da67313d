package domain

// Analysis is the AI-written review of a test's normalized results.
type Analysis struct {
	Score           int              `json:"score"`
	Grade           string           `json:"grade"`
	Summary         string           `json:"summary"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	KeyInsights     []string         `json:"keyInsights"`
	Fallback        bool             `json:"fallback,omitempty"`
}

type Issue struct {
	Metric      string  `json:"metric"`
	Current     float64 `json:"current"`
	Target      float64 `json:"target"`
	Severity    string  `json:"severity"` // high|medium|low
	Description string  `json:"description"`
}

type Recommendation struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"` // High|Medium|Low
	ExpectedImpact string   `json:"expectedImpact"`
	Implementation string   `json:"implementation"`
	Metrics        []string `json:"metrics"`
}
