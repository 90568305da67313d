package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Core domain models used internally. HTTP payload shapes live in
// internal/adapters/http; keep these decoupled where helpful.

// Status is the lifecycle state of a Test.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Predecessors lists the statuses a test may be in immediately before moving to s.
func (s Status) Predecessors() []Status {
	switch s {
	case StatusRunning:
		return []Status{StatusPending}
	case StatusCompleted:
		return []Status{StatusRunning}
	case StatusFailed:
		// PENDING -> FAILED happens when the RUNNING write itself fails.
		return []Status{StatusPending, StatusRunning}
	}
	return nil
}

// CanTransitionTo reports whether s -> next is a legal forward move.
func (s Status) CanTransitionTo(next Status) bool {
	for _, p := range next.Predecessors() {
		if p == s {
			return true
		}
	}
	return false
}

// ParseStatus accepts any casing.
func ParseStatus(v string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(v)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", v)
	}
	return st, nil
}

// Strategy selects the simulated device profile.
type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

// ParseStrategy defaults to mobile for an empty value.
func ParseStrategy(v string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(v))); s {
	case "":
		return StrategyMobile, nil
	case StrategyMobile, StrategyDesktop:
		return s, nil
	}
	return "", fmt.Errorf("invalid strategy %q", v)
}

// Test is one submitted performance test and the only persisted core entity.
type Test struct {
	ID          string
	UserID      *string
	URL         string
	Domain      string
	Strategy    Strategy
	Provider    string
	Status      Status
	Results     *string // serialized Results, set only with COMPLETED
	Error       *string // set only with FAILED
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// DecodeResults parses the serialized results, returning nil when none are stored.
func (t *Test) DecodeResults() (*Results, error) {
	if t.Results == nil || *t.Results == "" {
		return nil, nil
	}
	var r Results
	if err := json.Unmarshal([]byte(*t.Results), &r); err != nil {
		return nil, fmt.Errorf("decode results for test %s: %w", t.ID, err)
	}
	return &r, nil
}

// StatusFields carries the columns written alongside a status change.
type StatusFields struct {
	Results     *string
	Error       *string
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// TestFilter narrows List queries. Zero values mean "any".
type TestFilter struct {
	UserID string
	Domain string
	Status Status
	Limit  int
}

// Results is the provider-agnostic normalized analysis stored in Test.Results.
type Results struct {
	TestID     string            `json:"testId"`
	URL        string            `json:"url"`
	Provider   string            `json:"provider,omitempty"`
	Strategy   Strategy          `json:"strategy,omitempty"`
	Summary    Summary           `json:"summary"`
	WebVitals  WebVitals         `json:"webVitals"`
	Lighthouse *LighthouseScores `json:"lighthouse,omitempty"`
	Runs       []Run             `json:"runs"`
}

type Summary struct {
	Score          int     `json:"score"`
	Grade          string  `json:"grade"`
	LoadTime       float64 `json:"loadTime"`
	FirstByteTime  float64 `json:"firstByteTime"`
	StartRender    float64 `json:"startRender"`
	VisualComplete float64 `json:"visualComplete"`
	SpeedIndex     float64 `json:"speedIndex"`
	RequestsDoc    int     `json:"requestsDoc"`
	BytesInDoc     int64   `json:"bytesInDoc"`
	Requests       int     `json:"requests"`
	BytesIn        int64   `json:"bytesIn"`
}

// WebVitals holds lab/field timings in milliseconds (CLS is unitless).
// When FIDApproximated is true, FID carries Total Blocking Time instead of field FID.
type WebVitals struct {
	LCP             float64 `json:"LCP"`
	FID             float64 `json:"FID"`
	CLS             float64 `json:"CLS"`
	TTFB            float64 `json:"TTFB"`
	FCP             float64 `json:"FCP"`
	SI              float64 `json:"SI"`
	TBT             float64 `json:"TBT"`
	FIDApproximated bool    `json:"fidApproximated"`
}

// LighthouseScores are 0-100; nil means the provider omitted the category.
type LighthouseScores struct {
	Performance   *int `json:"performance"`
	Accessibility *int `json:"accessibility"`
	BestPractices *int `json:"bestPractices"`
	SEO           *int `json:"seo"`
}

type Run struct {
	FirstView RunView `json:"firstView"`
}

type RunView struct {
	LoadTime       float64 `json:"loadTime"`
	TTFB           float64 `json:"TTFB"`
	Render         float64 `json:"render"`
	VisualComplete float64 `json:"visualComplete"`
	SpeedIndex     float64 `json:"speedIndex"`
	BytesIn        int64   `json:"bytesIn"`
	Requests       int     `json:"requests"`
}
