// Package normalize maps provider-agnostic audit records onto domain.Results.
//
// Each provider adapter (pagespeed, webpagetest) translates its raw response
// into an Audit; scoring, grading and the lenient defaulting policy live here
// once. Missing metrics become 0 and missing Lighthouse categories become nil;
// neither is an error.
package normalize

import (
	"math"

	"perfscope/internal/domain"
)

// Audit is the intermediate record produced by provider adapters.
type Audit struct {
	TestID   string
	URL      string
	Provider string
	Strategy domain.Strategy

	// PerformanceScore is a 0.0-1.0 fraction; nil yields score 0.
	PerformanceScore *float64
	// Categories is nil when the provider reported no Lighthouse data at all.
	Categories *Categories

	Metrics Metrics
	// FieldFID is field-collected First Input Delay. When nil, FID falls back
	// to Metrics.TBT and WebVitals.FIDApproximated is set.
	FieldFID *float64

	Network Network
	// Runs are per-run snapshots; when empty a single run is derived from
	// Metrics and Network.
	Runs []domain.RunView
}

// Categories are 0.0-1.0 fractions; nil means the category was omitted.
type Categories struct {
	Performance   *float64
	Accessibility *float64
	BestPractices *float64
	SEO           *float64
}

// Metrics are milliseconds, except CLS which is unitless.
type Metrics struct {
	LCP            float64
	FCP            float64
	SpeedIndex     float64
	TBT            float64
	CLS            float64
	TTFB           float64
	LoadTime       float64
	StartRender    float64
	VisualComplete float64
}

type Network struct {
	Requests int
	BytesIn  int64
	// Document-complete counters; nil means "same as the totals".
	RequestsDoc *int
	BytesInDoc  *int64
}

// Grade maps a 0-100 score to a letter. Lower bounds are inclusive.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	}
	return "F"
}

// FractionToScore converts a 0.0-1.0 fraction to a 0-100 integer, nil for nil.
func FractionToScore(f *float64) *int {
	if f == nil || math.IsNaN(*f) {
		return nil
	}
	v := clamp(int(math.Round(*f*100)), 0, 100)
	return &v
}

// Results builds the normalized result. It never fails.
func Results(a Audit) *domain.Results {
	score := 0
	if s := FractionToScore(a.PerformanceScore); s != nil {
		score = *s
	}

	m := a.Metrics
	vitals := domain.WebVitals{
		LCP:  nonNeg(m.LCP),
		CLS:  nonNeg(m.CLS),
		TTFB: nonNeg(m.TTFB),
		FCP:  nonNeg(m.FCP),
		SI:   nonNeg(m.SpeedIndex),
		TBT:  nonNeg(m.TBT),
	}
	if a.FieldFID != nil {
		vitals.FID = nonNeg(*a.FieldFID)
	} else {
		// No field data: Total Blocking Time stands in for FID.
		vitals.FID = vitals.TBT
		vitals.FIDApproximated = true
	}

	requestsDoc := a.Network.Requests
	if a.Network.RequestsDoc != nil {
		requestsDoc = *a.Network.RequestsDoc
	}
	bytesInDoc := a.Network.BytesIn
	if a.Network.BytesInDoc != nil {
		bytesInDoc = *a.Network.BytesInDoc
	}

	out := &domain.Results{
		TestID:   a.TestID,
		URL:      a.URL,
		Provider: a.Provider,
		Strategy: a.Strategy,
		Summary: domain.Summary{
			Score:          score,
			Grade:          Grade(score),
			LoadTime:       nonNeg(m.LoadTime),
			FirstByteTime:  vitals.TTFB,
			StartRender:    nonNeg(m.StartRender),
			VisualComplete: nonNeg(m.VisualComplete),
			SpeedIndex:     vitals.SI,
			RequestsDoc:    max(requestsDoc, 0),
			BytesInDoc:     max(bytesInDoc, 0),
			Requests:       max(a.Network.Requests, 0),
			BytesIn:        max(a.Network.BytesIn, 0),
		},
		WebVitals: vitals,
	}

	if c := a.Categories; c != nil {
		out.Lighthouse = &domain.LighthouseScores{
			Performance:   FractionToScore(c.Performance),
			Accessibility: FractionToScore(c.Accessibility),
			BestPractices: FractionToScore(c.BestPractices),
			SEO:           FractionToScore(c.SEO),
		}
	}

	if len(a.Runs) > 0 {
		out.Runs = make([]domain.Run, 0, len(a.Runs))
		for _, r := range a.Runs {
			out.Runs = append(out.Runs, domain.Run{FirstView: r})
		}
	} else {
		out.Runs = []domain.Run{{FirstView: domain.RunView{
			LoadTime:       out.Summary.LoadTime,
			TTFB:           out.Summary.FirstByteTime,
			Render:         out.Summary.StartRender,
			VisualComplete: out.Summary.VisualComplete,
			SpeedIndex:     out.Summary.SpeedIndex,
			BytesIn:        out.Summary.BytesIn,
			Requests:       out.Summary.Requests,
		}}}
	}
	return out
}

func nonNeg(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
