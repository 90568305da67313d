package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfscope/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestGrade(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"},
		{90, "A"},
		{89, "B"},
		{80, "B"},
		{79, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %d", tt.score)
	}
}

func TestGrade_IsFunctionOfScore(t *testing.T) {
	for score := 0; score <= 100; score++ {
		r := Results(Audit{PerformanceScore: ptr(float64(score) / 100)})
		assert.Equal(t, score, r.Summary.Score)
		assert.Equal(t, Grade(score), r.Summary.Grade)
	}
}

func TestFractionToScore(t *testing.T) {
	assert.Nil(t, FractionToScore(nil))
	assert.Equal(t, 95, *FractionToScore(ptr(0.95)))
	assert.Equal(t, 0, *FractionToScore(ptr(0.0)))
	assert.Equal(t, 100, *FractionToScore(ptr(1.0)))
	assert.Equal(t, 100, *FractionToScore(ptr(1.7)), "clamped")
}

func TestResults_ScoreAndVitals(t *testing.T) {
	r := Results(Audit{
		TestID:           "t1",
		URL:              "https://example.com/",
		Provider:         "pagespeed",
		Strategy:         domain.StrategyMobile,
		PerformanceScore: ptr(0.95),
		Categories:       &Categories{Performance: ptr(0.95)},
		Metrics: Metrics{
			LCP:            1800,
			FCP:            900,
			SpeedIndex:     1500,
			TBT:            120,
			CLS:            0.02,
			TTFB:           200,
			LoadTime:       2600,
			StartRender:    900,
			VisualComplete: 1500,
		},
		FieldFID: ptr(35.0),
		Network:  Network{Requests: 3, BytesIn: 3000},
	})

	assert.Equal(t, 95, r.Summary.Score)
	assert.Equal(t, "A", r.Summary.Grade)
	assert.Equal(t, 1800.0, r.WebVitals.LCP)
	assert.Equal(t, 35.0, r.WebVitals.FID)
	assert.False(t, r.WebVitals.FIDApproximated)
	assert.Equal(t, 120.0, r.WebVitals.TBT)
	assert.Equal(t, 200.0, r.Summary.FirstByteTime)
	assert.Equal(t, 3, r.Summary.RequestsDoc)
	assert.Equal(t, int64(3000), r.Summary.BytesInDoc)

	require.Len(t, r.Runs, 1)
	assert.Equal(t, 2600.0, r.Runs[0].FirstView.LoadTime)
	assert.Equal(t, 3, r.Runs[0].FirstView.Requests)
}

func TestResults_FIDFallsBackToTBT(t *testing.T) {
	r := Results(Audit{Metrics: Metrics{TBT: 240}})

	assert.Equal(t, 240.0, r.WebVitals.FID)
	assert.True(t, r.WebVitals.FIDApproximated)
}

func TestResults_LenientDefaults(t *testing.T) {
	r := Results(Audit{})

	assert.Equal(t, 0, r.Summary.Score)
	assert.Equal(t, "F", r.Summary.Grade)
	assert.Zero(t, r.WebVitals.LCP)
	assert.Zero(t, r.Summary.Requests)
	assert.Zero(t, r.Summary.BytesIn)
	assert.Nil(t, r.Lighthouse)
	assert.Len(t, r.Runs, 1)
}

func TestResults_MissingCategoryIsNilNotZero(t *testing.T) {
	r := Results(Audit{Categories: &Categories{
		Performance:   ptr(0.5),
		BestPractices: ptr(0.0),
		SEO:           ptr(0.81),
	}})

	require.NotNil(t, r.Lighthouse)
	assert.Nil(t, r.Lighthouse.Accessibility)
	require.NotNil(t, r.Lighthouse.BestPractices)
	assert.Equal(t, 0, *r.Lighthouse.BestPractices)
	assert.Equal(t, 81, *r.Lighthouse.SEO)
}

func TestResults_NegativeMetricsClamped(t *testing.T) {
	r := Results(Audit{Metrics: Metrics{LCP: -5, CLS: -0.1}, Network: Network{Requests: -1, BytesIn: -10}})

	assert.Zero(t, r.WebVitals.LCP)
	assert.Zero(t, r.WebVitals.CLS)
	assert.Zero(t, r.Summary.Requests)
	assert.Zero(t, r.Summary.BytesIn)
}

func TestResults_ExplicitRunsAndDocCounters(t *testing.T) {
	r := Results(Audit{
		Network: Network{Requests: 40, BytesIn: 9000, RequestsDoc: ptr(30), BytesInDoc: ptr(int64(7000))},
		Runs: []domain.RunView{
			{LoadTime: 1000, Requests: 40},
			{LoadTime: 1100, Requests: 41},
		},
	})

	assert.Equal(t, 30, r.Summary.RequestsDoc)
	assert.Equal(t, int64(7000), r.Summary.BytesInDoc)
	require.Len(t, r.Runs, 2)
	assert.Equal(t, 1100.0, r.Runs[1].FirstView.LoadTime)
}

func TestScoreFromVitals(t *testing.T) {
	assert.Equal(t, 100, ScoreFromVitals(1000, 50, 0.05, 2000, 300, 1000))
	// every metric past its poor threshold
	assert.Equal(t, 0, ScoreFromVitals(5000, 400, 0.3, 6000, 2000, 4000))
	// LCP needs improvement (-10), CLS poor (-20)
	assert.Equal(t, 70, ScoreFromVitals(3000, 0, 0.3, 0, 0, 0))
	// thresholds are exclusive: exactly 2500ms is still good
	assert.Equal(t, 100, ScoreFromVitals(2500, 100, 0.1, 3400, 800, 1800))
}
