// Package insights asks a generative model to review normalized test results
// and falls back to a canned analysis when the model is unavailable or
// answers with something unusable.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

var (
	ErrResultsRequired = &domain.ValidationError{Field: "testResults", Message: "Test results are required"}
	ErrTestNotComplete = &domain.ValidationError{Field: "testId", Message: "Test has no results yet"}

	errInvalidAnalysis = errors.New("invalid AI response structure")

	fence = regexp.MustCompile("```json\\n?|```\\n?")

	_ ports.Insights = (*Service)(nil)
)

type Service struct {
	model ports.Summarizer
	tests ports.TestRepository
	log   logrus.FieldLogger
}

// New builds the service. model may be nil, in which case every analysis is
// the fallback.
func New(model ports.Summarizer, tests ports.TestRepository, log logrus.FieldLogger) *Service {
	return &Service{model: model, tests: tests, log: log.WithField("component", "insights")}
}

func (s *Service) AnalyzeTest(ctx context.Context, testID string) (*domain.Analysis, error) {
	t, err := s.tests.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	res, err := t.DecodeResults()
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrTestNotComplete
	}
	return s.Analyze(ctx, res)
}

func (s *Service) Analyze(ctx context.Context, results *domain.Results) (*domain.Analysis, error) {
	if results == nil {
		return nil, ErrResultsRequired
	}
	if s.model == nil {
		return Fallback(results), nil
	}

	prompt, err := buildPrompt(results)
	if err != nil {
		return nil, err
	}
	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		s.log.WithError(err).Warn("AI generation failed; using fallback analysis")
		return Fallback(results), nil
	}
	analysis, err := parse(text)
	if err != nil {
		s.log.WithError(err).WithField("raw", truncate(text, 500)).Warn("Failed to parse AI response; using fallback analysis")
		return Fallback(results), nil
	}
	return analysis, nil
}

func parse(text string) (*domain.Analysis, error) {
	text = strings.TrimSpace(fence.ReplaceAllString(text, ""))
	var a domain.Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if a.Score == 0 || a.Recommendations == nil {
		return nil, errInvalidAnalysis
	}
	if a.Issues == nil {
		a.Issues = []domain.Issue{}
	}
	if a.KeyInsights == nil {
		a.KeyInsights = []string{}
	}
	return &a, nil
}

// Fallback is the analysis returned when the model cannot be used. It keeps
// the test's own score and grade.
func Fallback(results *domain.Results) *domain.Analysis {
	score, grade := 70, "C"
	if results != nil && results.Summary.Score != 0 {
		score = results.Summary.Score
	}
	if results != nil && results.Summary.Grade != "" {
		grade = results.Summary.Grade
	}
	return &domain.Analysis{
		Score:   score,
		Grade:   grade,
		Summary: "Performance analysis completed. Review the detailed metrics below for optimization opportunities.",
		Issues:  []domain.Issue{},
		Recommendations: []domain.Recommendation{
			{
				Title:          "Optimize Images",
				Description:    "Compress and optimize images to reduce load times",
				Priority:       "High",
				ExpectedImpact: "Improved LCP and overall load time",
				Implementation: "Use modern image formats (WebP, AVIF) and appropriate sizing",
				Metrics:        []string{"LCP", "Load Time"},
			},
			{
				Title:          "Enable Caching",
				Description:    "Implement browser and server-side caching strategies",
				Priority:       "High",
				ExpectedImpact: "Faster repeat visits and reduced server load",
				Implementation: "Configure cache headers and use a CDN",
				Metrics:        []string{"TTFB", "Load Time"},
			},
			{
				Title:          "Minify Resources",
				Description:    "Minify CSS, JavaScript, and HTML files",
				Priority:       "Medium",
				ExpectedImpact: "Reduced file sizes and faster downloads",
				Implementation: "Use build tools to automatically minify files",
				Metrics:        []string{"Load Time", "FCP"},
			},
		},
		KeyInsights: []string{
			"Focus on Core Web Vitals for better user experience",
			"Regular performance monitoring is essential",
			"Mobile performance should be prioritized",
		},
		Fallback: true,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
