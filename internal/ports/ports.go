package ports

import (
	"context"

	"perfscope/internal/domain"
)

// Analyzer runs one blocking audit of url against an external provider and
// returns normalized results. Implementations do not retry.
type Analyzer interface {
	Analyze(ctx context.Context, url string, strategy domain.Strategy) (*domain.Results, error)
	Name() string
}

// Tests creates and reads test jobs on behalf of the API boundary.
type Tests interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Test, error)
	Get(ctx context.Context, id string) (*domain.Test, error)
	List(ctx context.Context, filter domain.TestFilter) ([]domain.Test, error)
}

type SubmitRequest struct {
	URL      string
	Strategy string
	UserID   *string
}

// Profiles provides the latest completed result for a registrable domain.
type Profiles interface {
	GetLatest(ctx context.Context, domain string) (*domain.Test, error)
}

// Insights produces an AI-written review of normalized results.
type Insights interface {
	Analyze(ctx context.Context, results *domain.Results) (*domain.Analysis, error)
	AnalyzeTest(ctx context.Context, testID string) (*domain.Analysis, error)
}

// Summarizer is the generative model collaborator behind Insights.
type Summarizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
