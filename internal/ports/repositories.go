package ports

import (
	"context"

	"perfscope/internal/domain"
)

// TestRepository is the persisted table of test jobs. Every method is atomic at
// the row level; no cross-row transactions are required by callers.
type TestRepository interface {
	Insert(ctx context.Context, t *domain.Test) error
	// UpdateStatus applies the change only if the row is currently in one of
	// status.Predecessors(); otherwise it returns domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, status domain.Status, fields domain.StatusFields) error
	// SelectByStatus returns oldest-first (created_at, id).
	SelectByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.Test, error)
	FindByID(ctx context.Context, id string) (*domain.Test, error)
	List(ctx context.Context, filter domain.TestFilter) ([]domain.Test, error)
	LatestCompletedByDomain(ctx context.Context, registrable string) (*domain.Test, error)
}
