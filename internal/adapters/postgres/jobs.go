package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"perfscope/internal/domain"
)

// SelectByStatus returns up to limit tests oldest first. No row lock is taken:
// the guarded RUNNING transition in UpdateStatus is the claim.
func (db *DB) SelectByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.Test, error) {
	if limit <= 0 {
		return nil, nil
	}
	return db.queryTests(ctx, `
        SELECT `+testColumns+` FROM tests
        WHERE status = $1
        ORDER BY created_at ASC, id ASC
        LIMIT $2
    `, string(status), limit)
}

// UpdateStatus moves a test forward. The UPDATE only matches rows currently in
// one of status.Predecessors(), so two writers racing for the same transition
// see exactly one success.
func (db *DB) UpdateStatus(ctx context.Context, id string, status domain.Status, f domain.StatusFields) error {
	preds := status.Predecessors()
	if len(preds) == 0 {
		return fmt.Errorf("%w: cannot move to %s", domain.ErrInvalidTransition, status)
	}
	from := make([]string, len(preds))
	for i, p := range preds {
		from[i] = string(p)
	}
	updatedAt := f.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	var (
		results, errText *string
		completedAt      *time.Time
	)
	switch status {
	case domain.StatusCompleted:
		if f.Results == nil {
			return fmt.Errorf("%w: COMPLETED requires results", domain.ErrInvalidTransition)
		}
		results = f.Results
		completedAt = f.CompletedAt
		if completedAt == nil {
			completedAt = &updatedAt
		}
	case domain.StatusFailed:
		msg := ""
		if f.Error != nil {
			msg = *f.Error
		}
		errText = &msg
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
        UPDATE tests
        SET status = $2, updated_at = $3, results = $4, error = $5, completed_at = $6
        WHERE id = $1 AND status = ANY($7)
    `, id, string(status), updatedAt, results, errText, completedAt, from)
	if err != nil {
		return fmt.Errorf("update test %s to %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = db.Pool.QueryRow(ctx, `SELECT status FROM tests WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, status)
}
