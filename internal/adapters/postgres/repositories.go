package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

var _ ports.TestRepository = (*DB)(nil)

const testColumns = `id, user_id, url, domain, strategy, provider, status, results, error, created_at, updated_at, completed_at`

const defaultListLimit = 50

type testRow struct {
	ID          string     `db:"id"`
	UserID      *string    `db:"user_id"`
	URL         string     `db:"url"`
	Domain      string     `db:"domain"`
	Strategy    string     `db:"strategy"`
	Provider    string     `db:"provider"`
	Status      string     `db:"status"`
	Results     *string    `db:"results"`
	Error       *string    `db:"error"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (r testRow) toDomain() domain.Test {
	return domain.Test{
		ID:          r.ID,
		UserID:      r.UserID,
		URL:         r.URL,
		Domain:      r.Domain,
		Strategy:    domain.Strategy(r.Strategy),
		Provider:    r.Provider,
		Status:      domain.Status(r.Status),
		Results:     r.Results,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
	}
}

func (db *DB) Insert(ctx context.Context, t *domain.Test) error {
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if t.Strategy == "" {
		t.Strategy = domain.StrategyMobile
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO tests (id, user_id, url, domain, strategy, provider, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, t.ID, t.UserID, t.URL, strings.ToLower(t.Domain), string(t.Strategy), t.Provider, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("test %s: %w", t.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert test: %w", err)
	}
	return nil
}

func (db *DB) FindByID(ctx context.Context, id string) (*domain.Test, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+testColumns+` FROM tests WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[testRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t := row.toDomain()
	return &t, nil
}

// List returns newest first.
func (db *DB) List(ctx context.Context, f domain.TestFilter) ([]domain.Test, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.Domain != "" {
		add("domain = $%d", strings.ToLower(f.Domain))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	q := `SELECT ` + testColumns + ` FROM tests`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	return db.queryTests(ctx, q, args...)
}

// LatestCompletedByDomain is the ScoreRepository lookup for the profiles dashboard.
func (db *DB) LatestCompletedByDomain(ctx context.Context, registrable string) (*domain.Test, error) {
	tests, err := db.queryTests(ctx, `
        SELECT `+testColumns+` FROM tests
        WHERE domain = $1 AND status = 'COMPLETED'
        ORDER BY completed_at DESC, id DESC
        LIMIT 1
    `, strings.ToLower(registrable))
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, domain.ErrNotFound
	}
	return &tests[0], nil
}

func (db *DB) queryTests(ctx context.Context, q string, args ...any) ([]domain.Test, error) {
	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[testRow])
	if err != nil {
		return nil, err
	}
	out := make([]domain.Test, 0, len(collected))
	for _, r := range collected {
		out = append(out, r.toDomain())
	}
	return out, nil
}
