// Package sqlite is the single-file test store used for local runs. It
// satisfies the same contract as the Postgres store.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

const defaultListLimit = 50

// Compile-time interface check.
var _ ports.TestRepository = (*Store)(nil)

// testModel is the gorm mapping of the tests table.
type testModel struct {
	ID          string  `gorm:"primaryKey"`
	UserID      *string `gorm:"index:idx_tests_user_created,priority:1"`
	URL         string  `gorm:"not null"`
	Domain      string  `gorm:"not null;default:'';index"`
	Strategy    string  `gorm:"not null;default:'mobile'"`
	Provider    string  `gorm:"not null;default:''"`
	Status      string  `gorm:"not null;index:idx_tests_status_created,priority:1"`
	Results     *string
	Error       *string
	CreatedAt   time.Time `gorm:"not null;index:idx_tests_status_created,priority:2;index:idx_tests_user_created,priority:2"`
	UpdatedAt   time.Time `gorm:"not null"`
	CompletedAt *time.Time
}

func (testModel) TableName() string { return "tests" }

func (m testModel) toDomain() domain.Test {
	return domain.Test{
		ID:          m.ID,
		UserID:      m.UserID,
		URL:         m.URL,
		Domain:      m.Domain,
		Strategy:    domain.Strategy(m.Strategy),
		Provider:    m.Provider,
		Status:      domain.Status(m.Status),
		Results:     m.Results,
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CompletedAt: m.CompletedAt,
	}
}

type Store struct {
	log logrus.FieldLogger
	db  *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(ctx context.Context, path string, log logrus.FieldLogger) (*Store, error) {
	// Serialize writers; concurrent processor tasks otherwise hit SQLITE_BUSY.
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.WithContext(ctx).AutoMigrate(&testModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log = log.WithField("component", "sqlite-store")
	log.WithField("path", path).Info("Database connected")

	return &Store{log: log, db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) Insert(ctx context.Context, t *domain.Test) error {
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if t.Strategy == "" {
		t.Strategy = domain.StrategyMobile
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	m := testModel{
		ID:        t.ID,
		UserID:    t.UserID,
		URL:       t.URL,
		Domain:    strings.ToLower(t.Domain),
		Strategy:  string(t.Strategy),
		Provider:  t.Provider,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
	err := s.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || (err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")) {
		return fmt.Errorf("test %s: %w", t.ID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("creating test: %w", err)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.Status, f domain.StatusFields) error {
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

	// Timestamps are stored as text; UTC keeps their order chronological.
	updates := map[string]any{
		"status":     string(status),
		"updated_at": updatedAt.UTC(),
	}
	switch status {
	case domain.StatusCompleted:
		if f.Results == nil {
			return fmt.Errorf("%w: COMPLETED requires results", domain.ErrInvalidTransition)
		}
		completedAt := updatedAt
		if f.CompletedAt != nil {
			completedAt = *f.CompletedAt
		}
		updates["results"] = *f.Results
		updates["completed_at"] = completedAt.UTC()
	case domain.StatusFailed:
		msg := ""
		if f.Error != nil {
			msg = *f.Error
		}
		updates["error"] = msg
	}

	res := s.db.WithContext(ctx).
		Model(&testModel{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating test %s to %s: %w", id, status, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var current testModel
	err := s.db.WithContext(ctx).Select("status").Where("id = ?", id).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading test %s: %w", id, err)
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
}

func (s *Store) SelectByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.Test, error) {
	if limit <= 0 {
		return nil, nil
	}
	var models []testModel
	if err := s.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("selecting %s tests: %w", status, err)
	}
	return toDomain(models), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Test, error) {
	var m testModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting test by id: %w", err)
	}
	t := m.toDomain()
	return &t, nil
}

func (s *Store) List(ctx context.Context, f domain.TestFilter) ([]domain.Test, error) {
	q := s.db.WithContext(ctx).Model(&testModel{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Domain != "" {
		q = q.Where("domain = ?", strings.ToLower(f.Domain))
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	var models []testModel
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}
	return toDomain(models), nil
}

func (s *Store) LatestCompletedByDomain(ctx context.Context, registrable string) (*domain.Test, error) {
	var m testModel
	err := s.db.WithContext(ctx).
		Where("domain = ? AND status = ?", strings.ToLower(registrable), string(domain.StatusCompleted)).
		Order("completed_at DESC").Order("id DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed test for %s: %w", registrable, err)
	}
	t := m.toDomain()
	return &t, nil
}

func toDomain(models []testModel) []domain.Test {
	out := make([]domain.Test, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out
}
