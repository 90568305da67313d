// Package storetest is the behavioural contract every ports.TestRepository
// implementation runs in its own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// Factory returns an empty repository.
type Factory func(t *testing.T) ports.TestRepository

func Run(t *testing.T, newRepo Factory) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newRepo(t)) })
	t.Run("DuplicateInsert", func(t *testing.T) { testDuplicateInsert(t, newRepo(t)) })
	t.Run("SelectOldestFirst", func(t *testing.T) { testSelectOldestFirst(t, newRepo(t)) })
	t.Run("SelectOldestFirstAcrossZones", func(t *testing.T) { testSelectOldestFirstAcrossZones(t, newRepo(t)) })
	t.Run("Lifecycle", func(t *testing.T) { testLifecycle(t, newRepo(t)) })
	t.Run("FailFromPending", func(t *testing.T) { testFailFromPending(t, newRepo(t)) })
	t.Run("UnknownID", func(t *testing.T) { testUnknownID(t, newRepo(t)) })
	t.Run("RunningClaimIsExclusive", func(t *testing.T) { testClaimExclusive(t, newRepo(t)) })
	t.Run("ListAndProfiles", func(t *testing.T) { testListAndLatest(t, newRepo(t)) })
}

// NewTest builds a PENDING test created offset minutes after a fixed base time.
func NewTest(rawURL, registrable string, offset int) *domain.Test {
	at := base.Add(time.Duration(offset) * time.Minute)
	return &domain.Test{
		ID:        uuid.NewString(),
		URL:       rawURL,
		Domain:    registrable,
		Strategy:  domain.StrategyMobile,
		Provider:  "pagespeed",
		Status:    domain.StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func testInsertAndFind(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	user := "user-1"
	in := NewTest("https://example.com", "example.com", 0)
	in.UserID = &user
	require.NoError(t, repo.Insert(ctx, in))

	got, err := repo.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.StrategyMobile, got.Strategy)
	require.NotNil(t, got.UserID)
	assert.Equal(t, user, *got.UserID)
	assert.Nil(t, got.Results)
	assert.Nil(t, got.Error)
	assert.Nil(t, got.CompletedAt)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", in.CreatedAt, got.CreatedAt)
}

func testDuplicateInsert(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	in := NewTest("https://example.com", "example.com", 0)
	require.NoError(t, repo.Insert(ctx, in))

	dup := *in
	err := repo.Insert(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func testSelectOldestFirst(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	t3 := NewTest("https://c.example", "c.example", 3)
	t1 := NewTest("https://a.example", "a.example", 1)
	t2 := NewTest("https://b.example", "b.example", 2)
	for _, tt := range []*domain.Test{t3, t1, t2} {
		require.NoError(t, repo.Insert(ctx, tt))
	}

	got, err := repo.SelectByStatus(ctx, domain.StatusPending, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, t1.ID, got[0].ID)
	assert.Equal(t, t2.ID, got[1].ID)

	all, err := repo.SelectByStatus(ctx, domain.StatusPending, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.SelectByStatus(ctx, domain.StatusRunning, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSelectOldestFirstAcrossZones(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	// 10:00+02:00 is 08:00Z, an hour before the UTC row.
	older := NewTest("https://older.example", "older.example", 0)
	older.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	older.UpdatedAt = older.CreatedAt
	newer := NewTest("https://newer.example", "newer.example", 0)
	newer.CreatedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	newer.UpdatedAt = newer.CreatedAt

	require.NoError(t, repo.Insert(ctx, newer))
	require.NoError(t, repo.Insert(ctx, older))

	got, err := repo.SelectByStatus(ctx, domain.StatusPending, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, older.ID, got[0].ID, "picked %s", got[0].URL)
	assert.True(t, older.CreatedAt.Equal(got[0].CreatedAt))
}

func testLifecycle(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	in := NewTest("https://example.com", "example.com", 0)
	require.NoError(t, repo.Insert(ctx, in))

	running := base.Add(time.Hour)
	require.NoError(t, repo.UpdateStatus(ctx, in.ID, domain.StatusRunning, domain.StatusFields{UpdatedAt: running}))
	err := repo.UpdateStatus(ctx, in.ID, domain.StatusRunning, domain.StatusFields{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	results := `{"summary":{"score":95,"grade":"A"}}`
	done := running.Add(time.Minute)
	require.NoError(t, repo.UpdateStatus(ctx, in.ID, domain.StatusCompleted, domain.StatusFields{
		Results: &results, CompletedAt: &done, UpdatedAt: done,
	}))

	got, err := repo.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.Results)
	assert.JSONEq(t, results, *got.Results)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, done.Equal(*got.CompletedAt))
	assert.True(t, done.Equal(got.UpdatedAt))

	msg := "late failure"
	err = repo.UpdateStatus(ctx, in.ID, domain.StatusFailed, domain.StatusFields{Error: &msg})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = repo.UpdateStatus(ctx, in.ID, domain.StatusPending, domain.StatusFields{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	again, err := repo.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, again.Status)
	assert.Nil(t, again.Error)
}

func testFailFromPending(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	in := NewTest("https://example.com", "example.com", 0)
	require.NoError(t, repo.Insert(ctx, in))

	msg := "PageSpeed Insights API error: Forbidden"
	require.NoError(t, repo.UpdateStatus(ctx, in.ID, domain.StatusFailed, domain.StatusFields{Error: &msg}))

	got, err := repo.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, msg, *got.Error)
	assert.Nil(t, got.Results)
	assert.Nil(t, got.CompletedAt)
}

func testUnknownID(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	_, err := repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.UpdateStatus(ctx, uuid.NewString(), domain.StatusRunning, domain.StatusFields{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testClaimExclusive(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	in := NewTest("https://example.com", "example.com", 0)
	require.NoError(t, repo.Insert(ctx, in))

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.UpdateStatus(ctx, in.ID, domain.StatusRunning, domain.StatusFields{})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "unexpected error: %v", err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func testListAndLatest(t *testing.T, repo ports.TestRepository) {
	ctx := context.Background()
	alice := "alice"
	older := NewTest("https://example.com/a", "example.com", 1)
	newer := NewTest("https://example.com/b", "example.com", 2)
	other := NewTest("https://other.org", "other.org", 3)
	older.UserID = &alice
	newer.UserID = &alice
	for _, tt := range []*domain.Test{older, newer, other} {
		require.NoError(t, repo.Insert(ctx, tt))
	}

	_, err := repo.LatestCompletedByDomain(ctx, "example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	complete := func(tt *domain.Test, at time.Time) {
		require.NoError(t, repo.UpdateStatus(ctx, tt.ID, domain.StatusRunning, domain.StatusFields{UpdatedAt: at}))
		res := `{"testId":"` + tt.ID + `"}`
		require.NoError(t, repo.UpdateStatus(ctx, tt.ID, domain.StatusCompleted, domain.StatusFields{
			Results: &res, CompletedAt: &at, UpdatedAt: at,
		}))
	}
	complete(newer, base.Add(time.Hour))
	complete(older, base.Add(2*time.Hour))

	latest, err := repo.LatestCompletedByDomain(ctx, "EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID, "latest is by completion time")

	mine, err := repo.List(ctx, domain.TestFilter{UserID: alice})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	pending, err := repo.List(ctx, domain.TestFilter{Status: domain.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].ID)

	limited, err := repo.List(ctx, domain.TestFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, other.ID, limited[0].ID)

	byDomain, err := repo.List(ctx, domain.TestFilter{Domain: "other.org"})
	require.NoError(t, err)
	assert.Len(t, byDomain, 1)
}
