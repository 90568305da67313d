package testrunner

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"perfscope/internal/adapters/sqlite"
	"perfscope/internal/adapters/storetest"
	"perfscope/internal/domain"
	"perfscope/internal/mocks"
	"perfscope/internal/normalize"
	"perfscope/internal/ports"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "runner.db"), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newProcessor(t *testing.T, store ports.TestRepository, analyzer ports.Analyzer, mutate ...func(*Options)) *Processor {
	t.Helper()
	opts := Options{
		Store:        store,
		Analyzer:     analyzer,
		Log:          quietLogger(),
		PollInterval: time.Hour,
	}
	for _, m := range mutate {
		m(&opts)
	}
	p, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		p.Stop()
		p.Wait()
	})
	return p
}

func insert(t *testing.T, store ports.TestRepository, rawURL string, offset int) *domain.Test {
	t.Helper()
	tt := storetest.NewTest(rawURL, "example.com", offset)
	require.NoError(t, store.Insert(context.Background(), tt))
	return tt
}

func sampleResults() *domain.Results {
	perf := 0.95
	return normalize.Results(normalize.Audit{
		TestID:           "2024-05-01T10:00:00.000Z",
		URL:              "https://example.com",
		Provider:         "pagespeed",
		Strategy:         domain.StrategyMobile,
		PerformanceScore: &perf,
		Categories:       &normalize.Categories{Performance: &perf},
		Metrics:          normalize.Metrics{LCP: 1800},
	})
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = New(Options{Store: mocks.NewMockTestRepository(ctrl)})
	require.Error(t, err)
}

func TestProcessor_CompletesTest(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, store, analyzer)

	tt := insert(t, store, "https://example.com", 0)
	analyzer.EXPECT().
		Analyze(gomock.Any(), "https://example.com", domain.StrategyMobile).
		Return(sampleResults(), nil)

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p.Wait()

	got, err := store.FindByID(context.Background(), tt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.CompletedAt)

	res, err := got.DecodeResults()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 95, res.Summary.Score)
	assert.Equal(t, "A", res.Summary.Grade)
	assert.Equal(t, 1800.0, res.WebVitals.LCP)
}

func TestProcessor_ProviderErrorMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, store, analyzer)

	tt := insert(t, store, "https://example.com", 0)
	analyzer.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &domain.ProviderError{Provider: "PageSpeed Insights", StatusCode: 403, StatusText: "Forbidden"})

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	p.Wait()

	got, err := store.FindByID(context.Background(), tt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "Forbidden")
	assert.Nil(t, got.Results)
	assert.Nil(t, got.CompletedAt)
}

func TestProcessor_PicksOldestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, store, analyzer, func(o *Options) { o.BatchSize = 2 })

	t3 := insert(t, store, "https://three.example", 3)
	insert(t, store, "https://one.example", 1)
	insert(t, store, "https://two.example", 2)

	analyzer.EXPECT().Analyze(gomock.Any(), "https://one.example", gomock.Any()).Return(sampleResults(), nil)
	analyzer.EXPECT().Analyze(gomock.Any(), "https://two.example", gomock.Any()).Return(sampleResults(), nil)

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	p.Wait()

	got, err := store.FindByID(context.Background(), t3.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestProcessor_FailureIsIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, store, analyzer)

	bad := insert(t, store, "https://bad.example", 1)
	good := insert(t, store, "https://good.example", 2)
	analyzer.EXPECT().Analyze(gomock.Any(), "https://bad.example", gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))
	analyzer.EXPECT().Analyze(gomock.Any(), "https://good.example", gomock.Any()).Return(sampleResults(), nil)

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	p.Wait()

	gotBad, err := store.FindByID(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, gotBad.Status)
	assert.Equal(t, "dial tcp: connection refused", *gotBad.Error)

	gotGood, err := store.FindByID(context.Background(), good.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, gotGood.Status)
}

func TestProcessor_StartIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, repo, analyzer)

	repo.EXPECT().SelectByStatus(gomock.Any(), domain.StatusPending, DefaultBatchSize).Return(nil, nil).Times(1)

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.Running())

	p.Stop()
	assert.False(t, p.Running())
	p.Stop()
}

func TestProcessor_StartOutlivesCallerContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	p := newProcessor(t, repo, mocks.NewMockAnalyzer(ctrl))

	repo.EXPECT().SelectByStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx))
	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, p.Running())
}

func TestProcessor_TwoProcessorsDoNotDoubleProcess(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)

	urls := []string{"https://a.example", "https://b.example", "https://c.example", "https://d.example"}
	for i, u := range urls {
		insert(t, store, u, i)
	}

	var (
		mu    sync.Mutex
		calls = map[string]int{}
	)
	analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u string, _ domain.Strategy) (*domain.Results, error) {
			mu.Lock()
			calls[u]++
			mu.Unlock()
			return sampleResults(), nil
		}).AnyTimes()

	p1 := newProcessor(t, store, analyzer, func(o *Options) { o.BatchSize = 10 })
	p2 := newProcessor(t, store, analyzer, func(o *Options) { o.BatchSize = 10 })

	var wg sync.WaitGroup
	for _, p := range []*Processor{p1, p2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.PollOnce(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	p1.Wait()
	p2.Wait()

	for _, u := range urls {
		assert.Equal(t, 1, calls[u], "url %s", u)
	}
	done, err := store.List(context.Background(), domain.TestFilter{Status: domain.StatusCompleted})
	require.NoError(t, err)
	assert.Len(t, done, len(urls))
}

func TestProcessor_RunningWriteFailureMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, repo, analyzer)

	tt := storetest.NewTest("https://example.com", "example.com", 0)
	var failed domain.StatusFields
	gomock.InOrder(
		repo.EXPECT().SelectByStatus(gomock.Any(), domain.StatusPending, gomock.Any()).Return([]domain.Test{*tt}, nil),
		repo.EXPECT().UpdateStatus(gomock.Any(), tt.ID, domain.StatusRunning, gomock.Any()).Return(errors.New("connection reset")),
		repo.EXPECT().UpdateStatus(gomock.Any(), tt.ID, domain.StatusFailed, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ domain.Status, f domain.StatusFields) error {
				failed = f
				return nil
			}),
	)

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	p.Wait()

	require.NotNil(t, failed.Error)
	assert.Equal(t, "connection reset", *failed.Error)
	assert.Nil(t, failed.Results)
}

func TestProcessor_PersistenceFailureIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, repo, analyzer)

	tt := storetest.NewTest("https://example.com", "example.com", 0)
	gomock.InOrder(
		repo.EXPECT().SelectByStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.Test{*tt}, nil),
		repo.EXPECT().UpdateStatus(gomock.Any(), tt.ID, domain.StatusRunning, gomock.Any()).Return(nil),
		analyzer.EXPECT().Analyze(gomock.Any(), tt.URL, gomock.Any()).Return(sampleResults(), nil),
		repo.EXPECT().UpdateStatus(gomock.Any(), tt.ID, domain.StatusCompleted, gomock.Any()).Return(errors.New("disk full")),
		repo.EXPECT().UpdateStatus(gomock.Any(), tt.ID, domain.StatusFailed, gomock.Any()).Return(errors.New("disk full")),
	)

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p.Wait()
}

func TestProcessor_LostClaimIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, repo, analyzer)

	tt := storetest.NewTest("https://example.com", "example.com", 0)
	repo.EXPECT().SelectByStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.Test{*tt}, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), tt.ID, domain.StatusRunning, gomock.Any()).Return(domain.ErrInvalidTransition)

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	p.Wait()
}

func TestProcessor_SelectErrorIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	p := newProcessor(t, repo, mocks.NewMockAnalyzer(ctrl))

	repo.EXPECT().SelectByStatus(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	n, err := p.PollOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestProcessor_CapacityLeavesTestsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, store, analyzer, func(o *Options) { o.MaxInFlight = 1 })

	first := insert(t, store, "https://one.example", 1)
	second := insert(t, store, "https://two.example", 2)

	release := make(chan struct{})
	analyzer.EXPECT().Analyze(gomock.Any(), "https://one.example", gomock.Any()).
		DoAndReturn(func(context.Context, string, domain.Strategy) (*domain.Results, error) {
			<-release
			return sampleResults(), nil
		})

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	close(release)
	p.Wait()

	got, err := store.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	got, err = store.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestProcessor_StopDoesNotCancelInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	p := newProcessor(t, store, analyzer)

	tt := insert(t, store, "https://example.com", 0)
	entered := make(chan struct{})
	release := make(chan struct{})
	analyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ domain.Strategy) (*domain.Results, error) {
			close(entered)
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return sampleResults(), nil
		})

	require.NoError(t, p.Start(context.Background()))
	<-entered
	p.Stop()
	close(release)
	p.Wait()

	got, err := store.FindByID(context.Background(), tt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestProcessor_WakeupTriggersPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newStore(t)
	analyzer := mocks.NewMockAnalyzer(ctrl)
	wakeups := NewLocalWakeups()
	p := newProcessor(t, store, analyzer, func(o *Options) { o.Wakeups = wakeups })

	require.NoError(t, p.Start(context.Background()))

	var calls atomic.Int32
	analyzer.EXPECT().Analyze(gomock.Any(), "https://late.example", gomock.Any()).
		DoAndReturn(func(context.Context, string, domain.Strategy) (*domain.Results, error) {
			calls.Add(1)
			return sampleResults(), nil
		})
	tt := insert(t, store, "https://late.example", 0)
	require.NoError(t, wakeups.Publish(context.Background()))

	require.Eventually(t, func() bool {
		got, err := store.FindByID(context.Background(), tt.ID)
		return err == nil && got.Status == domain.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}
