// Package testrunner moves PENDING tests through RUNNING to COMPLETED or
// FAILED. One Processor is built by the composition root and shared by the
// HTTP layer; the store's guarded RUNNING transition keeps two processors (or
// two overlapping passes) from analysing the same test twice.
package testrunner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultBatchSize    = 5
	DefaultMaxInFlight  = 50
	DefaultJobTimeout   = 3 * time.Minute

	// MaxRetries is declared for parity with the job schema but not applied:
	// a failed test is terminal and a resubmission creates a new row.
	MaxRetries = 3

	failureWriteTimeout = 10 * time.Second
)

var _ ports.ProcessorStarter = (*Processor)(nil)

type Options struct {
	Store    ports.TestRepository
	Analyzer ports.Analyzer
	// Wakeups, when set, triggers an extra pass per message.
	Wakeups ports.WakeupSource
	Log     logrus.FieldLogger

	PollInterval time.Duration
	BatchSize    int
	MaxInFlight  int
	JobTimeout   time.Duration

	Now func() time.Time
}

type Processor struct {
	store    ports.TestRepository
	analyzer ports.Analyzer
	wakeups  ports.WakeupSource
	log      logrus.FieldLogger
	now      func() time.Time

	interval    time.Duration
	batchSize   int
	maxInFlight int
	jobTimeout  time.Duration

	tasks *errgroup.Group

	// passMu serializes passes with each other and with Wait, so that no task
	// is added to the group while it is being drained.
	passMu sync.Mutex

	flightMu sync.Mutex
	inFlight map[string]struct{}

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	loopDone chan struct{}
}

func New(opts Options) (*Processor, error) {
	if opts.Store == nil {
		return nil, errors.New("testrunner: store is required")
	}
	if opts.Analyzer == nil {
		return nil, errors.New("testrunner: analyzer is required")
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = DefaultJobTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	g := new(errgroup.Group)
	g.SetLimit(opts.MaxInFlight)

	return &Processor{
		store:       opts.Store,
		analyzer:    opts.Analyzer,
		wakeups:     opts.Wakeups,
		log:         opts.Log.WithField("component", "testrunner"),
		now:         opts.Now,
		interval:    opts.PollInterval,
		batchSize:   opts.BatchSize,
		maxInFlight: opts.MaxInFlight,
		jobTimeout:  opts.JobTimeout,
		tasks:       g,
		inFlight:    make(map[string]struct{}),
	}, nil
}

// Start runs one pass immediately and then keeps polling until Stop. Calling
// it while already running is a no-op. The loop outlives ctx cancellation so
// that a request context can start it.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.log.Debug("Test processor already running")
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	var wake <-chan struct{}
	if p.wakeups != nil {
		ch, err := p.wakeups.Subscribe(loopCtx)
		if err != nil {
			p.mu.Unlock()
			cancel()
			return fmt.Errorf("subscribe to wakeups: %w", err)
		}
		wake = ch
	}

	done := make(chan struct{})
	p.running = true
	p.cancel = cancel
	p.loopDone = done
	p.mu.Unlock()

	p.log.WithField("interval", p.interval).WithField("batch_size", p.batchSize).Info("Starting test processor")

	if _, err := p.PollOnce(loopCtx); err != nil {
		p.log.WithError(err).Error("Initial poll failed")
	}
	go p.loop(loopCtx, wake, done)
	return nil
}

// Stop ends the polling loop. Tasks already dispatched keep running; use Wait
// to drain them.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.loopDone
	p.running = false
	p.cancel = nil
	p.loopDone = nil
	p.mu.Unlock()

	cancel()
	<-done
	p.log.Info("Test processor stopped")
}

// Wait blocks until every dispatched task has finished.
func (p *Processor) Wait() {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	_ = p.tasks.Wait()
}

func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// PollOnce reads up to BatchSize PENDING tests oldest first and dispatches
// each one as an independent task. It returns the number dispatched. Tests
// that do not fit under MaxInFlight stay PENDING for a later pass.
func (p *Processor) PollOnce(ctx context.Context) (int, error) {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	pending, err := p.store.SelectByStatus(ctx, domain.StatusPending, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("select pending tests: %w", err)
	}

	dispatched := 0
	for _, t := range pending {
		if !p.acquire(t.ID) {
			continue
		}
		if !p.tasks.TryGo(func() error {
			defer p.release(t.ID)
			p.process(t)
			return nil
		}) {
			p.release(t.ID)
			p.log.WithField("max_in_flight", p.maxInFlight).Warn("Test processor at capacity; deferring remaining tests")
			break
		}
		dispatched++
	}
	if dispatched > 0 {
		p.log.WithField("count", dispatched).Debug("Dispatched pending tests")
	}
	return dispatched, nil
}

func (p *Processor) loop(ctx context.Context, wake <-chan struct{}, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
		}
		if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			p.log.WithError(err).Error("Poll failed")
		}
	}
}

// process runs one test to a terminal state. It never returns an error: every
// failure is either persisted as FAILED or logged.
func (p *Processor) process(t domain.Test) {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	log := p.log.WithField("test_id", t.ID).WithField("url", t.URL)
	started := p.now()

	if err := p.store.UpdateStatus(ctx, t.ID, domain.StatusRunning, domain.StatusFields{UpdatedAt: started}); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
			log.WithError(err).Debug("Test claimed elsewhere; skipping")
			return
		}
		log.WithError(err).Error("Failed to mark test running")
		p.markFailed(log, t.ID, err)
		return
	}
	log.Info("Processing test")

	strategy := t.Strategy
	if strategy == "" {
		strategy = domain.StrategyMobile
	}
	res, err := p.analyzer.Analyze(ctx, t.URL, strategy)
	if err != nil {
		log.WithError(err).Warn("Analysis failed")
		p.markFailed(log, t.ID, err)
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		p.markFailed(log, t.ID, fmt.Errorf("encode results: %w", err))
		return
	}
	results := string(payload)
	finished := p.now()
	if err := p.store.UpdateStatus(ctx, t.ID, domain.StatusCompleted, domain.StatusFields{
		Results:     &results,
		CompletedAt: &finished,
		UpdatedAt:   finished,
	}); err != nil {
		log.WithError(err).Error("Failed to save results")
		p.markFailed(log, t.ID, err)
		return
	}

	log.WithField("duration", finished.Sub(started)).
		WithField("score", res.Summary.Score).
		Info("Test completed")
}

// markFailed records cause as the test's error. If that write fails too the
// test is left in its last persisted state.
func (p *Processor) markFailed(log logrus.FieldLogger, id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), failureWriteTimeout)
	defer cancel()

	msg := cause.Error()
	if err := p.store.UpdateStatus(ctx, id, domain.StatusFailed, domain.StatusFields{
		Error:     &msg,
		UpdatedAt: p.now(),
	}); err != nil {
		log.WithError(err).Error("Failed to mark test failed")
		return
	}
	log.WithField("error", msg).Info("Test failed")
}

func (p *Processor) acquire(id string) bool {
	p.flightMu.Lock()
	defer p.flightMu.Unlock()
	if _, ok := p.inFlight[id]; ok {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Processor) release(id string) {
	p.flightMu.Lock()
	delete(p.inFlight, id)
	p.flightMu.Unlock()
}
