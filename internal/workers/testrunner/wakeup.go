package testrunner

import (
	"context"
	"sync"

	"perfscope/internal/ports"
)

var (
	_ ports.WakeupPublisher = (*LocalWakeups)(nil)
	_ ports.WakeupSource    = (*LocalWakeups)(nil)
)

// LocalWakeups delivers Publish calls to subscribers in the same process.
// Bursts coalesce: a subscriber with an unread wakeup does not get a second.
type LocalWakeups struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewLocalWakeups() *LocalWakeups {
	return &LocalWakeups{subs: make(map[chan struct{}]struct{})}
}

func (w *LocalWakeups) Publish(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (w *LocalWakeups) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()

	go func() {
		<-ctx.Done()
		w.mu.Lock()
		delete(w.subs, ch)
		close(ch)
		w.mu.Unlock()
	}()
	return ch, nil
}
