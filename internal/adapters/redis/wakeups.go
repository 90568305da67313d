// Package redis carries processor wakeups between processes over Redis pub/sub
// so an HTTP-only replica can nudge the replica running the worker.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"perfscope/internal/ports"
)

const DefaultChannel = "perfscope:tests:pending"

var (
	_ ports.WakeupPublisher = (*Wakeups)(nil)
	_ ports.WakeupSource    = (*Wakeups)(nil)
)

type Wakeups struct {
	client  redis.UniversalClient
	channel string
	log     logrus.FieldLogger
}

func NewWakeups(client redis.UniversalClient, log logrus.FieldLogger) *Wakeups {
	return &Wakeups{client: client, channel: DefaultChannel, log: log.WithField("component", "redis-wakeups")}
}

// NewClient parses a redis:// URL.
func NewClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (w *Wakeups) Publish(ctx context.Context) error {
	return w.client.Publish(ctx, w.channel, "1").Err()
}

// Subscribe confirms the subscription before returning. Messages that arrive
// while the previous wakeup is still unread are dropped.
func (w *Wakeups) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	ps := w.client.Subscribe(ctx, w.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", w.channel, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer func() {
			if err := ps.Close(); err != nil {
				w.log.WithError(err).Debug("closing redis subscription")
			}
		}()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
