package ports

import "context"

// ProcessorStarter ensures the background test processor is running. Safe to
// call on every submission.
type ProcessorStarter interface {
	Start(ctx context.Context) error
}

// WakeupPublisher announces that new pending work exists.
type WakeupPublisher interface {
	Publish(ctx context.Context) error
}

// WakeupSource delivers wakeups to a processor. The channel closes when ctx ends.
type WakeupSource interface {
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}
