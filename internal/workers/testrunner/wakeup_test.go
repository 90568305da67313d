package testrunner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalWakeups_CoalescesAndCloses(t *testing.T) {
	w := NewLocalWakeups()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := w.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Publish(context.Background()))
	require.NoError(t, w.Publish(context.Background()))

	<-ch
	select {
	case <-ch:
		t.Fatal("burst should coalesce into one wakeup")
	default:
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	require.NoError(t, w.Publish(context.Background()))
}
