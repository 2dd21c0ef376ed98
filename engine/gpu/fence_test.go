package gpu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine/core"
)

func TestFenceSignalIsMonotonic(t *testing.T) {
	f := NewFence(0)
	f.Signal(5)
	f.Signal(3)
	assert.Equal(t, uint64(5), f.CompletedValue())
	assert.True(t, f.IsComplete(5))
	assert.True(t, f.IsComplete(0))
	assert.False(t, f.IsComplete(6))
}

func TestWaitUntilReturnsImmediatelyWhenComplete(t *testing.T) {
	f := NewFence(4)
	start := time.Now()
	require.NoError(t, f.WaitUntil(context.Background(), 4, 0))
	require.NoError(t, f.WaitUntil(context.Background(), 1, time.Millisecond))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitUntilBlocksUntilLaterSignal(t *testing.T) {
	f := NewFence(0)
	done := make(chan error, 1)
	go func() {
		done <- f.WaitUntil(context.Background(), 3, 0)
	}()

	f.Signal(1)
	f.Signal(2)
	select {
	case <-done:
		t.Fatal("wait returned before the fence reached 3")
	case <-time.After(20 * time.Millisecond):
	}

	f.Signal(7)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after the fence passed 3")
	}
}

func TestWaitUntilTimeoutIsFatal(t *testing.T) {
	f := NewFence(0)
	err := f.WaitUntil(context.Background(), 1, 10*time.Millisecond)
	require.ErrorIs(t, err, core.ErrFenceTimeout)
	assert.True(t, core.IsFatal(err))
}

func TestWaitUntilHonoursContext(t *testing.T) {
	f := NewFence(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.WaitUntil(ctx, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFailWakesWaiters(t *testing.T) {
	f := NewFence(2)
	done := make(chan error, 1)
	go func() {
		done <- f.WaitUntil(context.Background(), 5, 0)
	}()

	f.Fail(core.ErrDeviceLost)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, core.ErrDeviceLost)
	case <-time.After(time.Second):
		t.Fatal("failed fence did not wake the waiter")
	}
	// values already reached still succeed
	assert.NoError(t, f.WaitUntil(context.Background(), 2, 0))
}
