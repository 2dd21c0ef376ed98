package gpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/frameflight/engine/core"
)

// Fence is a monotonically increasing counter advanced by the queue consumer
// once all work submitted before the matching Signal has executed.
type Fence struct {
	mu        sync.Mutex
	completed uint64
	// closed and replaced every time completed advances
	advanced chan struct{}
	// set once the device behind the fence is gone
	failed error
}

func NewFence(initialValue uint64) *Fence {
	return &Fence{
		completed: initialValue,
		advanced:  make(chan struct{}),
	}
}

// Signal advances the completed value to value. Lower values are ignored.
func (f *Fence) Signal(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value <= f.completed {
		return
	}
	f.completed = value
	close(f.advanced)
	f.advanced = make(chan struct{})
}

// Fail wakes every waiter on a value the fence has not reached with err.
// Later waits on such values fail right away.
func (f *Fence) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed != nil {
		return
	}
	f.failed = err
	close(f.advanced)
	f.advanced = make(chan struct{})
}

func (f *Fence) CompletedValue() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *Fence) IsComplete(value uint64) bool {
	return value <= f.CompletedValue()
}

// WaitUntil blocks until the completed value reaches value. A zero timeout
// waits forever. A timed out wait returns core.ErrFenceTimeout and a failed
// fence returns its failure. Callers treat both as fatal.
func (f *Fence) WaitUntil(ctx context.Context, value uint64, timeout time.Duration) error {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		f.mu.Lock()
		if value <= f.completed {
			f.mu.Unlock()
			return nil
		}
		if f.failed != nil {
			err := fmt.Errorf("waiting for fence value %d (completed %d): %w", value, f.completed, f.failed)
			f.mu.Unlock()
			return err
		}
		advanced := f.advanced
		completed := f.completed
		f.mu.Unlock()

		select {
		case <-advanced:
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			err := fmt.Errorf("waiting for fence value %d (completed %d) after %s: %w", value, completed, timeout, core.ErrFenceTimeout)
			core.LogError(err.Error())
			return err
		}
	}
}
