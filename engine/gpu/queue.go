package gpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/frameflight/engine/containers"
	"github.com/spaghettifunk/frameflight/engine/core"
)

type submissionKind uint8

const (
	submitCommands submissionKind = iota
	submitSignal
	submitPresent
)

type submission struct {
	kind     submissionKind
	name     string
	commands []Command
	fence    *Fence
	value    uint64
}

// CommandQueue hands recorded work to a Device on a single consumer
// goroutine, in submission order.
type CommandQueue struct {
	device Device

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	pending  *containers.RingQueue[submission]
	closed   bool
	err      error
	// fences signalled through this queue, failed when the device is lost
	fences map[*Fence]struct{}

	// allocators executed since the last Signal
	unstamped []*CommandAllocator

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandQueue starts the consumer. capacity bounds the number of queued
// submissions; producers block while it is reached.
func NewCommandQueue(device Device, capacity int) (*CommandQueue, error) {
	if device == nil {
		return nil, fmt.Errorf("creating command queue without a device: %w", core.ErrInvalidConfig)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("command queue capacity %d: %w", capacity, core.ErrInvalidConfig)
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &CommandQueue{
		device:  device,
		pending: containers.NewRingQueue[submission](capacity),
		fences:  make(map[*Fence]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)

	go q.run()
	return q, nil
}

func (q *CommandQueue) Device() Device {
	return q.device
}

// ExecuteCommandLists queues closed lists for execution.
func (q *CommandQueue) ExecuteCommandLists(lists ...*CommandList) error {
	for _, cl := range lists {
		if cl.IsOpen() {
			return fmt.Errorf("executing command list %q: %w", cl.Name(), core.ErrCommandListOpen)
		}
		if err := cl.Err(); err != nil {
			return err
		}
	}
	for _, cl := range lists {
		if err := q.enqueue(submission{kind: submitCommands, name: cl.Name(), commands: cl.Commands()}); err != nil {
			return err
		}
		cl.alloc.executed()
		q.mu.Lock()
		q.unstamped = append(q.unstamped, cl.alloc)
		q.mu.Unlock()
	}
	return nil
}

// Signal queues a fence signal behind all previously queued work. On a lost
// device the fence fails instead of ever reaching value.
func (q *CommandQueue) Signal(fence *Fence, value uint64) error {
	if err := q.enqueue(submission{kind: submitSignal, fence: fence, value: value}); err != nil {
		return err
	}
	q.mu.Lock()
	for _, alloc := range q.unstamped {
		alloc.stamp(fence, value)
	}
	q.unstamped = q.unstamped[:0]
	q.fences[fence] = struct{}{}
	lost := q.err
	q.mu.Unlock()

	if lost != nil {
		fence.Fail(lost)
	}
	return nil
}

// Present queues a back buffer flip behind all previously queued work.
func (q *CommandQueue) Present() error {
	return q.enqueue(submission{kind: submitPresent})
}

// Flush signals value on fence and waits until the consumer reaches it.
func (q *CommandQueue) Flush(ctx context.Context, fence *Fence, value uint64, timeout time.Duration) error {
	if err := q.Signal(fence, value); err != nil {
		return err
	}
	return fence.WaitUntil(ctx, value, timeout)
}

// Err returns the error that stopped the device, if any.
func (q *CommandQueue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Pending returns the number of submissions not yet consumed.
func (q *CommandQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

// Close drains the queued work and stops the consumer.
func (q *CommandQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.mu.Unlock()

	<-q.done
	q.cancel()
}

// Abort interrupts the device work in progress and stops the consumer
// without executing what is still queued.
func (q *CommandQueue) Abort() {
	q.cancel()
	q.Close()
}

func (q *CommandQueue) enqueue(s submission) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending.IsFull() && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return core.ErrQueueClosed
	}
	if err := q.pending.Enqueue(s); err != nil {
		return err
	}
	q.notEmpty.Signal()
	return nil
}

func (q *CommandQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for q.pending.IsEmpty() && !q.closed {
			q.notEmpty.Wait()
		}
		if q.pending.IsEmpty() {
			q.mu.Unlock()
			return
		}
		s, _ := q.pending.Dequeue()
		q.notFull.Signal()
		lost := q.err != nil
		q.mu.Unlock()

		// A lost device never advances fences again.
		if lost {
			continue
		}

		var err error
		switch s.kind {
		case submitCommands:
			err = q.device.Execute(q.ctx, s.commands)
		case submitPresent:
			err = q.device.Present(q.ctx)
		case submitSignal:
			s.fence.Signal(s.value)
		}
		if err != nil {
			err = fmt.Errorf("%s executing %q: %v: %w", q.device.Name(), s.name, err, core.ErrDeviceLost)
			core.LogError(err.Error())
			q.lose(err)
		}
	}
}

// lose latches err and fails every fence a waiter could be blocked on.
func (q *CommandQueue) lose(err error) {
	q.mu.Lock()
	if q.err != nil {
		q.mu.Unlock()
		return
	}
	q.err = err
	fences := make([]*Fence, 0, len(q.fences))
	for f := range q.fences {
		fences = append(fences, f)
	}
	q.mu.Unlock()

	for _, f := range fences {
		f.Fail(err)
	}
}
