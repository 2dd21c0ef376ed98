package frame

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/gpu"
)

// RingConfig describes a frame resource ring.
type RingConfig struct {
	// Size is the number of frame slots.
	Size int
	// MaxFramesInFlight is what the backend allows to be queued at once. It
	// must equal Size.
	MaxFramesInFlight int
	// FenceTimeout bounds every wait for a slot. Zero waits forever.
	FenceTimeout time.Duration
	Resources    ResourceConfig
}

// Signaler queues a fence signal behind previously submitted work.
type Signaler interface {
	Signal(fence *gpu.Fence, value uint64) error
}

// Flusher signals and waits for a fence value.
type Flusher interface {
	Flush(ctx context.Context, fence *gpu.Fence, value uint64, timeout time.Duration) error
}

// Ring cycles through a fixed set of frame slots so the CPU can build frame
// N+1 while the GPU still executes frame N. A slot is never handed out again
// before the GPU has passed the fence value it was retired with.
type Ring struct {
	slots      []*FrameResource
	current    int
	acquired   bool
	fence      *gpu.Fence
	fenceValue uint64
	timeout    time.Duration
}

func NewRing(config RingConfig, fence *gpu.Fence) (*Ring, error) {
	if config.Size <= 0 {
		return nil, fmt.Errorf("frame ring size %d: %w", config.Size, core.ErrInvalidConfig)
	}
	if config.Size != config.MaxFramesInFlight {
		return nil, fmt.Errorf("frame ring size %d does not match %d frames in flight: %w",
			config.Size, config.MaxFramesInFlight, core.ErrInvalidConfig)
	}
	if fence == nil {
		return nil, fmt.Errorf("frame ring without a fence: %w", core.ErrInvalidConfig)
	}

	r := &Ring{
		slots:      make([]*FrameResource, config.Size),
		current:    config.Size - 1,
		fence:      fence,
		fenceValue: fence.CompletedValue(),
		timeout:    config.FenceTimeout,
	}
	for i := range r.slots {
		r.slots[i] = NewFrameResource(i, config.Resources)
	}
	core.LogDebug("frame ring created with %d slots", config.Size)
	return r, nil
}

// AcquireNext advances to the next slot and blocks until the GPU is done with
// it. The first call returns slot 0.
func (r *Ring) AcquireNext(ctx context.Context) (*FrameResource, error) {
	r.current = (r.current + 1) % len(r.slots)
	slot := r.slots[r.current]

	if slot.Fence != 0 && !r.fence.IsComplete(slot.Fence) {
		if err := r.fence.WaitUntil(ctx, slot.Fence, r.timeout); err != nil {
			r.acquired = false
			return nil, fmt.Errorf("acquiring frame slot %d: %w", slot.Index, err)
		}
	}
	r.acquired = true
	return slot, nil
}

// Retire stamps the current slot with the next fence value and asks the queue
// to signal it once the slot's work has executed.
func (r *Ring) Retire(signaler Signaler) error {
	if !r.acquired {
		return core.ErrRingNotAcquired
	}
	r.fenceValue++
	slot := r.slots[r.current]
	slot.Fence = r.fenceValue
	r.acquired = false
	if err := signaler.Signal(r.fence, r.fenceValue); err != nil {
		return fmt.Errorf("retiring frame slot %d: %w", slot.Index, err)
	}
	return nil
}

// Flush waits until the GPU has executed everything queued so far.
func (r *Ring) Flush(ctx context.Context, flusher Flusher) error {
	r.fenceValue++
	return flusher.Flush(ctx, r.fence, r.fenceValue, r.timeout)
}

// Current returns the acquired slot, or nil if no slot is acquired.
func (r *Ring) Current() *FrameResource {
	if !r.acquired {
		return nil
	}
	return r.slots[r.current]
}

func (r *Ring) CurrentIndex() int {
	return r.current
}

func (r *Ring) Size() int {
	return len(r.slots)
}

func (r *Ring) Slots() []*FrameResource {
	return r.slots
}

// FenceValue is the last value handed to the queue.
func (r *Ring) FenceValue() uint64 {
	return r.fenceValue
}

func (r *Ring) Fence() *gpu.Fence {
	return r.fence
}
