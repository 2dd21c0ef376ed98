package frame

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/frameflight/engine/core"
)

// UploadBuffer is CPU writable memory the device reads from at execution
// time. One buffer belongs to exactly one frame slot.
type UploadBuffer[T any] struct {
	name   string
	mu     sync.RWMutex
	data   []T
	writes []uint64
}

func NewUploadBuffer[T any](name string, count int) *UploadBuffer[T] {
	if count < 0 {
		count = 0
	}
	return &UploadBuffer[T]{
		name:   name,
		data:   make([]T, count),
		writes: make([]uint64, count),
	}
}

func (ub *UploadBuffer[T]) Name() string {
	return ub.name
}

func (ub *UploadBuffer[T]) Len() int {
	return len(ub.data)
}

// CopyData writes value into element index.
func (ub *UploadBuffer[T]) CopyData(index int, value T) error {
	ub.mu.Lock()
	defer ub.mu.Unlock()
	if index < 0 || index >= len(ub.data) {
		return fmt.Errorf("%s: writing element %d of %d: %w", ub.name, index, len(ub.data), core.ErrBufferIndexOutOfRange)
	}
	ub.data[index] = value
	ub.writes[index]++
	return nil
}

func (ub *UploadBuffer[T]) At(index int) (T, error) {
	ub.mu.RLock()
	defer ub.mu.RUnlock()
	if index < 0 || index >= len(ub.data) {
		var zero T
		return zero, fmt.Errorf("%s: reading element %d of %d: %w", ub.name, index, len(ub.data), core.ErrBufferIndexOutOfRange)
	}
	return ub.data[index], nil
}

// Writes returns how many times element index has been uploaded.
func (ub *UploadBuffer[T]) Writes(index int) uint64 {
	ub.mu.RLock()
	defer ub.mu.RUnlock()
	if index < 0 || index >= len(ub.writes) {
		return 0
	}
	return ub.writes[index]
}

// ReadElement lets the device read typed elements without knowing T.
func (ub *UploadBuffer[T]) ReadElement(index int) (any, error) {
	return ub.At(index)
}
