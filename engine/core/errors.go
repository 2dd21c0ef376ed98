package core

import (
	"errors"
)

var (
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrFenceTimeout          = errors.New("fence wait timed out, device considered lost")
	ErrDeviceLost            = errors.New("device lost")
	ErrQueueClosed           = errors.New("command queue closed")
	ErrAllocatorInUse        = errors.New("command allocator still in use by the GPU")
	ErrCommandListClosed     = errors.New("command list is closed")
	ErrCommandListOpen       = errors.New("command list is still recording")
	ErrBufferIndexOutOfRange = errors.New("buffer index out of range")
	ErrDescriptorHeapFull    = errors.New("descriptor heap is full")
	ErrInvalidHandle         = errors.New("invalid handle")
	ErrUnknownPipeline       = errors.New("unknown pipeline state")
	ErrRingNotAcquired       = errors.New("no frame resource acquired")
	ErrEngineNotInitialized  = errors.New("engine not initialized")
	ErrUnknownApplication    = errors.New("unknown application")
	ErrInvalidMaterial       = errors.New("invalid material definition")
	ErrUnknown               = errors.New("unknown")
)

// IsFatal reports whether err means the device can no longer be trusted and the
// process should end instead of retrying.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFenceTimeout) || errors.Is(err, ErrDeviceLost)
}
