package gpu

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/core"
)

// DescriptorHeap is a shader visible table of texture descriptors addressed
// by index.
type DescriptorHeap struct {
	names    []string
	capacity int
}

func NewDescriptorHeap(capacity int) *DescriptorHeap {
	return &DescriptorHeap{
		names:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Allocate stores a descriptor for the named texture and returns its index.
func (h *DescriptorHeap) Allocate(name string) (int, error) {
	if len(h.names) >= h.capacity {
		return -1, fmt.Errorf("allocating descriptor for %q: %w", name, core.ErrDescriptorHeapFull)
	}
	h.names = append(h.names, name)
	return len(h.names) - 1, nil
}

func (h *DescriptorHeap) Name(index int) (string, error) {
	if index < 0 || index >= len(h.names) {
		return "", fmt.Errorf("descriptor %d: %w", index, core.ErrInvalidHandle)
	}
	return h.names[index], nil
}

func (h *DescriptorHeap) Len() int {
	return len(h.names)
}

func (h *DescriptorHeap) Cap() int {
	return h.capacity
}
