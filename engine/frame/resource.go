package frame

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// ResourceConfig sizes the buffers of every frame slot.
type ResourceConfig struct {
	PassCount     int
	ObjectCount   int
	MaterialCount int
	// DynamicVertexCount is the size of the per slot vertex buffer. Zero
	// means the slot has none.
	DynamicVertexCount int
}

// FrameResource holds everything the CPU writes while building one frame.
// The slot is reused once the GPU has passed Fence.
type FrameResource struct {
	Index int
	// Fence is the value signalled after the last frame using this slot.
	// Zero means the slot was never submitted.
	Fence uint64

	CmdListAlloc *gpu.CommandAllocator
	PassCB       *UploadBuffer[metadata.PassConstants]
	ObjectCB     *UploadBuffer[metadata.ObjectConstants]
	MaterialCB   *UploadBuffer[metadata.MaterialConstants]
	VertexBuffer *UploadBuffer[metadata.Vertex]
}

func NewFrameResource(index int, config ResourceConfig) *FrameResource {
	fr := &FrameResource{
		Index:        index,
		CmdListAlloc: gpu.NewCommandAllocator(fmt.Sprintf("frame%d_alloc", index)),
		PassCB:       NewUploadBuffer[metadata.PassConstants](fmt.Sprintf("frame%d_pass", index), config.PassCount),
		ObjectCB:     NewUploadBuffer[metadata.ObjectConstants](fmt.Sprintf("frame%d_object", index), config.ObjectCount),
		MaterialCB:   NewUploadBuffer[metadata.MaterialConstants](fmt.Sprintf("frame%d_material", index), config.MaterialCount),
	}
	if config.DynamicVertexCount > 0 {
		fr.VertexBuffer = NewUploadBuffer[metadata.Vertex](fmt.Sprintf("frame%d_vertices", index), config.DynamicVertexCount)
	}
	return fr
}
