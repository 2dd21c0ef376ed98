package gpu

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// NoPipeline resets a command list without an initial pipeline state.
const NoPipeline = metadata.PIPELINE_MAX

type CommandType uint8

const (
	CMD_SET_PIPELINE CommandType = iota
	CMD_CLEAR_RENDER_TARGET
	CMD_CLEAR_DEPTH_STENCIL
	CMD_SET_ROOT_CBV
	CMD_SET_DESCRIPTOR_TABLE
	CMD_SET_VERTEX_BUFFER
	CMD_SET_INDEX_BUFFER
	CMD_SET_STENCIL_REF
	CMD_DRAW_INDEXED
	CMD_COPY_DEPTH_STENCIL
	CMD_RESOURCE_BARRIER
)

// BufferView is anything the device can read elements from at execution time.
type BufferView interface {
	Len() int
	ReadElement(i int) (any, error)
}

type ResourceState uint8

const (
	RESOURCE_STATE_PRESENT ResourceState = iota
	RESOURCE_STATE_RENDER_TARGET
	RESOURCE_STATE_DEPTH_WRITE
	RESOURCE_STATE_COPY_SOURCE
	RESOURCE_STATE_COPY_DEST
	RESOURCE_STATE_SHADER_RESOURCE
)

// Command is a single recorded instruction. Only the fields relevant to Type
// are set.
type Command struct {
	Type          CommandType
	Pipeline      metadata.PipelineID
	RootParameter uint32
	Buffer        BufferView
	Element       int
	Descriptor    int
	Color         [4]float32
	StencilRef    uint32
	IndexCount    uint32
	Instances     uint32
	StartIndex    uint32
	BaseVertex    int32
	Resource      string
	Before        ResourceState
	After         ResourceState
}

// CommandAllocator owns the memory commands are recorded into. It can only be
// reset once the GPU has executed every list that was recorded into it.
type CommandAllocator struct {
	name     string
	commands []Command

	mu         sync.Mutex
	inFlight   bool
	fence      *Fence
	fenceValue uint64
}

func NewCommandAllocator(name string) *CommandAllocator {
	return &CommandAllocator{name: name}
}

func (a *CommandAllocator) Name() string {
	return a.name
}

// Reset reclaims the recorded memory. It fails with core.ErrAllocatorInUse
// while a submission that used this allocator has not been passed by its fence.
func (a *CommandAllocator) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight {
		if a.fence == nil || !a.fence.IsComplete(a.fenceValue) {
			return fmt.Errorf("resetting allocator %q: %w", a.name, core.ErrAllocatorInUse)
		}
		a.inFlight = false
		a.fence = nil
	}
	a.commands = a.commands[:0]
	return nil
}

// executed marks the allocator as referenced by queued work with no fence yet.
func (a *CommandAllocator) executed() {
	a.mu.Lock()
	a.inFlight = true
	a.fence = nil
	a.mu.Unlock()
}

// stamp records the fence value that will guard the queued work.
func (a *CommandAllocator) stamp(fence *Fence, value uint64) {
	a.mu.Lock()
	if a.inFlight && a.fence == nil {
		a.fence = fence
		a.fenceValue = value
	}
	a.mu.Unlock()
}

// CommandList records commands into an allocator. Recording errors are sticky
// and returned from Close.
type CommandList struct {
	name  string
	alloc *CommandAllocator
	start int
	open  bool
	err   error
}

// NewCommandList creates a list that is open for recording into alloc.
func NewCommandList(name string, alloc *CommandAllocator, pso metadata.PipelineID) *CommandList {
	cl := &CommandList{name: name}
	cl.begin(alloc, pso)
	return cl
}

func (cl *CommandList) Name() string {
	return cl.name
}

func (cl *CommandList) IsOpen() bool {
	return cl.open
}

func (cl *CommandList) Err() error {
	return cl.err
}

// Reset reopens a closed list for recording into alloc.
func (cl *CommandList) Reset(alloc *CommandAllocator, pso metadata.PipelineID) error {
	if cl.open {
		return fmt.Errorf("resetting command list %q: %w", cl.name, core.ErrCommandListOpen)
	}
	cl.begin(alloc, pso)
	return nil
}

func (cl *CommandList) begin(alloc *CommandAllocator, pso metadata.PipelineID) {
	cl.alloc = alloc
	cl.start = len(alloc.commands)
	cl.open = true
	cl.err = nil
	if pso != NoPipeline {
		cl.SetPipelineState(pso)
	}
}

// Close ends recording.
func (cl *CommandList) Close() error {
	if !cl.open {
		return fmt.Errorf("closing command list %q: %w", cl.name, core.ErrCommandListClosed)
	}
	cl.open = false
	return cl.err
}

// Commands returns the recorded commands. The slice aliases allocator memory.
func (cl *CommandList) Commands() []Command {
	if cl.alloc == nil {
		return nil
	}
	return cl.alloc.commands[cl.start:]
}

func (cl *CommandList) record(cmd Command) {
	if !cl.open {
		if cl.err == nil {
			cl.err = fmt.Errorf("recording into command list %q: %w", cl.name, core.ErrCommandListClosed)
		}
		return
	}
	cl.alloc.commands = append(cl.alloc.commands, cmd)
}

func (cl *CommandList) SetPipelineState(pso metadata.PipelineID) {
	cl.record(Command{Type: CMD_SET_PIPELINE, Pipeline: pso})
}

func (cl *CommandList) ClearRenderTargetView(color [4]float32) {
	cl.record(Command{Type: CMD_CLEAR_RENDER_TARGET, Color: color})
}

func (cl *CommandList) ClearDepthStencilView() {
	cl.record(Command{Type: CMD_CLEAR_DEPTH_STENCIL})
}

func (cl *CommandList) SetGraphicsRootConstantBufferView(rootParameter uint32, buffer BufferView, element int) {
	cl.record(Command{Type: CMD_SET_ROOT_CBV, RootParameter: rootParameter, Buffer: buffer, Element: element})
}

func (cl *CommandList) SetGraphicsRootDescriptorTable(rootParameter uint32, descriptor int) {
	cl.record(Command{Type: CMD_SET_DESCRIPTOR_TABLE, RootParameter: rootParameter, Descriptor: descriptor})
}

func (cl *CommandList) SetVertexBuffer(buffer BufferView) {
	cl.record(Command{Type: CMD_SET_VERTEX_BUFFER, Buffer: buffer})
}

func (cl *CommandList) SetIndexBuffer(buffer BufferView) {
	cl.record(Command{Type: CMD_SET_INDEX_BUFFER, Buffer: buffer})
}

func (cl *CommandList) SetStencilRef(ref uint32) {
	cl.record(Command{Type: CMD_SET_STENCIL_REF, StencilRef: ref})
}

func (cl *CommandList) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32) {
	cl.record(Command{
		Type:       CMD_DRAW_INDEXED,
		IndexCount: indexCount,
		Instances:  instanceCount,
		StartIndex: startIndex,
		BaseVertex: baseVertex,
	})
}

// CopyDepthStencilToTexture copies the current stencil contents into the
// texture bound at descriptor.
func (cl *CommandList) CopyDepthStencilToTexture(descriptor int) {
	cl.record(Command{Type: CMD_COPY_DEPTH_STENCIL, Descriptor: descriptor})
}

func (cl *CommandList) ResourceBarrier(resource string, before, after ResourceState) {
	cl.record(Command{Type: CMD_RESOURCE_BARRIER, Resource: resource, Before: before, After: after})
}
