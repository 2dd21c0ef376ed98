package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/scene"
)

// Root signature slots shared by every scene pipeline.
const (
	ROOT_PARAM_TEXTURE     uint32 = 0
	ROOT_PARAM_OBJECT_CB   uint32 = 1
	ROOT_PARAM_PASS_CB     uint32 = 2
	ROOT_PARAM_MATERIAL_CB uint32 = 3
	ROOT_PARAM_SAMPLER     uint32 = 4
)

const (
	backBufferResource   = "back_buffer"
	depthStencilResource = "depth_stencil"
)

type RendererConfig struct {
	Width  uint32
	Height uint32
	// FlushEveryFrame waits for the GPU at the end of every frame instead of
	// pipelining frames.
	FlushEveryFrame bool
	QueueCapacity   int
	DescriptorCount int
	ClearColor      [4]float32
	Ring            frame.RingConfig
}

// Renderer drives one frame at a time: acquire a slot, record, submit, retire.
type Renderer struct {
	config RendererConfig

	device    gpu.Device
	queue     *gpu.CommandQueue
	fence     *gpu.Fence
	ring      *frame.Ring
	cmdList   *gpu.CommandList
	heap      *gpu.DescriptorHeap
	pipelines *Pipelines

	mode       RenderMode
	strategies [RENDER_MODE_MAX]renderModeStrategy
	active     renderModeStrategy

	current    *frame.FrameResource
	frameCount uint64
}

func New(device gpu.Device, config RendererConfig) (*Renderer, error) {
	queue, err := gpu.NewCommandQueue(device, config.QueueCapacity)
	if err != nil {
		core.LogError("failed to create the command queue: %s", err)
		return nil, err
	}

	fence := gpu.NewFence(0)
	ring, err := frame.NewRing(config.Ring, fence)
	if err != nil {
		queue.Close()
		core.LogError("failed to create the frame ring: %s", err)
		return nil, err
	}

	r := &Renderer{
		config:    config,
		device:    device,
		queue:     queue,
		fence:     fence,
		ring:      ring,
		heap:      gpu.NewDescriptorHeap(config.DescriptorCount),
		pipelines: NewPipelines(device),
		mode:      RENDER_MODE_NORMAL,
	}
	r.strategies[RENDER_MODE_NORMAL] = normalMode{}
	r.strategies[RENDER_MODE_PIXEL_OVERDRAW] = &pixelOverdrawMode{}

	// the list is created open and closed right away so BeginFrame can reset it
	r.cmdList = gpu.NewCommandList("main", ring.Slots()[0].CmdListAlloc, gpu.NoPipeline)
	if err := r.cmdList.Close(); err != nil {
		queue.Close()
		return nil, err
	}

	core.LogInfo("renderer created on %s with %d frame resources", device.Name(), ring.Size())
	return r, nil
}

func (r *Renderer) Device() gpu.Device                 { return r.device }
func (r *Renderer) Queue() *gpu.CommandQueue           { return r.queue }
func (r *Renderer) Fence() *gpu.Fence                  { return r.fence }
func (r *Renderer) Ring() *frame.Ring                  { return r.ring }
func (r *Renderer) Heap() *gpu.DescriptorHeap          { return r.heap }
func (r *Renderer) Pipelines() *Pipelines              { return r.pipelines }
func (r *Renderer) CommandList() *gpu.CommandList      { return r.cmdList }
func (r *Renderer) CurrentFrame() *frame.FrameResource { return r.current }
func (r *Renderer) FrameCount() uint64                 { return r.frameCount }
func (r *Renderer) RenderMode() RenderMode             { return r.mode }
func (r *Renderer) Width() uint32                      { return r.config.Width }
func (r *Renderer) Height() uint32                     { return r.config.Height }

// AspectRatio of the back buffer.
func (r *Renderer) AspectRatio() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetRenderMode takes effect at the next BeginFrame.
func (r *Renderer) SetRenderMode(mode RenderMode) error {
	if mode >= RENDER_MODE_MAX {
		return fmt.Errorf("render mode %d: %w", mode, core.ErrInvalidConfig)
	}
	if mode != r.mode {
		core.LogInfo("render mode changed to %s", mode)
		r.mode = mode
	}
	return nil
}

func (r *Renderer) SetClearColor(color [4]float32) {
	r.config.ClearColor = color
}

func (r *Renderer) Resize(width, height uint32) {
	r.config.Width = width
	r.config.Height = height
}

// BeginFrame acquires the next frame slot, waiting for the GPU if needed,
// and opens the command list on the slot's allocator.
func (r *Renderer) BeginFrame(ctx context.Context) (*frame.FrameResource, error) {
	if r.current != nil {
		return nil, fmt.Errorf("frame %d still open: %w", r.frameCount, core.ErrCommandListOpen)
	}
	slot, err := r.ring.AcquireNext(ctx)
	if err != nil {
		return nil, err
	}
	if err := slot.CmdListAlloc.Reset(); err != nil {
		core.LogError("frame slot %d handed out while in use: %s", slot.Index, err)
		return nil, err
	}
	if err := r.cmdList.Reset(slot.CmdListAlloc, gpu.NoPipeline); err != nil {
		return nil, err
	}
	r.current = slot

	r.active = r.strategies[r.mode]
	if err := r.active.prepare(r); err != nil {
		return nil, err
	}

	cl := r.cmdList
	cl.ResourceBarrier(backBufferResource, gpu.RESOURCE_STATE_PRESENT, gpu.RESOURCE_STATE_RENDER_TARGET)
	cl.ClearRenderTargetView(r.config.ClearColor)
	cl.ClearDepthStencilView()
	if slot.PassCB.Len() > 0 {
		cl.SetGraphicsRootConstantBufferView(ROOT_PARAM_PASS_CB, slot.PassCB, 0)
	}
	return slot, nil
}

// UpdatePassCB stores the pass constants of the current frame.
func (r *Renderer) UpdatePassCB(pc metadata.PassConstants) error {
	if r.current == nil {
		return core.ErrRingNotAcquired
	}
	return r.current.PassCB.CopyData(0, pc)
}

// LayerPass draws one scene layer with a pipeline.
type LayerPass struct {
	Layer    scene.Layer
	Pipeline metadata.PipelineID
}

// DrawLayers records the items of each pass in order. Pipelines are mapped
// through the active render mode.
func (r *Renderer) DrawLayers(sc *scene.Scene, passes ...LayerPass) error {
	if r.current == nil {
		return core.ErrRingNotAcquired
	}
	for _, pass := range passes {
		if err := r.DrawItems(sc, pass.Pipeline, sc.LayerItems(pass.Layer)...); err != nil {
			return fmt.Errorf("drawing layer %s: %w", pass.Layer, err)
		}
	}
	return nil
}

// DrawItems records the given items with one pipeline, mapped through the
// active render mode.
func (r *Renderer) DrawItems(sc *scene.Scene, pipeline metadata.PipelineID, items ...scene.ItemID) error {
	if r.current == nil {
		return core.ErrRingNotAcquired
	}
	pso := r.active.pipeline(pipeline)
	if !r.pipelines.Has(pso) {
		return fmt.Errorf("pipeline %s: %w", pso, core.ErrUnknownPipeline)
	}
	r.cmdList.SetPipelineState(pso)
	return r.drawRenderItems(sc, items)
}

func (r *Renderer) drawRenderItems(sc *scene.Scene, items []scene.ItemID) error {
	cl := r.cmdList
	slot := r.current
	for _, id := range items {
		ri, err := sc.Item(id)
		if err != nil {
			return err
		}
		mesh, err := sc.Mesh(ri.Mesh)
		if err != nil {
			return err
		}
		mat, err := sc.Material(ri.Material)
		if err != nil {
			return err
		}

		if mesh.Dynamic && slot.VertexBuffer != nil {
			cl.SetVertexBuffer(slot.VertexBuffer)
		} else {
			cl.SetVertexBuffer(mesh.Vertices)
		}
		cl.SetIndexBuffer(mesh.Indices)
		cl.SetGraphicsRootDescriptorTable(ROOT_PARAM_TEXTURE, mat.DiffuseSrvHeapIndex)
		cl.SetGraphicsRootConstantBufferView(ROOT_PARAM_OBJECT_CB, slot.ObjectCB, ri.ObjCBIndex)
		cl.SetGraphicsRootConstantBufferView(ROOT_PARAM_MATERIAL_CB, slot.MaterialCB, mat.CBIndex)
		cl.DrawIndexedInstanced(ri.IndexCount, 1, ri.StartIndexLocation, ri.BaseVertexLocation)
	}
	return nil
}

// EndFrame closes and submits the frame, presents it and retires the slot.
func (r *Renderer) EndFrame(ctx context.Context) error {
	if r.current == nil {
		return core.ErrRingNotAcquired
	}
	defer func() { r.current = nil }()

	if err := r.active.finish(r); err != nil {
		return err
	}
	r.cmdList.ResourceBarrier(backBufferResource, gpu.RESOURCE_STATE_RENDER_TARGET, gpu.RESOURCE_STATE_PRESENT)
	if err := r.cmdList.Close(); err != nil {
		core.LogError("failed to close the command list: %s", err)
		return err
	}
	if err := r.queue.ExecuteCommandLists(r.cmdList); err != nil {
		return err
	}
	if err := r.queue.Present(); err != nil {
		return err
	}
	if err := r.ring.Retire(r.queue); err != nil {
		return err
	}
	r.frameCount++

	if r.config.FlushEveryFrame {
		return r.Flush(ctx)
	}
	return nil
}

// Flush blocks until the GPU has executed everything submitted so far.
func (r *Renderer) Flush(ctx context.Context) error {
	start := time.Now()
	if err := r.ring.Flush(ctx, r.queue); err != nil {
		return err
	}
	core.LogDebug("flushed command queue at fence %d in %s", r.ring.FenceValue(), time.Since(start))
	return nil
}

// Shutdown waits for in flight frames and stops the queue. If the wait
// fails the queued work is dropped.
func (r *Renderer) Shutdown(ctx context.Context) error {
	err := r.Flush(ctx)
	if err != nil {
		core.LogError("renderer shutdown: %s", err)
		r.queue.Abort()
		return err
	}
	r.queue.Close()
	return nil
}
