package gpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// Device consumes recorded work. Execute and Present are only ever called
// from the command queue goroutine.
type Device interface {
	Name() string
	CreatePipelineState(id metadata.PipelineID, desc metadata.PipelineDesc) error
	CreateSampler(slot int, desc metadata.SamplerDesc) error
	Execute(ctx context.Context, commands []Command) error
	Present(ctx context.Context) error
}

// DrawRecord describes a single draw as seen by the device.
type DrawRecord struct {
	Pipeline    metadata.PipelineID
	Constants   map[uint32]any
	Descriptors map[uint32]int
	IndexCount  uint32
	StencilRef  uint32
}

// Stats are the counters collected by a HeadlessDevice.
type Stats struct {
	Frames             uint64
	CommandLists       uint64
	Draws              uint64
	DrawsPerPipeline   map[metadata.PipelineID]uint64
	ConstantReads      uint64
	VertexReads        uint64
	Clears             uint64
	Barriers           uint64
	StencilIncrements  uint64
	OverdrawCopies     uint64
	LastOverdraw       uint64
	PipelinesCreated   uint64
	SamplersCreated    uint64
	LastSampler        metadata.SamplerDesc
	LastPresentedDraws uint64
}

type HeadlessDeviceOption func(*HeadlessDevice)

// WithLatency delays every executed command list by d.
func WithLatency(d time.Duration) HeadlessDeviceOption {
	return func(hd *HeadlessDevice) {
		hd.latency = d
	}
}

// WithDrawObserver calls fn for every executed draw.
func WithDrawObserver(fn func(DrawRecord)) HeadlessDeviceOption {
	return func(hd *HeadlessDevice) {
		hd.onDraw = fn
	}
}

// HeadlessDevice executes command lists in software. It reads every bound
// constant buffer element at draw time, so data that was overwritten before
// execution is observed exactly as a GPU would observe it.
type HeadlessDevice struct {
	name    string
	latency time.Duration
	onDraw  func(DrawRecord)

	mu        sync.Mutex
	lost      bool
	pipelines map[metadata.PipelineID]metadata.PipelineDesc
	samplers  map[int]metadata.SamplerDesc
	stats     Stats

	// execution state, only touched by the queue goroutine
	pipeline    metadata.PipelineID
	bound       map[uint32]Command
	descriptors map[uint32]int
	vertices    BufferView
	stencil     uint64
	stencilRef  uint32
	frameDraws  uint64
}

func NewHeadlessDevice(name string, opts ...HeadlessDeviceOption) *HeadlessDevice {
	hd := &HeadlessDevice{
		name:        name,
		pipelines:   make(map[metadata.PipelineID]metadata.PipelineDesc),
		samplers:    make(map[int]metadata.SamplerDesc),
		pipeline:    NoPipeline,
		bound:       make(map[uint32]Command),
		descriptors: make(map[uint32]int),
	}
	hd.stats.DrawsPerPipeline = make(map[metadata.PipelineID]uint64)
	for _, opt := range opts {
		opt(hd)
	}
	return hd
}

func (hd *HeadlessDevice) Name() string {
	return hd.name
}

// Lose puts the device in the removed state. Every following Execute fails.
func (hd *HeadlessDevice) Lose() {
	hd.mu.Lock()
	hd.lost = true
	hd.mu.Unlock()
}

func (hd *HeadlessDevice) CreatePipelineState(id metadata.PipelineID, desc metadata.PipelineDesc) error {
	if id >= metadata.PIPELINE_MAX {
		return fmt.Errorf("creating pipeline %d: %w", id, core.ErrUnknownPipeline)
	}
	hd.mu.Lock()
	defer hd.mu.Unlock()
	hd.pipelines[id] = desc
	hd.stats.PipelinesCreated++
	return nil
}

func (hd *HeadlessDevice) CreateSampler(slot int, desc metadata.SamplerDesc) error {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	hd.samplers[slot] = desc
	hd.stats.SamplersCreated++
	hd.stats.LastSampler = desc
	return nil
}

// Stats returns a snapshot of the device counters.
func (hd *HeadlessDevice) Stats() Stats {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	s := hd.stats
	s.DrawsPerPipeline = make(map[metadata.PipelineID]uint64, len(hd.stats.DrawsPerPipeline))
	for k, v := range hd.stats.DrawsPerPipeline {
		s.DrawsPerPipeline[k] = v
	}
	return s
}

func (hd *HeadlessDevice) Present(ctx context.Context) error {
	hd.mu.Lock()
	defer hd.mu.Unlock()
	if hd.lost {
		return core.ErrDeviceLost
	}
	hd.stats.Frames++
	hd.stats.LastPresentedDraws = hd.frameDraws
	hd.frameDraws = 0
	return nil
}

func (hd *HeadlessDevice) Execute(ctx context.Context, commands []Command) error {
	if hd.latency > 0 {
		timer := time.NewTimer(hd.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	hd.mu.Lock()
	defer hd.mu.Unlock()
	if hd.lost {
		return core.ErrDeviceLost
	}
	hd.stats.CommandLists++

	// root bindings do not survive across command lists
	hd.pipeline = NoPipeline
	clear(hd.bound)
	clear(hd.descriptors)
	hd.vertices = nil

	for i := range commands {
		if err := hd.execute(&commands[i]); err != nil {
			return err
		}
	}
	return nil
}

func (hd *HeadlessDevice) execute(cmd *Command) error {
	switch cmd.Type {
	case CMD_SET_PIPELINE:
		if _, ok := hd.pipelines[cmd.Pipeline]; !ok {
			return fmt.Errorf("binding pipeline %s: %w", cmd.Pipeline, core.ErrUnknownPipeline)
		}
		hd.pipeline = cmd.Pipeline
	case CMD_CLEAR_RENDER_TARGET:
		hd.stats.Clears++
	case CMD_CLEAR_DEPTH_STENCIL:
		hd.stats.Clears++
		hd.stencil = 0
	case CMD_SET_ROOT_CBV:
		if cmd.Buffer == nil {
			return fmt.Errorf("binding root parameter %d: %w", cmd.RootParameter, core.ErrInvalidHandle)
		}
		hd.bound[cmd.RootParameter] = *cmd
	case CMD_SET_DESCRIPTOR_TABLE:
		hd.descriptors[cmd.RootParameter] = cmd.Descriptor
	case CMD_SET_VERTEX_BUFFER:
		hd.vertices = cmd.Buffer
	case CMD_SET_INDEX_BUFFER:
	case CMD_SET_STENCIL_REF:
		hd.stencilRef = cmd.StencilRef
	case CMD_DRAW_INDEXED:
		return hd.draw(cmd)
	case CMD_COPY_DEPTH_STENCIL:
		hd.stats.OverdrawCopies++
		hd.stats.LastOverdraw = hd.stencil
	case CMD_RESOURCE_BARRIER:
		hd.stats.Barriers++
	}
	return nil
}

func (hd *HeadlessDevice) draw(cmd *Command) error {
	if hd.pipeline == NoPipeline {
		return fmt.Errorf("drawing without a pipeline: %w", core.ErrUnknownPipeline)
	}
	desc := hd.pipelines[hd.pipeline]

	record := DrawRecord{
		Pipeline:    hd.pipeline,
		Constants:   make(map[uint32]any, len(hd.bound)),
		Descriptors: make(map[uint32]int, len(hd.descriptors)),
		IndexCount:  cmd.IndexCount,
		StencilRef:  hd.stencilRef,
	}
	for param, binding := range hd.bound {
		v, err := binding.Buffer.ReadElement(binding.Element)
		if err != nil {
			return fmt.Errorf("reading root parameter %d: %w", param, err)
		}
		record.Constants[param] = v
		hd.stats.ConstantReads++
	}
	for param, index := range hd.descriptors {
		record.Descriptors[param] = index
	}
	if hd.vertices != nil && hd.vertices.Len() > 0 {
		if _, err := hd.vertices.ReadElement(0); err != nil {
			return err
		}
		hd.stats.VertexReads++
	}

	if desc.StencilEnable && desc.StencilPass == metadata.STENCIL_OP_INCREMENT {
		hd.stencil++
		hd.stats.StencilIncrements++
	}
	hd.stats.Draws++
	hd.stats.DrawsPerPipeline[hd.pipeline]++
	hd.frameDraws++

	if hd.onDraw != nil {
		hd.onDraw(record)
	}
	return nil
}
