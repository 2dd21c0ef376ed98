package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/frameflight/engine/assets"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/renderer"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// suspendedFrameTime is the shortest frame while the window is minimized.
const suspendedFrameTime = 10 * time.Millisecond

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	device       *gpu.HeadlessDevice
	renderer     *renderer.Renderer
	events       *core.EventSystem
	input        *core.InputSystem
	jobSystem    *systems.JobSystem
	assetManager *assets.AssetManager
	clock        *core.Clock
	metrics      *core.Metrics

	// context of the running loop, used for the flush before a resize
	runCtx context.Context

	width  uint32
	height uint32
	frame  uint64
	// keys pressed by the input script, released on the next frame
	scriptedDown []core.KeyCode
	lastFPS      float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game without application config: %w", core.ErrInvalidConfig)
	}
	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		metrics:      core.NewMetrics(),
		isRunning:    true,
		runCtx:       context.Background(),
	}

	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	e.currentStage = EngineStageBooting
	if g.FnBoot != nil {
		if err := g.FnBoot(); err != nil {
			core.LogError("failed to boot '%s': %s", g.ApplicationConfig.Name, err)
			return nil, err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.width = g.ApplicationConfig.StartWidth
	e.height = g.ApplicationConfig.StartHeight
	if g.ApplicationConfig.FixedStep > 0 {
		e.clock = core.NewFixedStepClock(g.ApplicationConfig.FixedStep)
	} else {
		e.clock = core.NewClock()
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return core.ErrEngineNotInitialized
	}
	e.currentStage = EngineStageInitializing
	cfg := e.gameInstance.ApplicationConfig

	// initialize events and input
	e.events = core.NewEventSystem()
	e.input = core.NewInputSystem(e.events)

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.events.Register(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e.onResized)

	// initialize subsystems
	var opts []gpu.HeadlessDeviceOption
	if cfg.DeviceLatency > 0 {
		opts = append(opts, gpu.WithLatency(cfg.DeviceLatency))
	}
	e.device = gpu.NewHeadlessDevice(cfg.DeviceName, opts...)

	r, err := renderer.New(e.device, cfg.Renderer)
	if err != nil {
		return err
	}
	e.renderer = r

	workers := cfg.AssetWorkers
	if workers < 1 {
		workers = 1
	}
	js, err := systems.NewJobSystem(workers, workers)
	if err != nil {
		return err
	}
	e.jobSystem = js

	var materials []*metadata.MaterialConfig
	if cfg.MaterialsDir != "" {
		am, err := assets.NewAssetManager(js)
		if err != nil {
			return err
		}
		e.assetManager = am
		if err := am.Initialize(cfg.MaterialsDir, cfg.WatchMaterials); err != nil {
			return err
		}
		resources, err := am.LoadAll(metadata.ResourceTypeMaterial)
		if err != nil {
			return err
		}
		for _, res := range resources {
			materials = append(materials, res.Data.(*metadata.MaterialConfig))
		}
	}

	g := e.gameInstance
	g.Renderer = e.renderer
	g.Events = e.events
	g.Input = e.input
	g.Materials = materials

	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			return err
		}
	}
	if g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until the game quits, the frame limit is reached
// or ctx is cancelled. A fatal device error ends the loop with that error.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrEngineNotInitialized
	}
	e.currentStage = EngineStageRunning
	cfg := e.gameInstance.ApplicationConfig
	e.runCtx = ctx
	defer func() { e.runCtx = context.Background() }()

	e.clock.Start()

	for e.isRunning {
		if ctx.Err() != nil {
			core.LogInfo("context done, leaving the frame loop")
			break
		}
		if cfg.MaxFrames > 0 && e.frame >= cfg.MaxFrames {
			core.LogInfo("reached %d frames", e.frame)
			break
		}
		frameStart := time.Now()

		e.replayInput()
		e.drainReloads()

		// Update clock and get delta time.
		e.clock.Update()
		total, delta := e.clock.Total(), e.clock.Delta()

		if !e.isSuspended {
			if err := e.gameInstance.update(total, delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err)
				return err
			}
			// Call the game's render routine.
			if err := e.gameInstance.render(ctx, total, delta); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					core.LogInfo("context done while rendering frame %d", e.frame)
					break
				}
				core.LogError("Game render failed, shutting down: %s", err)
				return err
			}
		}

		// Figure out how long the frame took and, if below the target,
		// give the remaining time back.
		frameElapsed := time.Since(frameStart)
		remaining := cfg.TargetFrameTime - frameElapsed
		if e.isSuspended {
			// nothing is rendered while minimized, do not spin
			remaining = max(remaining, suspendedFrameTime)
		}
		if remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
			}
		}
		e.metrics.Update(time.Since(frameStart).Seconds())
		e.logFrameStats()

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		e.input.Update(delta)
		e.frame++
	}
	return nil
}

func (e *Engine) Shutdown(ctx context.Context) error {
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.renderer != nil {
		errs = append(errs, e.renderer.Shutdown(ctx))
	}
	if e.assetManager != nil {
		errs = append(errs, e.assetManager.Shutdown())
	}
	if e.jobSystem != nil {
		errs = append(errs, e.jobSystem.Shutdown())
	}
	if e.events != nil {
		errs = append(errs, e.events.Shutdown())
	}
	e.isRunning = false
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order) of the back buffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage                 { return e.currentStage }
func (e *Engine) FrameCount() uint64           { return e.frame }
func (e *Engine) Metrics() *core.Metrics       { return e.metrics }
func (e *Engine) Events() *core.EventSystem    { return e.events }
func (e *Engine) Input() *core.InputSystem     { return e.input }
func (e *Engine) Renderer() *renderer.Renderer { return e.renderer }
func (e *Engine) Device() *gpu.HeadlessDevice  { return e.device }
func (e *Engine) Assets() *assets.AssetManager { return e.assetManager }
func (e *Engine) IsSuspended() bool            { return e.isSuspended }

func (e *Engine) replayInput() {
	for _, key := range e.scriptedDown {
		e.input.ProcessKey(key, false)
	}
	e.scriptedDown = e.scriptedDown[:0]
	for _, k := range e.gameInstance.ApplicationConfig.Input {
		if k.Frame == e.frame {
			e.input.ProcessKey(k.Key, true)
			e.scriptedDown = append(e.scriptedDown, k.Key)
		}
	}
	for _, m := range e.gameInstance.ApplicationConfig.Mouse {
		if m.Frame != e.frame {
			continue
		}
		switch m.Action {
		case core.MOUSE_MOVE:
			e.input.ProcessMouseMove(m.X, m.Y)
		case core.MOUSE_PRESS:
			e.input.ProcessMouseMove(m.X, m.Y)
			e.input.ProcessButton(m.Button, true)
		case core.MOUSE_RELEASE:
			e.input.ProcessButton(m.Button, false)
		case core.MOUSE_WHEEL:
			e.input.ProcessMouseWheel(m.Wheel)
		}
	}
}

// drainReloads applies reloaded assets on the frame loop goroutine.
func (e *Engine) drainReloads() {
	if e.assetManager == nil {
		return
	}
	for {
		select {
		case r, ok := <-e.assetManager.Reloads():
			if !ok {
				return
			}
			if r.Err != nil {
				core.LogWarn("skipping asset reload of '%s': %s", r.Path, r.Err)
				continue
			}
			mCfg, ok := r.Resource.Data.(*metadata.MaterialConfig)
			if !ok {
				continue
			}
			core.LogInfo("material '%s' reloaded from '%s'", mCfg.Name, r.Path)
			e.events.Fire(core.EventContext{
				Type: core.EVENT_CODE_MATERIAL_RELOADED,
				Data: &core.MaterialEvent{Path: r.Path, Material: mCfg},
			})
		default:
			return
		}
	}
}

func (e *Engine) logFrameStats() {
	fps, ms := e.metrics.Frame()
	if fps != e.lastFPS {
		e.lastFPS = fps
		core.LogDebug("%s    fps: %.0f   mspf: %.3f", e.gameInstance.ApplicationConfig.Name, fps, ms)
	}
}

func (e *Engine) onEvent(ec core.EventContext) bool {
	switch ec.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(ec core.EventContext) bool {
	ke, ok := ec.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", ec.Type)
		return false
	}

	pressed := ec.Type == core.EVENT_CODE_KEY_PRESSED
	if pressed && ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	if e.gameInstance.FnOnKey != nil {
		if err := e.gameInstance.FnOnKey(ke.KeyCode, pressed); err != nil {
			core.LogError("key 0x%02x: %s", uint16(ke.KeyCode), err)
		}
	}
	return false
}

func (e *Engine) onResized(ec core.EventContext) bool {
	se, ok := ec.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", ec.Type)
		return false
	}

	width := se.WindowWidth
	height := se.WindowHeight
	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		e.clock.Stop()
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
		e.clock.Resume()
	}
	// the back buffer is resized only once the GPU is idle
	if err := e.renderer.Flush(e.runCtx); err != nil {
		core.LogError("flush before resize: %s", err)
	}
	e.renderer.Resize(width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}
