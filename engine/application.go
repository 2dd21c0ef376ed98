package engine

import (
	"time"

	"github.com/spaghettifunk/frameflight/engine/config"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/renderer"
)

const defaultDescriptorCount = 128

type ApplicationConfig struct {
	// The application name used in logs.
	Name string
	// Back buffer starting width.
	StartWidth uint32
	// Back buffer starting height.
	StartHeight uint32
	LogLevel    core.LogLevel
	// MaxFrames stops Run after that many frames, zero runs until cancelled.
	MaxFrames uint64
	// TargetFrameTime caps the frame rate, zero is uncapped.
	TargetFrameTime time.Duration
	// FixedStep makes the clock advance by a constant step every frame.
	FixedStep time.Duration
	// Input replays key presses at given frames.
	Input []ScriptedKey
	// Mouse replays mouse actions at given frames.
	Mouse []ScriptedMouse

	DeviceName    string
	DeviceLatency time.Duration

	MaterialsDir   string
	WatchMaterials bool
	AssetWorkers   int

	// Renderer is filled in from the file config. Boot may adjust it before
	// the renderer is created.
	Renderer renderer.RendererConfig
}

type ScriptedKey struct {
	Frame uint64
	Key   core.KeyCode
}

type ScriptedMouse struct {
	Frame  uint64
	Action core.MouseAction
	Button core.Button
	X, Y   uint16
	Wheel  int8
}

// NewApplicationConfig translates the file config into engine settings.
func NewApplicationConfig(cfg *config.Config) (*ApplicationConfig, error) {
	level, err := core.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	ac := &ApplicationConfig{
		Name:           cfg.Application.Name,
		StartWidth:     cfg.Application.Width,
		StartHeight:    cfg.Application.Height,
		LogLevel:       level,
		MaxFrames:      cfg.Application.MaxFrames,
		FixedStep:      cfg.Application.FixedStep.Std(),
		DeviceName:     cfg.Device.Name,
		DeviceLatency:  cfg.Device.Latency.Std(),
		MaterialsDir:   cfg.Assets.Directory,
		WatchMaterials: cfg.Assets.Watch,
		AssetWorkers:   cfg.Assets.Workers,
		Renderer: renderer.RendererConfig{
			Width:           cfg.Application.Width,
			Height:          cfg.Application.Height,
			QueueCapacity:   cfg.Device.QueueCapacity,
			DescriptorCount: defaultDescriptorCount,
			Ring: frame.RingConfig{
				Size:              cfg.Frames.ResourceCount,
				MaxFramesInFlight: cfg.Frames.MaxInFlight,
				FenceTimeout:      cfg.Frames.FenceTimeout.Std(),
				Resources:         frame.ResourceConfig{PassCount: 1},
			},
		},
	}
	if cfg.Application.TargetFPS > 0 {
		ac.TargetFrameTime = time.Duration(float64(time.Second) / cfg.Application.TargetFPS)
	}
	for _, k := range cfg.Application.Input {
		code, err := core.ParseKeyCode(k.Key)
		if err != nil {
			return nil, err
		}
		ac.Input = append(ac.Input, ScriptedKey{Frame: k.Frame, Key: code})
	}
	for _, m := range cfg.Application.Mouse {
		action, err := m.Parse()
		if err != nil {
			return nil, err
		}
		sm := ScriptedMouse{Frame: m.Frame, Action: action, X: m.X, Y: m.Y, Wheel: m.Wheel}
		if action == core.MOUSE_PRESS || action == core.MOUSE_RELEASE {
			sm.Button, _ = core.ParseButton(m.Button)
		}
		ac.Mouse = append(ac.Mouse, sm)
	}
	return ac, nil
}
