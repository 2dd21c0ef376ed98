package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/frameflight/engine/core"
)

// Duration is a time.Duration written as "250ms" or "2s" in TOML files.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration '%s': %s", core.ErrInvalidConfig, text, err)
	}
	*d = Duration(v)
	return nil
}

// ScriptedKey presses a key at a given frame of a headless run.
type ScriptedKey struct {
	Frame uint64 `toml:"frame"`
	Key   string `toml:"key"`
}

// ScriptedMouse replays a mouse action at a given frame of a headless run.
// Press and release need a button, press and move go to x, y first.
type ScriptedMouse struct {
	Frame  uint64 `toml:"frame"`
	Action string `toml:"action"`
	Button string `toml:"button"`
	X      uint16 `toml:"x"`
	Y      uint16 `toml:"y"`
	Wheel  int8   `toml:"wheel"`
}

type ApplicationConfig struct {
	// The application name used in logs.
	Name string `toml:"name"`
	// App selects the demo to run (box, crate, blend).
	App    string `toml:"app"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// MaxFrames stops the run after that many frames. Zero runs until the
	// context is cancelled.
	MaxFrames uint64 `toml:"max_frames"`
	// TargetFPS caps the frame rate. Zero means uncapped.
	TargetFPS float64 `toml:"target_fps"`
	// FixedStep replaces wall time with a constant per frame step.
	FixedStep Duration        `toml:"fixed_step"`
	Input     []ScriptedKey   `toml:"input"`
	Mouse     []ScriptedMouse `toml:"mouse"`
}

type FramesConfig struct {
	ResourceCount int      `toml:"resource_count"`
	MaxInFlight   int      `toml:"max_in_flight"`
	FenceTimeout  Duration `toml:"fence_timeout"`
}

type DeviceConfig struct {
	Name          string   `toml:"name"`
	Latency       Duration `toml:"latency"`
	QueueCapacity int      `toml:"queue_capacity"`
}

type WavesConfig struct {
	Rows            int      `toml:"rows"`
	Cols            int      `toml:"cols"`
	SpatialStep     float32  `toml:"spatial_step"`
	TimeStep        float32  `toml:"time_step"`
	Speed           float32  `toml:"speed"`
	Damping         float32  `toml:"damping"`
	DisturbInterval Duration `toml:"disturb_interval"`
	Seed            uint64   `toml:"seed"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	// Directory holding the material definitions. Empty disables loading.
	Directory string `toml:"directory"`
	// Watch reloads material files when they change on disk.
	Watch   bool `toml:"watch"`
	Workers int  `toml:"workers"`
}

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Frames      FramesConfig      `toml:"frames"`
	Device      DeviceConfig      `toml:"device"`
	Waves       WavesConfig       `toml:"waves"`
	Log         LogConfig         `toml:"log"`
	Assets      AssetsConfig      `toml:"assets"`
}

// Default returns the settings the demos were tuned with.
func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:   "Frameflight",
			App:    "blend",
			Width:  800,
			Height: 600,
		},
		Frames: FramesConfig{
			ResourceCount: 3,
			MaxInFlight:   3,
			FenceTimeout:  Duration(5 * time.Second),
		},
		Device: DeviceConfig{
			Name:          "headless",
			QueueCapacity: 16,
		},
		Waves: WavesConfig{
			Rows:            128,
			Cols:            128,
			SpatialStep:     1,
			TimeStep:        0.03,
			Speed:           4,
			Damping:         0.2,
			DisturbInterval: Duration(250 * time.Millisecond),
			Seed:            1,
		},
		Log: LogConfig{Level: "info"},
		Assets: AssetsConfig{
			Workers: 4,
		},
	}
}

// Load reads a TOML file on top of the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read config '%s': %s", path, err)
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal writes the config back as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return fmt.Errorf("%w: window size %dx%d", core.ErrInvalidConfig, c.Application.Width, c.Application.Height)
	}
	if c.Application.TargetFPS < 0 {
		return fmt.Errorf("%w: negative target fps %f", core.ErrInvalidConfig, c.Application.TargetFPS)
	}
	if c.Frames.ResourceCount < 1 {
		return fmt.Errorf("%w: frame resource count %d", core.ErrInvalidConfig, c.Frames.ResourceCount)
	}
	if c.Frames.ResourceCount != c.Frames.MaxInFlight {
		return fmt.Errorf("%w: %d frame resources for %d frames in flight",
			core.ErrInvalidConfig, c.Frames.ResourceCount, c.Frames.MaxInFlight)
	}
	if c.Frames.FenceTimeout < 0 || c.Device.Latency < 0 {
		return fmt.Errorf("%w: negative duration", core.ErrInvalidConfig)
	}
	if c.Device.QueueCapacity < 1 {
		return fmt.Errorf("%w: queue capacity %d", core.ErrInvalidConfig, c.Device.QueueCapacity)
	}
	w := c.Waves
	if w.Rows < 5 || w.Cols < 5 || w.SpatialStep <= 0 || w.TimeStep <= 0 || w.DisturbInterval <= 0 {
		return fmt.Errorf("%w: waves grid %dx%d step %f dt %f", core.ErrInvalidConfig, w.Rows, w.Cols, w.SpatialStep, w.TimeStep)
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Assets.Workers < 1 {
		return fmt.Errorf("%w: %d asset workers", core.ErrInvalidConfig, c.Assets.Workers)
	}
	for _, k := range c.Application.Input {
		if _, err := core.ParseKeyCode(k.Key); err != nil {
			return fmt.Errorf("%w: input at frame %d: %s", core.ErrInvalidConfig, k.Frame, err)
		}
	}
	for _, m := range c.Application.Mouse {
		if _, err := m.Parse(); err != nil {
			return fmt.Errorf("%w: mouse at frame %d: %s", core.ErrInvalidConfig, m.Frame, err)
		}
	}
	return nil
}

// Parse resolves the action and, for press and release, the button.
func (m ScriptedMouse) Parse() (core.MouseAction, error) {
	action, err := core.ParseMouseAction(m.Action)
	if err != nil {
		return action, err
	}
	if action == core.MOUSE_PRESS || action == core.MOUSE_RELEASE {
		if _, err := core.ParseButton(m.Button); err != nil {
			return action, err
		}
	}
	return action, nil
}
