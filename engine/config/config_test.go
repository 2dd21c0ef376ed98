package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Frames.ResourceCount)
	assert.Equal(t, 128, cfg.Waves.Rows)
	assert.Equal(t, 250*time.Millisecond, cfg.Waves.DisturbInterval.Std())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[application]
app = "crate"
max_frames = 30
fixed_step = "16ms"
input = [{ frame = 5, key = "F2" }, { frame = 10, key = "1" }]

[[application.mouse]]
frame = 2
action = "press"
button = "left"
x = 10
y = 20

[[application.mouse]]
frame = 3
action = "wheel"
wheel = -2

[frames]
resource_count = 2
max_in_flight = 2
fence_timeout = "1s"

[device]
latency = "2ms"
`))
	require.NoError(t, err)
	assert.Equal(t, "crate", cfg.Application.App)
	assert.Equal(t, uint64(30), cfg.Application.MaxFrames)
	assert.Equal(t, 16*time.Millisecond, cfg.Application.FixedStep.Std())
	require.Len(t, cfg.Application.Input, 2)
	assert.Equal(t, "F2", cfg.Application.Input[0].Key)
	assert.Equal(t, []ScriptedMouse{
		{Frame: 2, Action: "press", Button: "left", X: 10, Y: 20},
		{Frame: 3, Action: "wheel", Wheel: -2},
	}, cfg.Application.Mouse)
	assert.Equal(t, 2, cfg.Frames.ResourceCount)
	assert.Equal(t, time.Second, cfg.Frames.FenceTimeout.Std())
	assert.Equal(t, 2*time.Millisecond, cfg.Device.Latency.Std())
	// untouched sections keep their defaults
	assert.Equal(t, uint32(800), cfg.Application.Width)
	assert.Equal(t, 16, cfg.Device.QueueCapacity)
}

func TestRingSizeMustMatchFramesInFlight(t *testing.T) {
	_, err := Parse([]byte(`
[frames]
resource_count = 3
max_in_flight = 2
`))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"zero width":     func(c *Config) { c.Application.Width = 0 },
		"no frames":      func(c *Config) { c.Frames.ResourceCount, c.Frames.MaxInFlight = 0, 0 },
		"queue capacity": func(c *Config) { c.Device.QueueCapacity = 0 },
		"small waves":    func(c *Config) { c.Waves.Rows = 4 },
		"log level":      func(c *Config) { c.Log.Level = "loud" },
		"workers":        func(c *Config) { c.Assets.Workers = 0 },
		"unknown key":    func(c *Config) { c.Application.Input = []ScriptedKey{{Frame: 1, Key: "nope"}} },
		"negative fps":   func(c *Config) { c.Application.TargetFPS = -1 },
		"mouse action":   func(c *Config) { c.Application.Mouse = []ScriptedMouse{{Frame: 1, Action: "click"}} },
		"mouse button":   func(c *Config) { c.Application.Mouse = []ScriptedMouse{{Frame: 1, Action: "press", Button: "thumb"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`[frames]
fence_timeout = "soon"`))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = Parse([]byte(`[bogus]
key = 1`))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Application.App = "box"
	cfg.Frames.FenceTimeout = Duration(3 * time.Second)
	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "frameflight.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "box", loaded.Application.App)
	assert.Equal(t, cfg.Frames, loaded.Frames)
	assert.Equal(t, cfg.Device, loaded.Device)
	assert.Equal(t, cfg.Waves.Rows, loaded.Waves.Rows)
	assert.Equal(t, cfg.Waves.DisturbInterval, loaded.Waves.DisturbInterval)
	assert.InDelta(t, cfg.Waves.TimeStep, loaded.Waves.TimeStep, 1e-6)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
