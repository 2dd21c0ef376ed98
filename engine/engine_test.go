package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine/config"
	"github.com/spaghettifunk/frameflight/engine/core"
)

type countingGame struct {
	*Game
	updates int
	renders int
	keys    []core.KeyCode
	resized [][2]uint32
}

func newCountingGame(t *testing.T, mutate func(*config.Config)) *countingGame {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Application.FixedStep = config.Duration(time.Second / 60)
	if mutate != nil {
		mutate(cfg)
	}
	ac, err := NewApplicationConfig(cfg)
	require.NoError(t, err)

	cg := &countingGame{Game: &Game{ApplicationConfig: ac}}
	cg.FnUpdate = func(totalTime, deltaTime float64) error {
		cg.updates++
		return nil
	}
	cg.FnRender = func(ctx context.Context, totalTime, deltaTime float64) error {
		cg.renders++
		if _, err := cg.Renderer.BeginFrame(ctx); err != nil {
			return err
		}
		return cg.Renderer.EndFrame(ctx)
	}
	cg.FnOnKey = func(key core.KeyCode, pressed bool) error {
		if pressed {
			cg.keys = append(cg.keys, key)
		}
		return nil
	}
	cg.FnOnResize = func(width, height uint32) error {
		cg.resized = append(cg.resized, [2]uint32{width, height})
		return nil
	}
	return cg
}

func startEngine(t *testing.T, g *Game) *Engine {
	t.Helper()
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	return e
}

func TestEngineRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	_, err = New(&Game{})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestEngineStages(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) { c.Application.MaxFrames = 1 })
	e, err := New(cg.Game)
	require.NoError(t, err)
	assert.Equal(t, EngineStageBootComplete, e.Stage())
	assert.ErrorIs(t, e.Run(context.Background()), core.ErrEngineNotInitialized)

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.ErrorIs(t, e.Initialize(), core.ErrEngineNotInitialized)

	require.NoError(t, e.Run(context.Background()))
	require.NoError(t, e.Shutdown(context.Background()))
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestEngineRunsMaxFrames(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) { c.Application.MaxFrames = 7 })
	e := startEngine(t, cg.Game)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(7), e.FrameCount())
	assert.Equal(t, 7, cg.updates)
	assert.Equal(t, 7, cg.renders)
	assert.Equal(t, uint64(7), e.Renderer().FrameCount())
	assert.Equal(t, uint64(7), e.Metrics().TotalFrames)
	// the initial resize reports the start size
	assert.Equal(t, [][2]uint32{{800, 600}}, cg.resized)
}

func TestEngineScriptedInput(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) {
		c.Application.MaxFrames = 100
		c.Application.Input = []config.ScriptedKey{
			{Frame: 1, Key: "1"},
			{Frame: 2, Key: "1"},
			{Frame: 4, Key: "escape"},
		}
	})
	e := startEngine(t, cg.Game)

	require.NoError(t, e.Run(context.Background()))
	// escape quits instead of reaching the game
	assert.Equal(t, []core.KeyCode{core.KEY_1, core.KEY_1}, cg.keys)
	assert.Equal(t, uint64(5), e.FrameCount())
}

func TestEngineStopsOnCancel(t *testing.T) {
	cg := newCountingGame(t, nil)
	e := startEngine(t, cg.Game)

	ctx, cancel := context.WithCancel(context.Background())
	cg.FnUpdate = func(totalTime, deltaTime float64) error {
		cg.updates++
		if cg.updates == 3 {
			cancel()
		}
		return nil
	}
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, 3, cg.updates)
}

func TestEngineCancelReachesBlockedFenceWait(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) {
		c.Frames.FenceTimeout = 0
		// the first command list never finishes on its own
		c.Device.Latency = config.Duration(time.Hour)
	})
	e := startEngine(t, cg.Game)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept waiting on the fence after cancel")
	}
	// three slots recorded, the fourth frame waited for the first
	assert.Equal(t, uint64(3), e.Renderer().FrameCount())

	shutdownCtx, stop := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer stop()
	assert.ErrorIs(t, e.Shutdown(shutdownCtx), context.DeadlineExceeded)
}

func TestEngineLostDeviceEndsRun(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) { c.Frames.FenceTimeout = 0 })
	e := startEngine(t, cg.Game)
	e.Device().Lose()

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, core.ErrDeviceLost)
		assert.True(t, core.IsFatal(err))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not notice the lost device")
	}
}

func TestEngineYieldsWhileSuspended(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) { c.Application.MaxFrames = 5 })
	e := startEngine(t, cg.Game)

	e.Events().Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: 0, WindowHeight: 0},
	})
	require.True(t, e.IsSuspended())

	start := time.Now()
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 0, cg.updates)
	assert.GreaterOrEqual(t, time.Since(start), 5*suspendedFrameTime)
}

func TestEngineSuspendsWhileMinimized(t *testing.T) {
	cg := newCountingGame(t, func(c *config.Config) { c.Application.MaxFrames = 6 })
	e := startEngine(t, cg.Game)

	resize := func(w, h uint32) {
		e.Events().Fire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: w, WindowHeight: h},
		})
	}
	cg.FnUpdate = func(totalTime, deltaTime float64) error {
		cg.updates++
		if cg.updates == 2 {
			resize(0, 0)
		}
		return nil
	}
	cg.FnRender = func(ctx context.Context, totalTime, deltaTime float64) error {
		cg.renders++
		return nil
	}
	require.NoError(t, e.Run(context.Background()))

	assert.True(t, e.IsSuspended())
	assert.Equal(t, 2, cg.updates)

	resize(1024, 768)
	assert.False(t, e.IsSuspended())
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
	assert.Equal(t, uint32(1024), e.Renderer().Width())
	assert.Equal(t, [2]uint32{1024, 768}, cg.resized[len(cg.resized)-1])
}

func TestEngineLoadsMaterials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grass.toml"), []byte(`
name = "grass"
roughness = 0.125
`), 0o644))

	cg := newCountingGame(t, func(c *config.Config) { c.Assets.Directory = dir })
	e := startEngine(t, cg.Game)

	require.Len(t, cg.Materials, 1)
	assert.Equal(t, "grass", cg.Materials[0].Name)
	assert.InDelta(t, 0.125, cg.Materials[0].Roughness, 1e-6)
	assert.Equal(t, 1, e.Assets().Count())
}

func TestNewApplicationConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Application.TargetFPS = 50
	cfg.Application.Input = []config.ScriptedKey{{Frame: 3, Key: "F2"}}
	ac, err := NewApplicationConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, ac.TargetFrameTime)
	assert.Equal(t, []ScriptedKey{{Frame: 3, Key: core.KEY_F2}}, ac.Input)
	assert.Equal(t, 3, ac.Renderer.Ring.Size)
	assert.Equal(t, 1, ac.Renderer.Ring.Resources.PassCount)

	cfg.Log.Level = "loud"
	_, err = NewApplicationConfig(cfg)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
