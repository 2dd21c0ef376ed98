package testbed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine"
	"github.com/spaghettifunk/frameflight/engine/config"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/scene"
)

func testConfig(app string, frames uint64, step time.Duration) *config.Config {
	cfg := config.Default()
	cfg.Application.App = app
	cfg.Application.MaxFrames = frames
	cfg.Application.FixedStep = config.Duration(step)
	cfg.Waves.Rows = 32
	cfg.Waves.Cols = 32
	cfg.Log.Level = "error"
	return cfg
}

// startApp boots and initializes an application without running it.
func startApp(t *testing.T, cfg *config.Config) (*engine.Engine, *engine.Game) {
	t.Helper()
	g, err := New(cfg.Application.App, cfg)
	require.NoError(t, err)
	e, err := engine.New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	return e, g
}

// runApp runs cfg.Application.MaxFrames frames and shuts the engine down.
func runApp(t *testing.T, cfg *config.Config) (*engine.Engine, *engine.Game, gpu.Stats) {
	t.Helper()
	e, g := startApp(t, cfg)
	require.NoError(t, e.Run(context.Background()))
	require.NoError(t, e.Shutdown(context.Background()))
	return e, g, e.Device().Stats()
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"blend", "box", "crate"}, Names())

	_, err := New("teapot", config.Default())
	assert.ErrorIs(t, err, core.ErrUnknownApplication)
}

func TestBoxFlushesEveryFrame(t *testing.T) {
	cfg := testConfig("box", 10, time.Second/60)
	e, g, stats := runApp(t, cfg)
	app := g.State.(*BoxApp)

	assert.Equal(t, 1, e.Renderer().Ring().Size())
	assert.Equal(t, uint64(10), stats.Draws)
	assert.Equal(t, uint64(10), stats.DrawsPerPipeline[metadata.PIPELINE_COLORED])
	assert.Equal(t, uint64(10), app.objectCB.Writes(0))
	assert.Equal(t, uint64(10), app.timeCB.Writes(0))
	assert.Equal(t, e.Renderer().Ring().FenceValue(), e.Renderer().Fence().CompletedValue())

	tc, err := app.timeCB.At(0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/60, tc.Time, 1e-4)
	assert.Len(t, app.indices, 36)
}

func TestCrateKeys(t *testing.T) {
	cfg := testConfig("crate", 8, time.Second/60)
	cfg.Application.Input = []config.ScriptedKey{
		{Frame: 1, Key: "4"},
		{Frame: 2, Key: "2"},
		{Frame: 3, Key: "7"},
		{Frame: 4, Key: "4"},
		{Frame: 5, Key: "F2"},
	}
	_, g, stats := runApp(t, cfg)
	app := g.State.(*CrateApp)

	// the initial sampler plus one per actual change
	assert.Equal(t, uint64(3), stats.SamplersCreated)
	assert.Equal(t, metadata.SamplerDesc{
		Filter:        metadata.FILTER_LINEAR,
		AddressMode:   metadata.ADDRESS_MODE_CLAMP,
		MaxAnisotropy: crateMaxAnisotropy,
	}, stats.LastSampler)

	assert.Equal(t, uint64(5), stats.DrawsPerPipeline[metadata.PIPELINE_OPAQUE])
	assert.Equal(t, uint64(5), stats.DrawsPerPipeline[metadata.PIPELINE_FLARE])
	assert.Equal(t, uint64(3), stats.DrawsPerPipeline[metadata.PIPELINE_OPAQUE_WIREFRAME])
	assert.Equal(t, uint64(3), stats.DrawsPerPipeline[metadata.PIPELINE_FLARE_WIREFRAME])

	assert.InDelta(t, 0.99, app.texScale, 1e-6)
	crate, err := app.scene.Item(app.crate)
	require.NoError(t, err)
	assert.InDelta(t, 0.99, crate.TexTransform.At(0, 0), 1e-6)
}

func TestBoxMouseDragsCamera(t *testing.T) {
	drag := []config.ScriptedMouse{
		{Frame: 1, Action: "press", Button: "left", X: 100, Y: 100},
		{Frame: 2, Action: "move", X: 140, Y: 120},
		{Frame: 3, Action: "release", Button: "left"},
		{Frame: 4, Action: "press", Button: "right", X: 100, Y: 100},
		{Frame: 5, Action: "move", X: 3100, Y: 100},
		{Frame: 6, Action: "release", Button: "right"},
	}

	cfg := testConfig("box", 8, time.Second/60)
	cfg.Application.Mouse = drag
	_, g, _ := runApp(t, cfg)
	cam := g.State.(*BoxApp).camera

	assert.InDelta(t, 1.5*math.K_PI+math.DegToRad(10), cam.Theta, 1e-5)
	assert.InDelta(t, math.K_QUARTER_PI+math.DegToRad(5), cam.Phi, 1e-5)
	// 3000 pixels of right drag would be 20 units, the box stops at 15
	assert.InDelta(t, 15, cam.Radius, 1e-5)

	cfg = testConfig("box", 8, time.Second/60)
	cfg.Application.Mouse = append(drag, config.ScriptedMouse{Frame: 7, Action: "wheel", Wheel: 3})
	_, g, _ = runApp(t, cfg)
	cam = g.State.(*BoxApp).camera
	assert.InDelta(t, 15-0.005*3*wheelNotch, cam.Radius, 1e-5)
}

func TestCrateTexScaleFloor(t *testing.T) {
	e, g := startApp(t, testConfig("crate", 1, time.Second/60))
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	app := g.State.(*CrateApp)

	for i := 0; i < 200; i++ {
		require.NoError(t, app.OnKey(core.KEY_2, true))
	}
	assert.InDelta(t, minTexScale, app.texScale, 1e-6)

	// unchanged settings do not rebuild the sampler
	app.setFilter(metadata.FILTER_POINT)
	app.setAddressMode(metadata.ADDRESS_MODE_WRAP)
	assert.False(t, app.samplerDirty)
}

func TestBlendAnimation(t *testing.T) {
	const frames = 12
	// a step above 1/30s swaps the bolt texture every frame
	cfg := testConfig("blend", frames, 50*time.Millisecond)
	e, g, stats := runApp(t, cfg)
	app := g.State.(*BlendApp)

	assert.Equal(t, 3, e.Renderer().Ring().Size())
	assert.Equal(t, uint64(4*frames), stats.Draws)
	for _, id := range []metadata.PipelineID{
		metadata.PIPELINE_OPAQUE,
		metadata.PIPELINE_TRANSPARENT,
		metadata.PIPELINE_ALPHA_TESTED,
		metadata.PIPELINE_ANIMATED_BOLT,
	} {
		assert.Equal(t, uint64(frames), stats.DrawsPerPipeline[id], id.String())
	}

	bolt, err := app.scene.Material(app.bolt)
	require.NoError(t, err)
	assert.Equal(t, boltFirstSrv+frames, bolt.DiffuseSrvHeapIndex)

	water, err := app.scene.Material(app.water)
	require.NoError(t, err)
	assert.InDelta(t, waterScrollU*0.05*frames, water.MatTransform.At(3, 0), 1e-4)
	assert.InDelta(t, waterScrollV*0.05*frames, water.MatTransform.At(3, 1), 1e-4)

	disturbed := false
	for i := 0; i < app.waves.VertexCount(); i++ {
		if app.waves.Position(i).Y != 0 {
			disturbed = true
			break
		}
	}
	assert.True(t, disturbed)
}

func TestBlendBoltWrapsAround(t *testing.T) {
	e, g := startApp(t, testConfig("blend", 1, time.Second/60))
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	app := g.State.(*BlendApp)

	total := 0.0
	for i := 0; i < boltFrameCount; i++ {
		total += 0.05
		require.NoError(t, app.animateMaterials(total, 0.05))
	}
	bolt, err := app.scene.Material(app.bolt)
	require.NoError(t, err)
	assert.Equal(t, boltFirstSrv, bolt.DiffuseSrvHeapIndex)
	assert.Equal(t, boltFirstSrv+boltFrameCount, e.Renderer().Heap().Len())
}

func TestBlendPixelOverdraw(t *testing.T) {
	const frames = 9
	cfg := testConfig("blend", frames, time.Second/60)
	cfg.Application.Input = []config.ScriptedKey{{Frame: 6, Key: "F2"}}
	_, _, stats := runApp(t, cfg)

	assert.Equal(t, uint64(6), stats.DrawsPerPipeline[metadata.PIPELINE_OPAQUE])
	assert.Equal(t, uint64(3), stats.DrawsPerPipeline[metadata.PIPELINE_OPAQUE_OVERDRAW])
	assert.Equal(t, uint64(3), stats.DrawsPerPipeline[metadata.PIPELINE_ANIMATED_BOLT_OVERDRAW])
	assert.Equal(t, uint64(3), stats.DrawsPerPipeline[metadata.PIPELINE_OVERDRAW_QUAD])
	// every scene item increments the stencil once
	assert.Equal(t, uint64(4), stats.LastOverdraw)
}

func TestBlendLayerOrder(t *testing.T) {
	e, g := startApp(t, testConfig("blend", 1, time.Second/60))
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	app := g.State.(*BlendApp)

	layers := func() []scene.Layer {
		var out []scene.Layer
		for _, pass := range app.layerOrder() {
			out = append(out, pass.Layer)
		}
		return out
	}
	assert.Equal(t, []scene.Layer{scene.LAYER_OPAQUE, scene.LAYER_ALPHA_TESTED, scene.LAYER_TRANSPARENT, scene.LAYER_ANIMATED_BOLT}, layers())

	require.NoError(t, app.OnKey(core.KEY_1, true))
	assert.Equal(t, []scene.Layer{scene.LAYER_TRANSPARENT, scene.LAYER_ANIMATED_BOLT, scene.LAYER_OPAQUE, scene.LAYER_ALPHA_TESTED}, layers())

	require.NoError(t, app.OnKey(core.KEY_F2, true))
	assert.Equal(t, renderer.RENDER_MODE_PIXEL_OVERDRAW, e.Renderer().RenderMode())
	require.NoError(t, app.OnKey(core.KEY_F1, true))
	assert.Equal(t, renderer.RENDER_MODE_NORMAL, e.Renderer().RenderMode())
}

func TestBlendMaterials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grass.toml"), []byte(`
name = "grass"
diffuse_map = "grass"
roughness = 0.5
`), 0o644))

	cfg := testConfig("blend", 1, time.Second/60)
	cfg.Assets.Directory = dir
	e, g := startApp(t, cfg)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	app := g.State.(*BlendApp)

	grassID, err := app.scene.MaterialByName("grass")
	require.NoError(t, err)
	grass, err := app.scene.Material(grassID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, grass.Roughness, 1e-6)

	// reloads arrive as events on the frame loop
	g.Events.Fire(core.EventContext{
		Type: core.EVENT_CODE_MATERIAL_RELOADED,
		Data: &core.MaterialEvent{Path: "water.toml", Material: &metadata.MaterialConfig{
			Name:          "water",
			DiffuseAlbedo: [4]float32{1, 1, 1, 0.25},
			FresnelR0:     [3]float32{0.1, 0.1, 0.1},
			Roughness:     0.3,
		}},
	})
	water, err := app.scene.Material(app.water)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, water.DiffuseAlbedo.W, 1e-6)
	assert.InDelta(t, 0.3, water.Roughness, 1e-6)
	assert.Equal(t, app.scene.RingSize(), water.DirtyCounter().Pending())
}

func TestBlendRejectsSmallWaves(t *testing.T) {
	cfg := testConfig("blend", 1, time.Second/60)
	cfg.Waves.Rows = 6
	g, err := New("blend", cfg)
	require.NoError(t, err)
	e, err := engine.New(g)
	require.NoError(t, err)
	err = e.Initialize()
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
	_ = e.Shutdown(context.Background())
}
