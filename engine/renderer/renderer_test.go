package renderer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/scene"
)

func newTestRenderer(t *testing.T, device *gpu.HeadlessDevice, objects, materials int) *Renderer {
	t.Helper()
	r, err := New(device, RendererConfig{
		Width:           800,
		Height:          600,
		QueueCapacity:   16,
		DescriptorCount: 8,
		Ring: frame.RingConfig{
			Size:              3,
			MaxFramesInFlight: 3,
			FenceTimeout:      time.Second,
			Resources:         frame.ResourceConfig{PassCount: 1, ObjectCount: objects, MaterialCount: materials},
		},
	})
	require.NoError(t, err)
	for id, desc := range SceneDescs() {
		require.NoError(t, r.Pipelines().Register(id, desc))
	}
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	return r
}

func newTestScene(t *testing.T) (*scene.Scene, scene.ItemID) {
	t.Helper()
	sc := scene.NewScene(3)
	box := scene.CreateBox(1, 1, 1)
	mesh := scene.NewMeshGeometry("box", box.Vertices, box.Indices)
	smID, err := mesh.AddSubmesh("box", scene.SubmeshGeometry{IndexCount: uint32(len(box.Indices))})
	require.NoError(t, err)
	sm, _ := mesh.Submesh(smID)
	meshID, err := sc.AddMesh(mesh)
	require.NoError(t, err)
	matID, err := sc.AddMaterial(scene.NewMaterial("wood", 0))
	require.NoError(t, err)
	itemID, err := sc.AddItem(scene.NewRenderItem(meshID, matID, scene.LAYER_OPAQUE, sm))
	require.NoError(t, err)
	return sc, itemID
}

func TestFramesCycleSlotsAndSignalFences(t *testing.T) {
	device := gpu.NewHeadlessDevice("test", gpu.WithLatency(time.Millisecond))
	r := newTestRenderer(t, device, 1, 1)
	sc, _ := newTestScene(t)
	ctx := context.Background()

	var order []int
	for i := 0; i < 6; i++ {
		slot, err := r.BeginFrame(ctx)
		require.NoError(t, err)
		order = append(order, slot.Index)
		_, err = sc.UpdateObjectCBs(slot)
		require.NoError(t, err)
		_, err = sc.UpdateMaterialCBs(slot)
		require.NoError(t, err)
		require.NoError(t, r.DrawLayers(sc, LayerPass{Layer: scene.LAYER_OPAQUE, Pipeline: metadata.PIPELINE_OPAQUE}))
		require.NoError(t, r.EndFrame(ctx))
	}
	require.NoError(t, r.Flush(ctx))

	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, order)
	assert.Equal(t, uint64(6), r.FrameCount())
	stats := device.Stats()
	assert.Equal(t, uint64(6), stats.Frames)
	assert.Equal(t, uint64(6), stats.Draws)
	assert.Equal(t, uint64(7), r.Fence().CompletedValue())
}

func TestGPUReadsValueWrittenForItsSlot(t *testing.T) {
	reads := make(chan any, 16)
	device := gpu.NewHeadlessDevice("test", gpu.WithDrawObserver(func(rec gpu.DrawRecord) {
		reads <- rec.Constants[ROOT_PARAM_OBJECT_CB]
	}))
	r := newTestRenderer(t, device, 1, 1)
	sc, itemID := newTestScene(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, sc.SetWorld(itemID, math.NewMat4Translation(float32(i), 0, 0)))
		slot, err := r.BeginFrame(ctx)
		require.NoError(t, err)
		_, err = sc.UpdateObjectCBs(slot)
		require.NoError(t, err)
		_, err = sc.UpdateMaterialCBs(slot)
		require.NoError(t, err)
		require.NoError(t, r.DrawLayers(sc, LayerPass{Layer: scene.LAYER_OPAQUE, Pipeline: metadata.PIPELINE_OPAQUE}))
		require.NoError(t, r.EndFrame(ctx))
	}
	require.NoError(t, r.Flush(ctx))
	close(reads)

	var xs []float32
	for v := range reads {
		oc := v.(metadata.ObjectConstants)
		xs = append(xs, oc.World[3])
	}
	assert.Equal(t, []float32{0, 1, 2, 3}, xs)
}

func TestPixelOverdrawMode(t *testing.T) {
	device := gpu.NewHeadlessDevice("test")
	r := newTestRenderer(t, device, 1, 1)
	sc, _ := newTestScene(t)
	ctx := context.Background()

	require.NoError(t, r.SetRenderMode(RENDER_MODE_PIXEL_OVERDRAW))
	for i := 0; i < 2; i++ {
		slot, err := r.BeginFrame(ctx)
		require.NoError(t, err)
		_, _ = sc.UpdateObjectCBs(slot)
		_, _ = sc.UpdateMaterialCBs(slot)
		require.NoError(t, r.DrawLayers(sc, LayerPass{Layer: scene.LAYER_OPAQUE, Pipeline: metadata.PIPELINE_OPAQUE}))
		require.NoError(t, r.EndFrame(ctx))
	}
	require.NoError(t, r.Flush(ctx))

	stats := device.Stats()
	assert.Equal(t, uint64(2), stats.DrawsPerPipeline[metadata.PIPELINE_OPAQUE_OVERDRAW])
	assert.Equal(t, uint64(2), stats.DrawsPerPipeline[metadata.PIPELINE_OVERDRAW_QUAD])
	assert.Equal(t, uint64(2), stats.OverdrawCopies)
	assert.Equal(t, uint64(1), stats.LastOverdraw)
	// resources are created once
	assert.Equal(t, 1, r.Heap().Len())

	require.NoError(t, r.SetRenderMode(RENDER_MODE_NORMAL))
	assert.ErrorIs(t, r.SetRenderMode(RENDER_MODE_MAX), core.ErrInvalidConfig)
}

func TestFrameProtocolErrors(t *testing.T) {
	r := newTestRenderer(t, gpu.NewHeadlessDevice("test"), 1, 1)
	sc, _ := newTestScene(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.EndFrame(ctx), core.ErrRingNotAcquired)
	assert.ErrorIs(t, r.DrawLayers(sc), core.ErrRingNotAcquired)

	_, err := r.BeginFrame(ctx)
	require.NoError(t, err)
	_, err = r.BeginFrame(ctx)
	assert.ErrorIs(t, err, core.ErrCommandListOpen)

	err = r.DrawLayers(sc, LayerPass{Layer: scene.LAYER_OPAQUE, Pipeline: metadata.PIPELINE_FLARE})
	assert.ErrorIs(t, err, core.ErrUnknownPipeline)
	require.NoError(t, r.EndFrame(ctx))
}

func TestNewRejectsMismatchedRing(t *testing.T) {
	_, err := New(gpu.NewHeadlessDevice("test"), RendererConfig{
		QueueCapacity: 4,
		Ring:          frame.RingConfig{Size: 3, MaxFramesInFlight: 2},
	})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestBuildPassConstants(t *testing.T) {
	view := math.NewMat4LookAtLH(math.NewVec3(0, 0, -10), math.NewVec3Zero(), math.NewVec3Up())
	proj := math.NewMat4PerspectiveFovLH(math.K_QUARTER_PI, 4.0/3.0, 1, 1000)
	pc := BuildPassConstants(PassParams{
		View: view, Proj: proj,
		EyePos: math.NewVec3(0, 0, -10),
		Width:  800, Height: 600,
		NearZ: 1, FarZ: 1000,
		TotalTime: 2, DeltaTime: 0.016,
		Lighting: DefaultLighting(),
	})
	assert.Equal(t, view.Transposed().F32(), pc.View)
	assert.Equal(t, float32(800), pc.RenderTargetSize[0])
	assert.InDelta(t, 1.0/600.0, pc.InvRenderTargetSz[1], 1e-7)
	assert.Equal(t, float32(0.6), pc.Lights[0].Strength[0])
	assert.Equal(t, float32(0), pc.Lights[3].Strength[0])
	assert.Equal(t, float32(150), pc.FogRange)
}
