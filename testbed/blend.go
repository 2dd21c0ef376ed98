package testbed

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/frameflight/engine"
	"github.com/spaghettifunk/frameflight/engine/config"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer"
	"github.com/spaghettifunk/frameflight/engine/renderer/components"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/scene"
)

const (
	boltFrameCount = 60
	// boltFirstSrv is the heap index of the first bolt animation frame.
	boltFirstSrv   = 3
	boltFrameTime  = 1 / 30.0
	waterScrollU   = 0.1
	waterScrollV   = 0.02
	blendItemCount = 4
)

// BlendApp renders hills, animated water, a wire fence crate and a lightning
// bolt with the four blending layers. Transparent layers can be drawn first
// and the pixel overdraw can be visualised.
type BlendApp struct {
	*engine.Game

	wavesConfig config.WavesConfig

	camera   *components.OrbitCamera
	proj     math.Mat4
	lighting renderer.Lighting
	scene    *scene.Scene
	waves    *scene.Waves
	rng      *math.Random

	water scene.MaterialID
	bolt  scene.MaterialID

	disturbBase      float64
	lastBoltUpdate   float64
	transparentFirst bool
}

func NewBlendApp(cfg *config.Config) (*engine.Game, error) {
	ac, err := engine.NewApplicationConfig(cfg)
	if err != nil {
		return nil, err
	}
	lighting := renderer.DefaultLighting()
	lighting.Lights[0].Strength = math.NewVec3(0.9, 0.9, 0.8)

	app := &BlendApp{
		Game:        &engine.Game{ApplicationConfig: ac},
		wavesConfig: cfg.Waves,
		proj:        math.NewMat4Identity(),
		lighting:    lighting,
	}
	app.State = app
	app.FnBoot = app.Boot
	app.FnInitialize = app.Initialize
	app.FnUpdate = app.Update
	app.FnRender = app.Render
	app.FnOnResize = app.OnResize
	app.FnOnKey = app.OnKey
	return app.Game, nil
}

func (a *BlendApp) Boot() error {
	core.LogInfo("booting blend demo...")
	rc := &a.ApplicationConfig.Renderer
	rc.Ring.Resources = frame.ResourceConfig{
		PassCount:          1,
		ObjectCount:        blendItemCount,
		MaterialCount:      4,
		DynamicVertexCount: a.wavesConfig.Rows * a.wavesConfig.Cols,
	}
	fog := a.lighting.FogColor
	rc.ClearColor = [4]float32{fog.X, fog.Y, fog.Z, fog.W}
	return nil
}

func (a *BlendApp) Initialize() error {
	r := a.Renderer
	a.camera = components.NewOrbitCamera(1.5*math.K_PI, math.K_HALF_PI-0.1, 50)
	attachOrbitCamera(a.Game, a.camera)

	wc := a.wavesConfig
	// disturbances land at least four vertices away from the border
	if wc.Rows < 9 || wc.Cols < 9 {
		return fmt.Errorf("blend waves grid %dx%d: %w", wc.Rows, wc.Cols, core.ErrInvalidConfig)
	}
	waves, err := scene.NewWaves(wc.Rows, wc.Cols, wc.SpatialStep, wc.TimeStep, wc.Speed, wc.Damping)
	if err != nil {
		return err
	}
	a.waves = waves
	a.rng = math.NewRandom(wc.Seed)

	srvs, err := a.allocateTextures(r)
	if err != nil {
		return err
	}

	a.scene = scene.NewScene(r.Ring().Size())
	if err := a.buildMaterials(srvs); err != nil {
		return err
	}
	applyMaterials(a.scene, a.Materials)
	watchMaterials(a.Game, a.scene)

	if err := a.buildRenderItems(); err != nil {
		return err
	}

	for id, desc := range renderer.SceneDescs() {
		if err := r.Pipelines().Register(id, desc); err != nil {
			return err
		}
	}
	return nil
}

// allocateTextures lays out the heap as grass, water, fence and then the
// bolt animation frames.
func (a *BlendApp) allocateTextures(r *renderer.Renderer) (map[string]int, error) {
	names := []string{"grass", "water1", "WireFence"}
	for i := 1; i <= boltFrameCount; i++ {
		names = append(names, fmt.Sprintf("BoltAnim/Bolt%03d", i))
	}
	srvs := make(map[string]int, len(names))
	for _, name := range names {
		index, err := r.Heap().Allocate(name)
		if err != nil {
			core.LogError("failed to allocate texture descriptor '%s': %s", name, err)
			return nil, err
		}
		srvs[name] = index
	}
	if srvs["BoltAnim/Bolt001"] != boltFirstSrv {
		return nil, fmt.Errorf("bolt animation starts at descriptor %d: %w", srvs["BoltAnim/Bolt001"], core.ErrInvalidHandle)
	}
	return srvs, nil
}

func (a *BlendApp) buildMaterials(srvs map[string]int) error {
	grass := scene.NewMaterial("grass", srvs["grass"])
	grass.FresnelR0 = math.NewVec3(0.01, 0.01, 0.01)
	grass.Roughness = 0.125

	water := scene.NewMaterial("water", srvs["water1"])
	water.DiffuseAlbedo = math.NewVec4(1, 1, 1, 0.5)
	water.FresnelR0 = math.NewVec3(0.1, 0.1, 0.1)
	water.Roughness = 0

	fence := scene.NewMaterial("wirefence", srvs["WireFence"])
	fence.FresnelR0 = math.NewVec3(0.1, 0.1, 0.1)
	fence.Roughness = 0.25

	bolt := scene.NewMaterial("boltAnim", boltFirstSrv)
	bolt.FresnelR0 = math.NewVec3(0.1, 0.1, 0.1)
	bolt.Roughness = 0

	var err error
	if _, err = a.scene.AddMaterial(grass); err != nil {
		return err
	}
	if a.water, err = a.scene.AddMaterial(water); err != nil {
		return err
	}
	if _, err = a.scene.AddMaterial(fence); err != nil {
		return err
	}
	a.bolt, err = a.scene.AddMaterial(bolt)
	return err
}

func (a *BlendApp) buildRenderItems() error {
	sc := a.scene
	lookup := func(name string) scene.MaterialID {
		id, _ := sc.MaterialByName(name)
		return id
	}

	wavesMesh, wavesSm, err := addMesh(sc, "waterGeo", scene.MeshData{Indices: a.waves.Indices()}, true)
	if err != nil {
		return err
	}
	landMesh, landSm, err := addMesh(sc, "landGeo", scene.CreateHills(160, 160, 50, 50), false)
	if err != nil {
		return err
	}
	boxMesh, boxSm, err := addMesh(sc, "boxGeo", scene.CreateBox(8, 8, 8), false)
	if err != nil {
		return err
	}
	boltMesh, boltSm, err := addMesh(sc, "boltGeo", scene.CreateCylinder(2, 2, 10, 20, 10, false), false)
	if err != nil {
		return err
	}

	// object constant indices follow insertion order
	waves := scene.NewRenderItem(wavesMesh, a.water, scene.LAYER_TRANSPARENT, wavesSm)
	waves.TexTransform = math.NewMat4Scale(5, 5, 1)

	land := scene.NewRenderItem(landMesh, lookup("grass"), scene.LAYER_OPAQUE, landSm)
	land.TexTransform = math.NewMat4Scale(5, 5, 1)

	box := scene.NewRenderItem(boxMesh, lookup("wirefence"), scene.LAYER_ALPHA_TESTED, boxSm)
	box.World = math.NewMat4Translation(3, 2, -9)

	bolt := scene.NewRenderItem(boltMesh, a.bolt, scene.LAYER_ANIMATED_BOLT, boltSm)
	bolt.World = math.NewMat4Translation(3, 11, -9)
	bolt.TexTransform = math.NewMat4Scale(1, 4, 1)

	for _, item := range []scene.RenderItem{waves, land, box, bolt} {
		if _, err := sc.AddItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (a *BlendApp) OnKey(key core.KeyCode, pressed bool) error {
	if !pressed {
		return nil
	}
	switch key {
	case core.KEY_1:
		a.transparentFirst = !a.transparentFirst
		core.LogDebug("transparent layers drawn first: %t", a.transparentFirst)
	case core.KEY_F1:
		return a.Renderer.SetRenderMode(renderer.RENDER_MODE_NORMAL)
	case core.KEY_F2:
		return a.Renderer.SetRenderMode(renderer.RENDER_MODE_PIXEL_OVERDRAW)
	}
	return nil
}

func (a *BlendApp) Update(totalTime, deltaTime float64) error {
	if err := a.animateMaterials(totalTime, deltaTime); err != nil {
		return err
	}
	return a.updateWaves(totalTime, deltaTime)
}

func (a *BlendApp) animateMaterials(totalTime, deltaTime float64) error {
	dt := float32(deltaTime)
	err := a.scene.UpdateMaterial(a.water, func(m *scene.Material) {
		u := m.MatTransform.At(3, 0) + waterScrollU*dt
		v := m.MatTransform.At(3, 1) + waterScrollV*dt
		if u >= 1 {
			u -= 1
		}
		if v >= 1 {
			v -= 1
		}
		m.MatTransform.Set(3, 0, u)
		m.MatTransform.Set(3, 1, v)
	})
	if err != nil {
		return err
	}

	// the bolt only swaps its descriptor, its constants stay the same
	if totalTime-a.lastBoltUpdate >= boltFrameTime {
		bolt, err := a.scene.Material(a.bolt)
		if err != nil {
			return err
		}
		bolt.DiffuseSrvHeapIndex = (bolt.DiffuseSrvHeapIndex-boltFirstSrv+1)%boltFrameCount + boltFirstSrv
		a.lastBoltUpdate = totalTime
	}
	return nil
}

// updateWaves disturbs the water at a random spot every interval and steps
// the simulation.
func (a *BlendApp) updateWaves(totalTime, deltaTime float64) error {
	interval := a.wavesConfig.DisturbInterval.Std().Seconds()
	if interval > 0 && totalTime-a.disturbBase >= interval {
		a.disturbBase += interval
		i := a.rng.Int(4, a.waves.RowCount()-5)
		j := a.rng.Int(4, a.waves.ColumnCount()-5)
		magnitude := a.rng.Float(0.2, 0.5)
		if err := a.waves.Disturb(i, j, magnitude); err != nil {
			return err
		}
	}
	a.waves.Update(float32(deltaTime))
	return nil
}

func (a *BlendApp) Render(ctx context.Context, totalTime, deltaTime float64) error {
	r := a.Renderer
	slot, err := r.BeginFrame(ctx)
	if err != nil {
		return err
	}
	if err := a.waves.UploadVertices(slot.VertexBuffer); err != nil {
		return err
	}
	if _, err := a.scene.UpdateObjectCBs(slot); err != nil {
		return err
	}
	if _, err := a.scene.UpdateMaterialCBs(slot); err != nil {
		return err
	}
	pc := renderer.BuildPassConstants(renderer.PassParams{
		View:      a.camera.GetView(),
		Proj:      a.proj,
		EyePos:    a.camera.GetPosition(),
		Width:     r.Width(),
		Height:    r.Height(),
		NearZ:     nearZ,
		FarZ:      farZ,
		TotalTime: float32(totalTime),
		DeltaTime: float32(deltaTime),
		Lighting:  a.lighting,
	})
	if err := r.UpdatePassCB(pc); err != nil {
		return err
	}

	if err := r.DrawLayers(a.scene, a.layerOrder()...); err != nil {
		return err
	}
	return r.EndFrame(ctx)
}

func (a *BlendApp) layerOrder() []renderer.LayerPass {
	opaque := []renderer.LayerPass{
		{Layer: scene.LAYER_OPAQUE, Pipeline: metadata.PIPELINE_OPAQUE},
		{Layer: scene.LAYER_ALPHA_TESTED, Pipeline: metadata.PIPELINE_ALPHA_TESTED},
	}
	blended := []renderer.LayerPass{
		{Layer: scene.LAYER_TRANSPARENT, Pipeline: metadata.PIPELINE_TRANSPARENT},
		{Layer: scene.LAYER_ANIMATED_BOLT, Pipeline: metadata.PIPELINE_ANIMATED_BOLT},
	}
	if a.transparentFirst {
		return append(blended, opaque...)
	}
	return append(opaque, blended...)
}

func (a *BlendApp) OnResize(width, height uint32) error {
	a.proj = projection(a.Renderer.AspectRatio())
	return nil
}
