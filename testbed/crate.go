package testbed

import (
	"context"

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
	crateSamplerSlot   = 0
	texScaleDelta      = 0.01
	minTexScale        = 0.1
	crateMaxAnisotropy = 16
)

// CrateApp draws a textured wooden crate next to a box whose flare texture
// rotates around its center. The sampler can be switched at runtime.
type CrateApp struct {
	*engine.Game

	camera *components.OrbitCamera
	proj   math.Mat4
	scene  *scene.Scene

	crate scene.ItemID
	flare scene.ItemID

	texScale     float32
	solid        bool
	filter       metadata.SamplerFilter
	addressMode  metadata.AddressMode
	samplerDirty bool
}

func NewCrateApp(cfg *config.Config) (*engine.Game, error) {
	ac, err := engine.NewApplicationConfig(cfg)
	if err != nil {
		return nil, err
	}
	app := &CrateApp{
		Game:        &engine.Game{ApplicationConfig: ac},
		proj:        math.NewMat4Identity(),
		texScale:    1,
		solid:       true,
		filter:      metadata.FILTER_POINT,
		addressMode: metadata.ADDRESS_MODE_WRAP,
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

func (a *CrateApp) Boot() error {
	core.LogInfo("booting crate demo...")
	rc := &a.ApplicationConfig.Renderer
	rc.Ring.Resources = frame.ResourceConfig{PassCount: 1, ObjectCount: 2, MaterialCount: 2}
	rc.ClearColor = lightSteelBlue
	return nil
}

func (a *CrateApp) Initialize() error {
	r := a.Renderer
	a.camera = components.NewOrbitCamera(1.3*math.K_PI, 0.4*math.K_PI, 5)
	a.camera.ZoomSpeed = 0.05
	attachOrbitCamera(a.Game, a.camera)

	heap := r.Heap()
	woodSrv, err := heap.Allocate("WoodCrate01")
	if err != nil {
		return err
	}
	flareSrv, err := heap.Allocate("flare")
	if err != nil {
		return err
	}
	flareAlphaSrv, err := heap.Allocate("flarealpha")
	if err != nil {
		return err
	}

	a.scene = scene.NewScene(r.Ring().Size())
	wood := scene.NewMaterial("woodCrate", woodSrv)
	wood.FresnelR0 = math.NewVec3(0.05, 0.05, 0.05)
	wood.Roughness = 0.2
	woodID, err := a.scene.AddMaterial(wood)
	if err != nil {
		return err
	}
	flare := scene.NewMaterial("flareBox", flareSrv)
	flare.AlphaSrvHeapIndex = flareAlphaSrv
	flare.FresnelR0 = math.NewVec3(0.05, 0.05, 0.05)
	flare.Roughness = 0.2
	flareID, err := a.scene.AddMaterial(flare)
	if err != nil {
		return err
	}
	applyMaterials(a.scene, a.Materials)
	watchMaterials(a.Game, a.scene)

	boxID, box, err := addMesh(a.scene, "box", scene.CreateBox(1, 1, 1), false)
	if err != nil {
		return err
	}
	crate := scene.NewRenderItem(boxID, woodID, scene.LAYER_OPAQUE, box)
	crate.World = math.NewMat4Translation(-0.75, 0, 0)
	if a.crate, err = a.scene.AddItem(crate); err != nil {
		return err
	}
	flareBox := scene.NewRenderItem(boxID, flareID, scene.LAYER_OPAQUE, box)
	flareBox.World = math.NewMat4Translation(0.75, 0, 0)
	if a.flare, err = a.scene.AddItem(flareBox); err != nil {
		return err
	}

	pipelines := map[metadata.PipelineID]metadata.PipelineDesc{
		metadata.PIPELINE_OPAQUE:           renderer.OpaqueDesc(),
		metadata.PIPELINE_OPAQUE_WIREFRAME: renderer.WireframeDesc(),
		metadata.PIPELINE_FLARE:            renderer.FlareDesc(metadata.FILL_MODE_SOLID),
		metadata.PIPELINE_FLARE_WIREFRAME:  renderer.FlareDesc(metadata.FILL_MODE_WIREFRAME),
	}
	for id, desc := range pipelines {
		if err := r.Pipelines().Register(id, desc); err != nil {
			return err
		}
	}

	return a.createSampler()
}

func (a *CrateApp) OnKey(key core.KeyCode, pressed bool) error {
	if !pressed {
		return nil
	}
	switch key {
	case core.KEY_1:
		return a.scaleTexTransform(texScaleDelta)
	case core.KEY_2:
		return a.scaleTexTransform(-texScaleDelta)
	case core.KEY_3:
		a.setFilter(metadata.FILTER_POINT)
	case core.KEY_4:
		a.setFilter(metadata.FILTER_LINEAR)
	case core.KEY_5:
		a.setFilter(metadata.FILTER_ANISOTROPIC)
	case core.KEY_6:
		a.setAddressMode(metadata.ADDRESS_MODE_WRAP)
	case core.KEY_7:
		a.setAddressMode(metadata.ADDRESS_MODE_CLAMP)
	case core.KEY_8:
		a.setAddressMode(metadata.ADDRESS_MODE_BORDER)
	case core.KEY_9:
		a.setAddressMode(metadata.ADDRESS_MODE_MIRROR)
	case core.KEY_F1:
		a.solid = true
	case core.KEY_F2:
		a.solid = false
	}
	return nil
}

// scaleTexTransform rescales the texture coordinates of every item.
func (a *CrateApp) scaleTexTransform(delta float32) error {
	a.texScale = max(a.texScale+delta, minTexScale)
	scale := math.NewMat4Scale(a.texScale, a.texScale, 1)
	for _, id := range []scene.ItemID{a.crate, a.flare} {
		if err := a.scene.SetTexTransform(id, scale); err != nil {
			return err
		}
	}
	return nil
}

func (a *CrateApp) setFilter(filter metadata.SamplerFilter) {
	if filter != a.filter {
		a.filter = filter
		a.samplerDirty = true
	}
}

func (a *CrateApp) setAddressMode(mode metadata.AddressMode) {
	if mode != a.addressMode {
		a.addressMode = mode
		a.samplerDirty = true
	}
}

func (a *CrateApp) createSampler() error {
	desc := metadata.SamplerDesc{
		Filter:        a.filter,
		AddressMode:   a.addressMode,
		MaxAnisotropy: crateMaxAnisotropy,
	}
	if err := a.Renderer.Device().CreateSampler(crateSamplerSlot, desc); err != nil {
		core.LogError("failed to create sampler %s/%s: %s", a.filter, a.addressMode, err)
		return err
	}
	a.samplerDirty = false
	return nil
}

func (a *CrateApp) Update(totalTime, deltaTime float64) error {
	if a.samplerDirty {
		if err := a.createSampler(); err != nil {
			return err
		}
	}

	// spin the flare around the center of its texture
	center := math.NewMat4Translation(0.5, 0.5, 0)
	rotation := math.NewMat4Translation(-0.5, -0.5, 0).
		Mul(math.NewMat4RotationZ(float32(totalTime))).
		Mul(center)
	return a.scene.SetTexTransform(a.flare, rotation)
}

func (a *CrateApp) Render(ctx context.Context, totalTime, deltaTime float64) error {
	r := a.Renderer
	slot, err := r.BeginFrame(ctx)
	if err != nil {
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
		Lighting:  renderer.DefaultLighting(),
	})
	if err := r.UpdatePassCB(pc); err != nil {
		return err
	}

	r.CommandList().SetGraphicsRootDescriptorTable(renderer.ROOT_PARAM_SAMPLER, crateSamplerSlot)

	cratePSO, flarePSO := metadata.PIPELINE_OPAQUE, metadata.PIPELINE_FLARE
	if !a.solid {
		cratePSO, flarePSO = metadata.PIPELINE_OPAQUE_WIREFRAME, metadata.PIPELINE_FLARE_WIREFRAME
	}
	if err := r.DrawItems(a.scene, cratePSO, a.crate); err != nil {
		return err
	}
	if err := r.DrawItems(a.scene, flarePSO, a.flare); err != nil {
		return err
	}
	return r.EndFrame(ctx)
}

func (a *CrateApp) OnResize(width, height uint32) error {
	a.proj = projection(a.Renderer.AspectRatio())
	return nil
}
