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

// Root parameters of the colored box pipeline.
const (
	boxRootObjectCB uint32 = 0
	boxRootTimeCB   uint32 = 1
)

// BoxApp draws a single vertex colored cube. It has no frame resources and
// waits for the GPU at the end of every frame.
type BoxApp struct {
	*engine.Game

	camera *components.OrbitCamera
	world  math.Mat4
	proj   math.Mat4

	vertices scene.StaticBuffer[metadata.ColorVertex]
	indices  scene.StaticBuffer[uint32]
	objectCB *frame.UploadBuffer[metadata.BoxConstants]
	timeCB   *frame.UploadBuffer[metadata.TimeConstants]
}

func NewBoxApp(cfg *config.Config) (*engine.Game, error) {
	ac, err := engine.NewApplicationConfig(cfg)
	if err != nil {
		return nil, err
	}
	app := &BoxApp{
		Game:  &engine.Game{ApplicationConfig: ac},
		world: math.NewMat4Identity(),
		proj:  math.NewMat4Identity(),
	}
	app.State = app
	app.FnBoot = app.Boot
	app.FnInitialize = app.Initialize
	app.FnUpdate = app.Update
	app.FnRender = app.Render
	app.FnOnResize = app.OnResize
	return app.Game, nil
}

func (a *BoxApp) Boot() error {
	core.LogInfo("booting box demo...")
	rc := &a.ApplicationConfig.Renderer
	rc.Ring.Size = 1
	rc.Ring.MaxFramesInFlight = 1
	rc.Ring.Resources = frame.ResourceConfig{}
	rc.FlushEveryFrame = true
	rc.ClearColor = lightSteelBlue
	return nil
}

func (a *BoxApp) Initialize() error {
	a.camera = components.NewOrbitCamera(1.5*math.K_PI, math.K_QUARTER_PI, 5)
	a.camera.MinRadius = 3
	a.camera.MaxRadius = 15
	a.camera.ZoomSpeed = 0.005
	attachOrbitCamera(a.Game, a.camera)

	a.vertices, a.indices = boxGeometry()
	a.objectCB = frame.NewUploadBuffer[metadata.BoxConstants]("box_object", 1)
	a.timeCB = frame.NewUploadBuffer[metadata.TimeConstants]("box_time", 1)

	return a.Renderer.Pipelines().Register(metadata.PIPELINE_COLORED, renderer.ColoredDesc())
}

// Update writes the constants directly: the previous frame has completed
// because every frame ends with a flush.
func (a *BoxApp) Update(totalTime, deltaTime float64) error {
	wvp := a.world.Mul(a.camera.GetView()).Mul(a.proj)
	if err := a.objectCB.CopyData(0, metadata.BoxConstants{
		WorldViewProj: wvp.Transposed().F32(),
		Time:          float32(totalTime),
	}); err != nil {
		return err
	}
	return a.timeCB.CopyData(0, metadata.TimeConstants{Time: float32(totalTime)})
}

func (a *BoxApp) Render(ctx context.Context, totalTime, deltaTime float64) error {
	r := a.Renderer
	if _, err := r.BeginFrame(ctx); err != nil {
		return err
	}

	cl := r.CommandList()
	cl.SetPipelineState(metadata.PIPELINE_COLORED)
	cl.SetVertexBuffer(a.vertices)
	cl.SetIndexBuffer(a.indices)
	cl.SetGraphicsRootConstantBufferView(boxRootObjectCB, a.objectCB, 0)
	cl.SetGraphicsRootConstantBufferView(boxRootTimeCB, a.timeCB, 0)
	cl.DrawIndexedInstanced(uint32(len(a.indices)), 1, 0, 0)

	return r.EndFrame(ctx)
}

func (a *BoxApp) OnResize(width, height uint32) error {
	a.proj = projection(a.Renderer.AspectRatio())
	return nil
}

func boxGeometry() (scene.StaticBuffer[metadata.ColorVertex], scene.StaticBuffer[uint32]) {
	v := func(x, y, z float32, color math.Vec4) metadata.ColorVertex {
		return metadata.ColorVertex{Position: math.NewVec3(x, y, z).F32(), Color: color.F32()}
	}
	vertices := []metadata.ColorVertex{
		v(-1, -1, -1, math.NewVec4(1, 1, 1, 1)),        // white
		v(-1, +1, -1, math.NewVec4(0, 0, 0, 1)),        // black
		v(+1, +1, -1, math.NewVec4(1, 0, 0, 1)),        // red
		v(+1, -1, -1, math.NewVec4(0, 0.501961, 0, 1)), // green
		v(-1, -1, +1, math.NewVec4(0, 0, 1, 1)),        // blue
		v(-1, +1, +1, math.NewVec4(1, 1, 0, 1)),        // yellow
		v(+1, +1, +1, math.NewVec4(0, 1, 1, 1)),        // cyan
		v(+1, -1, +1, math.NewVec4(1, 0, 1, 1)),        // magenta
	}
	indices := []uint32{
		// front
		0, 1, 2, 0, 2, 3,
		// back
		4, 6, 5, 4, 7, 6,
		// left
		4, 5, 1, 4, 1, 0,
		// right
		3, 2, 6, 3, 6, 7,
		// top
		1, 5, 6, 1, 6, 2,
		// bottom
		4, 0, 3, 4, 3, 7,
	}
	return vertices, indices
}
