package renderer

import (
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

type DirectionalLight struct {
	Direction math.Vec3
	Strength  math.Vec3
}

// Lighting is the per pass light and fog setup.
type Lighting struct {
	Ambient  math.Vec4
	Lights   []DirectionalLight
	FogColor math.Vec4
	FogStart float32
	FogRange float32
}

// DefaultLighting is a three point key, fill and back light setup.
func DefaultLighting() Lighting {
	return Lighting{
		Ambient: math.NewVec4(0.25, 0.25, 0.35, 1),
		Lights: []DirectionalLight{
			{Direction: math.NewVec3(0.57735, -0.57735, 0.57735), Strength: math.NewVec3(0.6, 0.6, 0.6)},
			{Direction: math.NewVec3(-0.57735, -0.57735, 0.57735), Strength: math.NewVec3(0.3, 0.3, 0.3)},
			{Direction: math.NewVec3(0, -0.707, -0.707), Strength: math.NewVec3(0.15, 0.15, 0.15)},
		},
		FogColor: math.NewVec4(0.7, 0.7, 0.7, 1),
		FogStart: 5,
		FogRange: 150,
	}
}

// PassParams are the inputs of the per frame pass constants.
type PassParams struct {
	View      math.Mat4
	Proj      math.Mat4
	EyePos    math.Vec3
	Width     uint32
	Height    uint32
	NearZ     float32
	FarZ      float32
	TotalTime float32
	DeltaTime float32
	Lighting  Lighting
}

// BuildPassConstants derives every pass matrix and stores them transposed.
func BuildPassConstants(p PassParams) metadata.PassConstants {
	viewProj := p.View.Mul(p.Proj)

	pc := metadata.PassConstants{
		View:        p.View.Transposed().F32(),
		InvView:     p.View.Inverse().Transposed().F32(),
		Proj:        p.Proj.Transposed().F32(),
		InvProj:     p.Proj.Inverse().Transposed().F32(),
		ViewProj:    viewProj.Transposed().F32(),
		InvViewProj: viewProj.Inverse().Transposed().F32(),
		EyePosW:     p.EyePos.F32(),
		NearZ:       p.NearZ,
		FarZ:        p.FarZ,
		TotalTime:   p.TotalTime,
		DeltaTime:   p.DeltaTime,

		AmbientLight: p.Lighting.Ambient.F32(),
		FogColor:     p.Lighting.FogColor.F32(),
		FogStart:     p.Lighting.FogStart,
		FogRange:     p.Lighting.FogRange,
	}
	if p.Width > 0 && p.Height > 0 {
		pc.RenderTargetSize = math.NewVec2(float32(p.Width), float32(p.Height)).F32()
		pc.InvRenderTargetSz = math.NewVec2(1/float32(p.Width), 1/float32(p.Height)).F32()
	}
	for i, l := range p.Lighting.Lights {
		if i >= metadata.MaxLights {
			break
		}
		pc.Lights[i].Direction = l.Direction.F32()
		pc.Lights[i].Strength = l.Strength.F32()
	}
	return pc
}
