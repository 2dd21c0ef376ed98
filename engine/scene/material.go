package scene

import (
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// Material describes surface properties of a set of render items.
type Material struct {
	Name string
	// CBIndex is the element of the material constant buffer.
	CBIndex int
	// DiffuseSrvHeapIndex is the descriptor of the diffuse texture.
	DiffuseSrvHeapIndex int
	// AlphaSrvHeapIndex is the descriptor of an optional alpha map, or InvalidID.
	AlphaSrvHeapIndex int

	DiffuseAlbedo math.Vec4
	FresnelR0     math.Vec3
	Roughness     float32
	MatTransform  math.Mat4

	dirty frame.DirtyCounter
}

// NewMaterial returns a material with an identity transform and no alpha map.
func NewMaterial(name string, diffuseSrv int) Material {
	return Material{
		Name:                name,
		DiffuseSrvHeapIndex: diffuseSrv,
		AlphaSrvHeapIndex:   InvalidID,
		DiffuseAlbedo:       math.NewVec4One(),
		FresnelR0:           math.NewVec3(0.01, 0.01, 0.01),
		Roughness:           0.25,
		MatTransform:        math.NewMat4Identity(),
	}
}

func (m *Material) DirtyCounter() *frame.DirtyCounter {
	return &m.dirty
}

func (m *Material) ConstantIndex() int {
	return m.CBIndex
}

func PackMaterial(m *Material) metadata.MaterialConstants {
	return metadata.MaterialConstants{
		DiffuseAlbedo: m.DiffuseAlbedo.F32(),
		FresnelR0:     m.FresnelR0.F32(),
		Roughness:     m.Roughness,
		MatTransform:  m.MatTransform.Transposed().F32(),
	}
}
