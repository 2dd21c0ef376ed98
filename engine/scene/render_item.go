package scene

import (
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// Layer groups render items that share a pipeline.
type Layer uint8

const (
	LAYER_OPAQUE Layer = iota
	LAYER_TRANSPARENT
	LAYER_ANIMATED_BOLT
	LAYER_ALPHA_TESTED
	LAYER_MAX
)

func (l Layer) String() string {
	switch l {
	case LAYER_OPAQUE:
		return "opaque"
	case LAYER_TRANSPARENT:
		return "transparent"
	case LAYER_ANIMATED_BOLT:
		return "animatedBolt"
	case LAYER_ALPHA_TESTED:
		return "alphaTested"
	}
	return "unknown"
}

// RenderItem is the data needed to draw one shape.
type RenderItem struct {
	World        math.Mat4
	TexTransform math.Mat4
	// ObjCBIndex is the element of the object constant buffer.
	ObjCBIndex int

	Material MaterialID
	Mesh     MeshID
	Layer    Layer

	Topology           metadata.PrimitiveTopology
	IndexCount         uint32
	StartIndexLocation uint32
	BaseVertexLocation int32

	dirty frame.DirtyCounter
}

// NewRenderItem returns an item with identity transforms drawing submesh sm.
func NewRenderItem(mesh MeshID, material MaterialID, layer Layer, sm SubmeshGeometry) RenderItem {
	return RenderItem{
		World:              math.NewMat4Identity(),
		TexTransform:       math.NewMat4Identity(),
		Material:           material,
		Mesh:               mesh,
		Layer:              layer,
		Topology:           metadata.TopologyTriangleList,
		IndexCount:         sm.IndexCount,
		StartIndexLocation: sm.StartIndexLocation,
		BaseVertexLocation: sm.BaseVertexLocation,
	}
}

func (ri *RenderItem) DirtyCounter() *frame.DirtyCounter {
	return &ri.dirty
}

func (ri *RenderItem) ConstantIndex() int {
	return ri.ObjCBIndex
}

func PackObject(ri *RenderItem) metadata.ObjectConstants {
	return metadata.ObjectConstants{
		World:        ri.World.Transposed().F32(),
		TexTransform: ri.TexTransform.Transposed().F32(),
	}
}
