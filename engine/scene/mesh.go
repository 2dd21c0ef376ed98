package scene

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// StaticBuffer is immutable geometry the device can read from.
type StaticBuffer[T any] []T

func (b StaticBuffer[T]) Len() int {
	return len(b)
}

func (b StaticBuffer[T]) ReadElement(i int) (any, error) {
	if i < 0 || i >= len(b) {
		return nil, fmt.Errorf("reading static element %d of %d: %w", i, len(b), core.ErrBufferIndexOutOfRange)
	}
	return b[i], nil
}

// SubmeshGeometry locates one draw inside a shared vertex and index buffer.
type SubmeshGeometry struct {
	IndexCount         uint32
	StartIndexLocation uint32
	BaseVertexLocation int32
}

// MeshGeometry groups vertex and index data with the named draws inside it.
type MeshGeometry struct {
	Name     string
	Vertices StaticBuffer[metadata.Vertex]
	Indices  StaticBuffer[uint32]
	// Dynamic meshes get their vertices from a per slot upload buffer.
	Dynamic bool

	submeshes     []SubmeshGeometry
	submeshByName *Registry[SubmeshID]
}

func NewMeshGeometry(name string, vertices []metadata.Vertex, indices []uint32) *MeshGeometry {
	return &MeshGeometry{
		Name:          name,
		Vertices:      vertices,
		Indices:       indices,
		submeshByName: NewRegistry[SubmeshID](),
	}
}

// AddSubmesh registers a named draw range.
func (m *MeshGeometry) AddSubmesh(name string, sm SubmeshGeometry) (SubmeshID, error) {
	if int(sm.StartIndexLocation)+int(sm.IndexCount) > len(m.Indices) {
		return InvalidID, fmt.Errorf("submesh %q of %q exceeds %d indices: %w", name, m.Name, len(m.Indices), core.ErrBufferIndexOutOfRange)
	}
	id, err := m.submeshByName.Register(name)
	if err != nil {
		return InvalidID, err
	}
	m.submeshes = append(m.submeshes, sm)
	return id, nil
}

func (m *MeshGeometry) SubmeshID(name string) (SubmeshID, error) {
	return m.submeshByName.Lookup(name)
}

func (m *MeshGeometry) Submesh(id SubmeshID) (SubmeshGeometry, error) {
	if int(id) < 0 || int(id) >= len(m.submeshes) {
		return SubmeshGeometry{}, fmt.Errorf("submesh %d of %q: %w", id, m.Name, core.ErrInvalidHandle)
	}
	return m.submeshes[id], nil
}
