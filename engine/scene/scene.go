package scene

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// Scene owns materials, meshes and render items in arenas addressed by
// handle. Every mutation marks the touched entity dirty for all frame slots.
type Scene struct {
	materials []*Material
	meshes    []*MeshGeometry
	items     []*RenderItem
	layers    [LAYER_MAX][]ItemID

	materialNames *Registry[MaterialID]
	meshNames     *Registry[MeshID]

	objects *frame.Propagator[*RenderItem, metadata.ObjectConstants]
	mats    *frame.Propagator[*Material, metadata.MaterialConstants]
}

// NewScene creates a scene whose constants are propagated to ringSize slots.
func NewScene(ringSize int) *Scene {
	return &Scene{
		materialNames: NewRegistry[MaterialID](),
		meshNames:     NewRegistry[MeshID](),
		objects:       frame.NewPropagator[*RenderItem, metadata.ObjectConstants](ringSize, PackObject),
		mats:          frame.NewPropagator[*Material, metadata.MaterialConstants](ringSize, PackMaterial),
	}
}

func (s *Scene) RingSize() int {
	return s.objects.RingSize()
}

// AddMaterial stores m under its name. Its constant buffer index is the
// returned handle.
func (s *Scene) AddMaterial(m Material) (MaterialID, error) {
	if m.Name == "" {
		return InvalidID, fmt.Errorf("adding material without a name: %w", core.ErrInvalidMaterial)
	}
	id, err := s.materialNames.Register(m.Name)
	if err != nil {
		return InvalidID, err
	}
	mat := m
	mat.CBIndex = int(id)
	s.materials = append(s.materials, &mat)
	s.mats.MarkDirty(&mat)
	return id, nil
}

func (s *Scene) AddMesh(mesh *MeshGeometry) (MeshID, error) {
	id, err := s.meshNames.Register(mesh.Name)
	if err != nil {
		return InvalidID, err
	}
	s.meshes = append(s.meshes, mesh)
	return id, nil
}

// AddItem stores item and appends it to its layer. Its object constant buffer
// index is the returned handle.
func (s *Scene) AddItem(item RenderItem) (ItemID, error) {
	if _, err := s.Material(item.Material); err != nil {
		return InvalidID, err
	}
	if _, err := s.Mesh(item.Mesh); err != nil {
		return InvalidID, err
	}
	if item.Layer >= LAYER_MAX {
		return InvalidID, fmt.Errorf("adding item to layer %d: %w", item.Layer, core.ErrInvalidHandle)
	}
	id := ItemID(len(s.items))
	ri := item
	ri.ObjCBIndex = int(id)
	s.items = append(s.items, &ri)
	s.layers[ri.Layer] = append(s.layers[ri.Layer], id)
	s.objects.MarkDirty(&ri)
	return id, nil
}

func (s *Scene) Material(id MaterialID) (*Material, error) {
	if int(id) < 0 || int(id) >= len(s.materials) {
		return nil, fmt.Errorf("material %d: %w", id, core.ErrInvalidHandle)
	}
	return s.materials[id], nil
}

func (s *Scene) MaterialByName(name string) (MaterialID, error) {
	return s.materialNames.Lookup(name)
}

func (s *Scene) Mesh(id MeshID) (*MeshGeometry, error) {
	if int(id) < 0 || int(id) >= len(s.meshes) {
		return nil, fmt.Errorf("mesh %d: %w", id, core.ErrInvalidHandle)
	}
	return s.meshes[id], nil
}

func (s *Scene) MeshByName(name string) (MeshID, error) {
	return s.meshNames.Lookup(name)
}

func (s *Scene) Item(id ItemID) (*RenderItem, error) {
	if int(id) < 0 || int(id) >= len(s.items) {
		return nil, fmt.Errorf("render item %d: %w", id, core.ErrInvalidHandle)
	}
	return s.items[id], nil
}

func (s *Scene) Items() []*RenderItem {
	return s.items
}

func (s *Scene) Materials() []*Material {
	return s.materials
}

func (s *Scene) LayerItems(layer Layer) []ItemID {
	if layer >= LAYER_MAX {
		return nil
	}
	return s.layers[layer]
}

func (s *Scene) ObjectCount() int {
	return len(s.items)
}

func (s *Scene) MaterialCount() int {
	return len(s.materials)
}

func (s *Scene) SetWorld(id ItemID, world math.Mat4) error {
	ri, err := s.Item(id)
	if err != nil {
		return err
	}
	ri.World = world
	s.objects.MarkDirty(ri)
	return nil
}

func (s *Scene) SetTexTransform(id ItemID, texTransform math.Mat4) error {
	ri, err := s.Item(id)
	if err != nil {
		return err
	}
	ri.TexTransform = texTransform
	s.objects.MarkDirty(ri)
	return nil
}

// UpdateMaterial applies fn to the material and marks it dirty. fn must not
// change the name or the constant buffer index.
func (s *Scene) UpdateMaterial(id MaterialID, fn func(*Material)) error {
	m, err := s.Material(id)
	if err != nil {
		return err
	}
	name, index := m.Name, m.CBIndex
	fn(m)
	m.Name, m.CBIndex = name, index
	s.mats.MarkDirty(m)
	return nil
}

// ApplyMaterialConfig copies the surface properties of a material definition
// onto the scene material of the same name.
func (s *Scene) ApplyMaterialConfig(cfg *metadata.MaterialConfig) (MaterialID, error) {
	id, err := s.MaterialByName(cfg.Name)
	if err != nil {
		return InvalidID, err
	}
	err = s.UpdateMaterial(id, func(m *Material) {
		a, f := cfg.DiffuseAlbedo, cfg.FresnelR0
		m.DiffuseAlbedo = math.NewVec4(a[0], a[1], a[2], a[3])
		m.FresnelR0 = math.NewVec3(f[0], f[1], f[2])
		m.Roughness = cfg.Roughness
	})
	return id, err
}

// MarkAllItemsDirty schedules an upload of every object constant.
func (s *Scene) MarkAllItemsDirty() {
	for _, ri := range s.items {
		s.objects.MarkDirty(ri)
	}
}

// UpdateObjectCBs uploads dirty object constants into slot.
func (s *Scene) UpdateObjectCBs(slot *frame.FrameResource) (int, error) {
	return s.objects.UploadAll(s.items, slot.ObjectCB)
}

// UpdateMaterialCBs uploads dirty material constants into slot.
func (s *Scene) UpdateMaterialCBs(slot *frame.FrameResource) (int, error) {
	return s.mats.UploadAll(s.materials, slot.MaterialCB)
}
