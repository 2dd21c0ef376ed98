package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

func newSlots(n, objects, materials int) []*frame.FrameResource {
	slots := make([]*frame.FrameResource, n)
	for i := range slots {
		slots[i] = frame.NewFrameResource(i, frame.ResourceConfig{PassCount: 1, ObjectCount: objects, MaterialCount: materials})
	}
	return slots
}

func buildBoxScene(t *testing.T) (*Scene, ItemID, MaterialID) {
	t.Helper()
	s := NewScene(3)
	box := CreateBox(1, 1, 1)
	mesh := NewMeshGeometry("boxGeo", box.Vertices, box.Indices)
	sm, err := mesh.AddSubmesh("box", SubmeshGeometry{IndexCount: uint32(len(box.Indices))})
	require.NoError(t, err)
	meshID, err := s.AddMesh(mesh)
	require.NoError(t, err)

	matID, err := s.AddMaterial(NewMaterial("woodCrate", 0))
	require.NoError(t, err)

	submesh, err := mesh.Submesh(sm)
	require.NoError(t, err)
	itemID, err := s.AddItem(NewRenderItem(meshID, matID, LAYER_OPAQUE, submesh))
	require.NoError(t, err)
	return s, itemID, matID
}

func TestNewEntitiesStartDirty(t *testing.T) {
	s, itemID, matID := buildBoxScene(t)
	item, err := s.Item(itemID)
	require.NoError(t, err)
	mat, err := s.Material(matID)
	require.NoError(t, err)
	assert.Equal(t, 3, item.DirtyCounter().Pending())
	assert.Equal(t, 3, mat.DirtyCounter().Pending())
	assert.Equal(t, []ItemID{itemID}, s.LayerItems(LAYER_OPAQUE))
}

func TestSetWorldPropagatesTransposed(t *testing.T) {
	s, itemID, _ := buildBoxScene(t)
	slots := newSlots(3, 1, 1)

	for _, slot := range slots {
		n, err := s.UpdateObjectCBs(slot)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	n, err := s.UpdateObjectCBs(slots[0])
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.SetWorld(itemID, math.NewMat4Translation(-0.75, 0, 0)))
	for _, slot := range slots {
		_, err := s.UpdateObjectCBs(slot)
		require.NoError(t, err)
		oc, err := slot.ObjectCB.At(0)
		require.NoError(t, err)
		// translation ends up in the last column once transposed
		assert.Equal(t, float32(-0.75), oc.World[3])
	}
}

func TestUpdateMaterialKeepsIdentity(t *testing.T) {
	s, _, matID := buildBoxScene(t)
	slots := newSlots(3, 1, 1)
	for _, slot := range slots {
		_, err := s.UpdateMaterialCBs(slot)
		require.NoError(t, err)
	}

	require.NoError(t, s.UpdateMaterial(matID, func(m *Material) {
		m.Roughness = 0.9
		m.Name = "renamed"
		m.CBIndex = 7
	}))
	mat, _ := s.Material(matID)
	assert.Equal(t, "woodCrate", mat.Name)
	assert.Equal(t, 0, mat.CBIndex)
	assert.Equal(t, 3, mat.DirtyCounter().Pending())

	_, err := s.UpdateMaterialCBs(slots[1])
	require.NoError(t, err)
	mc, err := slots[1].MaterialCB.At(0)
	require.NoError(t, err)
	assert.Equal(t, float32(0.9), mc.Roughness)
}

func TestHandleValidation(t *testing.T) {
	s, _, matID := buildBoxScene(t)
	_, err := s.AddItem(NewRenderItem(MeshID(9), matID, LAYER_OPAQUE, SubmeshGeometry{}))
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	_, err = s.AddMaterial(NewMaterial("woodCrate", 1))
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	_, err = s.AddMaterial(Material{})
	assert.ErrorIs(t, err, core.ErrInvalidMaterial)
	assert.ErrorIs(t, s.SetWorld(ItemID(3), math.NewMat4Identity()), core.ErrInvalidHandle)

	id, err := s.MaterialByName("woodCrate")
	require.NoError(t, err)
	assert.Equal(t, matID, id)
}

func TestMarkAllItemsDirty(t *testing.T) {
	s, itemID, _ := buildBoxScene(t)
	slots := newSlots(3, 1, 1)
	for _, slot := range slots {
		_, _ = s.UpdateObjectCBs(slot)
	}
	s.MarkAllItemsDirty()
	item, _ := s.Item(itemID)
	assert.Equal(t, 3, item.DirtyCounter().Pending())
}

func TestApplyMaterialConfig(t *testing.T) {
	s, _, matID := buildBoxScene(t)
	slot := newSlots(1, 1, 1)[0]
	_, err := s.UpdateMaterialCBs(slot)
	require.NoError(t, err)

	id, err := s.ApplyMaterialConfig(&metadata.MaterialConfig{
		Name:          "woodCrate",
		DiffuseAlbedo: [4]float32{0.5, 0.5, 0.5, 1},
		FresnelR0:     [3]float32{0.05, 0.05, 0.05},
		Roughness:     0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, matID, id)

	mat, _ := s.Material(matID)
	assert.Equal(t, math.NewVec4(0.5, 0.5, 0.5, 1), mat.DiffuseAlbedo)
	assert.Equal(t, 3, mat.DirtyCounter().Pending())

	_, err = s.ApplyMaterialConfig(&metadata.MaterialConfig{Name: "unknown"})
	assert.Error(t, err)
}
