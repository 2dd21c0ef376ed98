package testbed

import (
	"github.com/spaghettifunk/frameflight/engine"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/scene"
)

// addMesh stores data as a mesh with a single submesh of the same name.
func addMesh(sc *scene.Scene, name string, data scene.MeshData, dynamic bool) (scene.MeshID, scene.SubmeshGeometry, error) {
	mesh := scene.NewMeshGeometry(name, data.Vertices, data.Indices)
	mesh.Dynamic = dynamic
	smID, err := mesh.AddSubmesh(name, scene.SubmeshGeometry{IndexCount: uint32(len(data.Indices))})
	if err != nil {
		return scene.InvalidID, scene.SubmeshGeometry{}, err
	}
	sm, err := mesh.Submesh(smID)
	if err != nil {
		return scene.InvalidID, scene.SubmeshGeometry{}, err
	}
	id, err := sc.AddMesh(mesh)
	return id, sm, err
}

// applyMaterials overrides scene materials with the definitions loaded from
// disk. Definitions without a matching material are ignored.
func applyMaterials(sc *scene.Scene, configs []*metadata.MaterialConfig) {
	for _, cfg := range configs {
		if _, err := sc.ApplyMaterialConfig(cfg); err != nil {
			core.LogWarn("material '%s' is not part of the scene: %s", cfg.Name, err)
		}
	}
}

// watchMaterials applies reloaded material definitions to sc.
func watchMaterials(g *engine.Game, sc *scene.Scene) {
	g.Events.Register(core.EVENT_CODE_MATERIAL_RELOADED, func(ec core.EventContext) bool {
		me, ok := ec.Data.(*core.MaterialEvent)
		if !ok || me.Material == nil {
			return false
		}
		id, err := sc.ApplyMaterialConfig(me.Material)
		if err != nil {
			core.LogWarn("ignoring reload of '%s': %s", me.Path, err)
			return false
		}
		core.LogInfo("material '%s' (%d) updated", me.Material.Name, id)
		return true
	})
}
