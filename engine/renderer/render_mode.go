package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/scene"
)

type RenderMode uint8

const (
	RENDER_MODE_NORMAL RenderMode = iota
	// RENDER_MODE_PIXEL_OVERDRAW counts how often every pixel is written and
	// shows the counts instead of the shaded scene.
	RENDER_MODE_PIXEL_OVERDRAW
	RENDER_MODE_MAX
)

func (m RenderMode) String() string {
	switch m {
	case RENDER_MODE_NORMAL:
		return "normal"
	case RENDER_MODE_PIXEL_OVERDRAW:
		return "pixelOverdraw"
	}
	return "unknown"
}

// renderModeStrategy holds everything that differs between render modes. The
// renderer picks one at the start of each frame.
type renderModeStrategy interface {
	prepare(r *Renderer) error
	pipeline(id metadata.PipelineID) metadata.PipelineID
	finish(r *Renderer) error
}

type normalMode struct{}

func (normalMode) prepare(*Renderer) error                             { return nil }
func (normalMode) pipeline(id metadata.PipelineID) metadata.PipelineID { return id }
func (normalMode) finish(*Renderer) error                              { return nil }

type overdrawResources struct {
	quad        *scene.MeshGeometry
	quadSubmesh scene.SubmeshGeometry
	textureName string
	srvIndex    int
}

type pixelOverdrawMode struct {
	resources *overdrawResources
}

// prepare creates the overdraw resources the first time the mode is used.
func (m *pixelOverdrawMode) prepare(r *Renderer) error {
	if m.resources != nil {
		return nil
	}

	quadData := scene.CreateQuad(-1, 1, 2, 2, 0)
	quad := scene.NewMeshGeometry("quadGeo", quadData.Vertices, quadData.Indices)
	id, err := quad.AddSubmesh("quad", scene.SubmeshGeometry{IndexCount: uint32(len(quadData.Indices))})
	if err != nil {
		return err
	}
	submesh, err := quad.Submesh(id)
	if err != nil {
		return err
	}

	for base, variant := range overdrawVariants {
		desc, err := r.pipelines.Desc(base)
		if err != nil {
			// the application never uses this layer pipeline
			continue
		}
		if err := r.pipelines.Register(variant, OverdrawDesc(desc)); err != nil {
			return err
		}
	}
	if err := r.pipelines.Register(metadata.PIPELINE_OVERDRAW_QUAD, OverdrawQuadDesc()); err != nil {
		return err
	}

	textureName := fmt.Sprintf("overdraw_%s", uuid.NewString())
	srv, err := r.heap.Allocate(textureName)
	if err != nil {
		core.LogError("failed to allocate overdraw texture descriptor: %s", err)
		return err
	}

	m.resources = &overdrawResources{
		quad:        quad,
		quadSubmesh: submesh,
		textureName: textureName,
		srvIndex:    srv,
	}
	core.LogDebug("created pixel overdraw resources, texture %s at descriptor %d", textureName, srv)
	return nil
}

func (m *pixelOverdrawMode) pipeline(id metadata.PipelineID) metadata.PipelineID {
	if variant, ok := overdrawVariants[id]; ok {
		return variant
	}
	return id
}

// finish copies the stencil counts into the overdraw texture and draws it
// over the whole screen.
func (m *pixelOverdrawMode) finish(r *Renderer) error {
	res := m.resources
	if res == nil {
		return fmt.Errorf("pixel overdraw finished before prepare: %w", core.ErrUnknown)
	}
	cl := r.cmdList

	cl.ResourceBarrier(depthStencilResource, gpu.RESOURCE_STATE_DEPTH_WRITE, gpu.RESOURCE_STATE_COPY_SOURCE)
	cl.ResourceBarrier(res.textureName, gpu.RESOURCE_STATE_SHADER_RESOURCE, gpu.RESOURCE_STATE_COPY_DEST)
	cl.CopyDepthStencilToTexture(res.srvIndex)
	cl.ResourceBarrier(depthStencilResource, gpu.RESOURCE_STATE_COPY_SOURCE, gpu.RESOURCE_STATE_DEPTH_WRITE)
	cl.ResourceBarrier(res.textureName, gpu.RESOURCE_STATE_COPY_DEST, gpu.RESOURCE_STATE_SHADER_RESOURCE)

	cl.SetPipelineState(metadata.PIPELINE_OVERDRAW_QUAD)
	cl.SetVertexBuffer(res.quad.Vertices)
	cl.SetIndexBuffer(res.quad.Indices)
	cl.SetGraphicsRootDescriptorTable(ROOT_PARAM_TEXTURE, res.srvIndex)
	cl.DrawIndexedInstanced(res.quadSubmesh.IndexCount, 1, res.quadSubmesh.StartIndexLocation, res.quadSubmesh.BaseVertexLocation)
	return nil
}
