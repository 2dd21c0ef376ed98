package renderer

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/gpu"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// Pipelines registers pipeline states on a device and keeps their descriptions.
type Pipelines struct {
	device gpu.Device
	descs  map[metadata.PipelineID]metadata.PipelineDesc
}

func NewPipelines(device gpu.Device) *Pipelines {
	return &Pipelines{
		device: device,
		descs:  make(map[metadata.PipelineID]metadata.PipelineDesc),
	}
}

func (p *Pipelines) Register(id metadata.PipelineID, desc metadata.PipelineDesc) error {
	if err := p.device.CreatePipelineState(id, desc); err != nil {
		core.LogError("failed to create pipeline %s: %s", id, err)
		return err
	}
	p.descs[id] = desc
	return nil
}

func (p *Pipelines) Has(id metadata.PipelineID) bool {
	_, ok := p.descs[id]
	return ok
}

func (p *Pipelines) Desc(id metadata.PipelineID) (metadata.PipelineDesc, error) {
	desc, ok := p.descs[id]
	if !ok {
		return metadata.PipelineDesc{}, fmt.Errorf("pipeline %s: %w", id, core.ErrUnknownPipeline)
	}
	return desc, nil
}

// OpaqueDesc is the base every scene pipeline derives from.
func OpaqueDesc() metadata.PipelineDesc {
	return metadata.PipelineDesc{
		Name:         metadata.PIPELINE_OPAQUE.String(),
		VertexShader: "standardVS",
		PixelShader:  "opaquePS",
		Defines:      []string{"FOG=1"},
		FillMode:     metadata.FILL_MODE_SOLID,
		CullMode:     metadata.CULL_MODE_BACK,
		Blend:        metadata.BLEND_MODE_NONE,
		DepthWrite:   true,
	}
}

// SceneDescs returns the pipelines used to draw the blend scene layers.
func SceneDescs() map[metadata.PipelineID]metadata.PipelineDesc {
	opaque := OpaqueDesc()

	transparent := opaque
	transparent.Name = metadata.PIPELINE_TRANSPARENT.String()
	transparent.Blend = metadata.BLEND_MODE_ALPHA

	alphaTested := opaque
	alphaTested.Name = metadata.PIPELINE_ALPHA_TESTED.String()
	alphaTested.PixelShader = "alphaTestedPS"
	alphaTested.Defines = []string{"FOG=1", "ALPHA_TEST=1"}
	alphaTested.CullMode = metadata.CULL_MODE_NONE

	bolt := opaque
	bolt.Name = metadata.PIPELINE_ANIMATED_BOLT.String()
	bolt.PixelShader = "animatedBoltPS"
	bolt.Defines = []string{"FOG=1", "ADDITIVE_BLENDING=1"}
	bolt.CullMode = metadata.CULL_MODE_NONE
	bolt.Blend = metadata.BLEND_MODE_ADDITIVE

	return map[metadata.PipelineID]metadata.PipelineDesc{
		metadata.PIPELINE_OPAQUE:        opaque,
		metadata.PIPELINE_TRANSPARENT:   transparent,
		metadata.PIPELINE_ALPHA_TESTED:  alphaTested,
		metadata.PIPELINE_ANIMATED_BOLT: bolt,
	}
}

// WireframeDesc is the opaque pipeline rasterized as lines.
func WireframeDesc() metadata.PipelineDesc {
	desc := OpaqueDesc()
	desc.Name = metadata.PIPELINE_OPAQUE_WIREFRAME.String()
	desc.Defines = nil
	desc.FillMode = metadata.FILL_MODE_WIREFRAME
	return desc
}

// FlareDesc samples a diffuse map modulated by an alpha map.
func FlareDesc(fill metadata.FillMode) metadata.PipelineDesc {
	desc := OpaqueDesc()
	desc.Name = metadata.PIPELINE_FLARE.String()
	if fill == metadata.FILL_MODE_WIREFRAME {
		desc.Name = metadata.PIPELINE_FLARE_WIREFRAME.String()
	}
	desc.VertexShader = "flareVS"
	desc.PixelShader = "flarePS"
	desc.Defines = nil
	desc.FillMode = fill
	return desc
}

// ColoredDesc draws position and color vertices without lighting.
func ColoredDesc() metadata.PipelineDesc {
	return metadata.PipelineDesc{
		Name:         metadata.PIPELINE_COLORED.String(),
		VertexShader: "colorVS",
		PixelShader:  "colorPS",
		FillMode:     metadata.FILL_MODE_SOLID,
		CullMode:     metadata.CULL_MODE_BACK,
		DepthWrite:   true,
	}
}

// OverdrawDesc turns a scene pipeline into one that only counts fragments in
// the stencil buffer.
func OverdrawDesc(desc metadata.PipelineDesc) metadata.PipelineDesc {
	desc.Name += "_overdraw"
	desc.ColorWriteOff = true
	desc.StencilEnable = true
	desc.StencilPass = metadata.STENCIL_OP_INCREMENT
	return desc
}

// OverdrawQuadDesc draws the stencil counts copied to a texture over the screen.
func OverdrawQuadDesc() metadata.PipelineDesc {
	return metadata.PipelineDesc{
		Name:         metadata.PIPELINE_OVERDRAW_QUAD.String(),
		VertexShader: "fullScreenQuadVS",
		PixelShader:  "pixelOverdrawPS",
		CullMode:     metadata.CULL_MODE_BACK,
		DepthAlways:  true,
		DepthWrite:   true,
	}
}

var overdrawVariants = map[metadata.PipelineID]metadata.PipelineID{
	metadata.PIPELINE_OPAQUE:        metadata.PIPELINE_OPAQUE_OVERDRAW,
	metadata.PIPELINE_TRANSPARENT:   metadata.PIPELINE_TRANSPARENT_OVERDRAW,
	metadata.PIPELINE_ALPHA_TESTED:  metadata.PIPELINE_ALPHA_TESTED_OVERDRAW,
	metadata.PIPELINE_ANIMATED_BOLT: metadata.PIPELINE_ANIMATED_BOLT_OVERDRAW,
}
