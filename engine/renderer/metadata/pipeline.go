package metadata

/** @brief Identifies a pipeline state object in the pipeline registry. */
type PipelineID uint8

const (
	PIPELINE_OPAQUE PipelineID = iota
	PIPELINE_TRANSPARENT
	PIPELINE_ALPHA_TESTED
	PIPELINE_ANIMATED_BOLT
	PIPELINE_OPAQUE_WIREFRAME
	PIPELINE_FLARE
	PIPELINE_FLARE_WIREFRAME
	PIPELINE_COLORED
	PIPELINE_OPAQUE_OVERDRAW
	PIPELINE_TRANSPARENT_OVERDRAW
	PIPELINE_ALPHA_TESTED_OVERDRAW
	PIPELINE_ANIMATED_BOLT_OVERDRAW
	PIPELINE_OVERDRAW_QUAD
	PIPELINE_MAX
)

var pipelineNames = [PIPELINE_MAX]string{
	"opaque",
	"transparent",
	"alphaTested",
	"animatedBolt",
	"opaque_wireframe",
	"flare",
	"flare_wireframe",
	"colored",
	"opaque_overdraw",
	"transparent_overdraw",
	"alphaTested_overdraw",
	"animatedBolt_overdraw",
	"overdraw_quad",
}

func (id PipelineID) String() string {
	if id >= PIPELINE_MAX {
		return "unknown"
	}
	return pipelineNames[id]
}

type FillMode uint8

const (
	FILL_MODE_SOLID FillMode = iota
	FILL_MODE_WIREFRAME
)

type CullMode uint8

const (
	CULL_MODE_BACK CullMode = iota
	CULL_MODE_NONE
)

type BlendMode uint8

const (
	BLEND_MODE_NONE BlendMode = iota
	/** @brief src*alpha + dst*(1-alpha) */
	BLEND_MODE_ALPHA
	/** @brief src + dst */
	BLEND_MODE_ADDITIVE
)

type StencilOp uint8

const (
	STENCIL_OP_KEEP StencilOp = iota
	STENCIL_OP_INCREMENT
)

/**
 * @brief The state a pipeline is created from. Field values mirror what a
 * graphics backend would need; the headless device only reads the stencil op
 * and blend mode.
 */
type PipelineDesc struct {
	Name            string
	VertexShader    string
	PixelShader     string
	Defines         []string
	FillMode        FillMode
	CullMode        CullMode
	Blend           BlendMode
	DepthWrite      bool
	DepthAlways     bool
	ColorWriteOff   bool
	StencilEnable   bool
	StencilPass     StencilOp
	AlphaToCoverage bool
}

type SamplerFilter uint8

const (
	FILTER_POINT SamplerFilter = iota
	FILTER_LINEAR
	FILTER_ANISOTROPIC
)

func (f SamplerFilter) String() string {
	switch f {
	case FILTER_POINT:
		return "point"
	case FILTER_LINEAR:
		return "linear"
	case FILTER_ANISOTROPIC:
		return "anisotropic"
	}
	return "unknown"
}

type AddressMode uint8

const (
	ADDRESS_MODE_WRAP AddressMode = iota
	ADDRESS_MODE_CLAMP
	ADDRESS_MODE_BORDER
	ADDRESS_MODE_MIRROR
)

func (a AddressMode) String() string {
	switch a {
	case ADDRESS_MODE_WRAP:
		return "wrap"
	case ADDRESS_MODE_CLAMP:
		return "clamp"
	case ADDRESS_MODE_BORDER:
		return "border"
	case ADDRESS_MODE_MIRROR:
		return "mirror"
	}
	return "unknown"
}

/** @brief A sampler descriptor. */
type SamplerDesc struct {
	Filter        SamplerFilter
	AddressMode   AddressMode
	MaxAnisotropy uint32
}
