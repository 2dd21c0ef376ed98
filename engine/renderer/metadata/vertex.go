package metadata

import "golang.org/x/image/math/f32"

/**
 * @brief A vertex with position, normal and texture coordinates.
 */
type Vertex struct {
	Position f32.Vec3
	Normal   f32.Vec3
	TexC     f32.Vec2
}

/**
 * @brief A colored vertex used by the box demo.
 */
type ColorVertex struct {
	Position f32.Vec3
	Color    f32.Vec4
}

/** @brief Primitive topology of a draw call. */
type PrimitiveTopology int

const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyTriangleStrip
	TopologyLineList
)
