package metadata

import "golang.org/x/image/math/f32"

/** @brief The maximum number of lights in a pass constant buffer. */
const MaxLights = 16

/**
 * @brief Per object constants. Matrices are stored transposed.
 */
type ObjectConstants struct {
	/** @brief The world matrix of the object. */
	World f32.Mat4
	/** @brief The texture coordinate transform of the object. */
	TexTransform f32.Mat4
}

/**
 * @brief Per material constants. The transform is stored transposed.
 */
type MaterialConstants struct {
	DiffuseAlbedo f32.Vec4
	FresnelR0     f32.Vec3
	Roughness     float32
	MatTransform  f32.Mat4
}

/**
 * @brief A directional, point or spot light.
 */
type Light struct {
	Strength     f32.Vec3
	FalloffStart float32
	Direction    f32.Vec3
	FalloffEnd   float32
	Position     f32.Vec3
	SpotPower    float32
}

/**
 * @brief Per pass constants, rebuilt every frame. Matrices are stored transposed.
 */
type PassConstants struct {
	View              f32.Mat4
	InvView           f32.Mat4
	Proj              f32.Mat4
	InvProj           f32.Mat4
	ViewProj          f32.Mat4
	InvViewProj       f32.Mat4
	EyePosW           f32.Vec3
	RenderTargetSize  f32.Vec2
	InvRenderTargetSz f32.Vec2
	NearZ             float32
	FarZ              float32
	TotalTime         float32
	DeltaTime         float32
	AmbientLight      f32.Vec4
	FogColor          f32.Vec4
	FogStart          float32
	FogRange          float32
	Lights            [MaxLights]Light
}

/**
 * @brief Object constants of the single object box demo.
 */
type BoxConstants struct {
	/** @brief world * view * projection, transposed. */
	WorldViewProj f32.Mat4
	/** @brief Total elapsed time in seconds. */
	Time float32
}

/**
 * @brief Global time constants of the box demo.
 */
type TimeConstants struct {
	Time float32
}
