package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief A 4x4 matrix stored row-major. Vectors are treated as rows and
 * multiplied on the left (v * M), so translation lives in the last row.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}
