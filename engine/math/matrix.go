package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

func NewMat4Identity() Mat4 {
	return Mat4{Data: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float32 {
	return m.Data[r*4+c]
}

// Set writes the element at row r, column c.
func (m *Mat4) Set(r, c int, v float32) {
	m.Data[r*4+c] = v
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Data[r*4+k] * other.Data[k*4+c]
			}
			out.Data[r*4+c] = sum
		}
	}
	return out
}

func (m Mat4) Transposed() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = m.Data[r*4+c]
		}
	}
	return out
}

// Inverse returns the inverse of m, or the identity matrix if m is singular.
func (m Mat4) Inverse() Mat4 {
	a := m.Data
	var inv [16]float32

	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] + a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] - a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] + a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] - a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]
	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] - a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] + a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] - a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] + a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]
	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] + a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] - a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] + a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] - a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]
	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] - a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] + a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] - a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] + a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if det == 0 {
		return NewMat4Identity()
	}
	det = 1.0 / det
	for i := range inv {
		inv[i] *= det
	}
	return Mat4{Data: inv}
}

func NewMat4Translation(x, y, z float32) Mat4 {
	m := NewMat4Identity()
	m.Data[12] = x
	m.Data[13] = y
	m.Data[14] = z
	return m
}

func NewMat4Scale(x, y, z float32) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = x
	m.Data[5] = y
	m.Data[10] = z
	return m
}

func NewMat4RotationY(angleRadians float32) Mat4 {
	c, s := math32.Cos(angleRadians), math32.Sin(angleRadians)
	m := NewMat4Identity()
	m.Data[0] = c
	m.Data[2] = -s
	m.Data[8] = s
	m.Data[10] = c
	return m
}

func NewMat4RotationZ(angleRadians float32) Mat4 {
	c, s := math32.Cos(angleRadians), math32.Sin(angleRadians)
	m := NewMat4Identity()
	m.Data[0] = c
	m.Data[1] = s
	m.Data[4] = -s
	m.Data[5] = c
	return m
}

// NewMat4LookAtLH builds a left handed view matrix.
func NewMat4LookAtLH(eye, target, up Vec3) Mat4 {
	z := target.Sub(eye).Normalized()
	x := up.Cross(z).Normalized()
	y := z.Cross(x)
	return Mat4{Data: [16]float32{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}}
}

// NewMat4PerspectiveFovLH builds a left handed perspective projection mapping
// depth to [0, 1].
func NewMat4PerspectiveFovLH(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	h := 1 / math32.Tan(fovRadians*0.5)
	w := h / aspectRatio
	r := farClip / (farClip - nearClip)
	return Mat4{Data: [16]float32{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * nearClip, 0,
	}}
}

// TransformPoint returns (p, 1) * m with the perspective divide applied.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := p.X*m.Data[0] + p.Y*m.Data[4] + p.Z*m.Data[8] + m.Data[12]
	y := p.X*m.Data[1] + p.Y*m.Data[5] + p.Z*m.Data[9] + m.Data[13]
	z := p.X*m.Data[2] + p.Y*m.Data[6] + p.Z*m.Data[10] + m.Data[14]
	w := p.X*m.Data[3] + p.Y*m.Data[7] + p.Z*m.Data[11] + m.Data[15]
	if w != 0 && w != 1 {
		return Vec3{X: x / w, Y: y / w, Z: z / w}
	}
	return Vec3{X: x, Y: y, Z: z}
}

// F32 returns the matrix in the constant buffer wire layout.
func (m Mat4) F32() f32.Mat4 {
	return f32.Mat4(m.Data)
}
