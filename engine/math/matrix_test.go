package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertMat4InDelta(t *testing.T, expected, actual Mat4) {
	t.Helper()
	for i := range expected.Data {
		assert.InDelta(t, expected.Data[i], actual.Data[i], 1e-5, "element %d", i)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4Translation(1, 2, 3).Mul(NewMat4RotationY(0.7))
	assertMat4InDelta(t, m, m.Mul(NewMat4Identity()))
	assertMat4InDelta(t, m, NewMat4Identity().Mul(m))
}

func TestMat4TranslationRowVector(t *testing.T) {
	p := NewMat4Translation(3, 2, -9).TransformPoint(NewVec3(1, 1, 1))
	assert.True(t, p.Compare(NewVec3(4, 3, -8), 1e-6))
}

func TestMat4Transposed(t *testing.T) {
	m := NewMat4Translation(5, 6, 7)
	tr := m.Transposed()
	assert.Equal(t, float32(5), tr.At(0, 3))
	assert.Equal(t, float32(6), tr.At(1, 3))
	assert.Equal(t, float32(7), tr.At(2, 3))
	assert.Equal(t, m, tr.Transposed())
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4Scale(2, 3, 4).Mul(NewMat4RotationZ(0.3)).Mul(NewMat4Translation(1, -2, 5))
	assertMat4InDelta(t, NewMat4Identity(), m.Mul(m.Inverse()))

	var singular Mat4
	assert.Equal(t, NewMat4Identity(), singular.Inverse())
}

func TestLookAtLH(t *testing.T) {
	view := NewMat4LookAtLH(NewVec3(0, 0, -10), NewVec3Zero(), NewVec3Up())
	// The target sits ten units in front of the eye.
	p := view.TransformPoint(NewVec3Zero())
	assert.True(t, p.Compare(NewVec3(0, 0, 10), 1e-5))
}

func TestPerspectiveFovLHDepthRange(t *testing.T) {
	proj := NewMat4PerspectiveFovLH(K_QUARTER_PI, 1, 1, 1000)
	near := proj.TransformPoint(NewVec3(0, 0, 1))
	far := proj.TransformPoint(NewVec3(0, 0, 1000))
	assert.InDelta(t, 0, near.Z, 1e-5)
	assert.InDelta(t, 1, far.Z, 1e-5)
}

func TestF32Layout(t *testing.T) {
	m := NewMat4Translation(1, 2, 3)
	out := m.F32()
	assert.Equal(t, float32(1), out[12])
	assert.Equal(t, float32(2), out[13])
	assert.Equal(t, float32(3), out[14])
}
