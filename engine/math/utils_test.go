package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.1, Clamp(0.05, 0.1, 1.0))
	assert.Equal(t, 5, Clamp(9, 0, 5))
	assert.Equal(t, float32(0.5), Clamp[float32](0.5, 0, 1))
}

func TestRandomRanges(t *testing.T) {
	rnd := NewRandom(42)
	for i := 0; i < 1000; i++ {
		n := rnd.Int(4, 123)
		assert.GreaterOrEqual(t, n, 4)
		assert.LessOrEqual(t, n, 123)

		f := rnd.Float(0.2, 0.5)
		assert.GreaterOrEqual(t, f, float32(0.2))
		assert.Less(t, f, float32(0.5))
	}
}

func TestRandomDeterministic(t *testing.T) {
	a, b := NewRandom(7), NewRandom(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int(0, 100), b.Int(0, 100))
	}
}

func TestVec3Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	assert.Equal(t, NewVec3(0, 0, 1), x.Cross(y))
	assert.Equal(t, NewVec3Zero(), NewVec3Zero().Normalized())
	assert.InDelta(t, 1, NewVec3(3, 4, 12).Normalized().Length(), 1e-6)
}
