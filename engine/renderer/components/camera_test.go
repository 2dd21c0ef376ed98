package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/frameflight/engine/math"
)

func TestOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera(1.5*math.K_PI, math.K_HALF_PI, 50)
	p := c.GetPosition()
	assert.InDelta(t, 0, p.X, 1e-4)
	assert.InDelta(t, 0, p.Y, 1e-4)
	assert.InDelta(t, -50, p.Z, 1e-4)
}

func TestOrbitCameraClamps(t *testing.T) {
	c := NewOrbitCamera(0, math.K_HALF_PI, 10)
	c.Rotate(0, 100000)
	assert.InDelta(t, math.K_PI-0.1, c.Phi, 1e-6)
	c.Rotate(0, -100000)
	assert.InDelta(t, 0.1, c.Phi, 1e-6)

	c.Zoom(-1000, 0)
	assert.Equal(t, c.MinRadius, c.Radius)
	c.Zoom(0, -1000)
	assert.Equal(t, c.MaxRadius, c.Radius)
}

func TestOrbitCameraDrag(t *testing.T) {
	c := NewOrbitCamera(0, math.K_HALF_PI, 10)
	c.BeginDrag(100, 100)
	c.Drag(true, false, 104, 100)
	assert.InDelta(t, math.DegToRad(1), c.Theta, 1e-6)

	c.Drag(false, true, 114, 100)
	assert.InDelta(t, 12, c.Radius, 1e-5)
	assert.True(t, c.IsDirty)
	_ = c.GetView()
	assert.False(t, c.IsDirty)
}
