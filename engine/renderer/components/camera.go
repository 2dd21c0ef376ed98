package components

import (
	"github.com/spaghettifunk/frameflight/engine/math"
)

/**
 * @brief A camera orbiting the origin on a sphere. Theta is the angle in the
 * xz plane, Phi the angle from the y axis.
 */
type OrbitCamera struct {
	Theta  float32
	Phi    float32
	Radius float32

	/** @brief Radius bounds applied when zooming. */
	MinRadius float32
	MaxRadius float32
	/** @brief Radians per pixel of mouse movement while rotating. */
	RotateSpeed float32
	/** @brief Scene units per pixel of mouse movement while zooming. */
	ZoomSpeed float32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty    bool
	position   math.Vec3
	ViewMatrix math.Mat4

	lastMouseX, lastMouseY int16
}

/** @brief Keeps the camera away from the poles. */
const phiLimit float32 = 0.1

func NewOrbitCamera(theta, phi, radius float32) *OrbitCamera {
	c := &OrbitCamera{
		Theta:       theta,
		Phi:         phi,
		Radius:      radius,
		MinRadius:   5,
		MaxRadius:   150,
		RotateSpeed: math.DegToRad(0.25),
		ZoomSpeed:   0.2,
		IsDirty:     true,
	}
	return c
}

func (c *OrbitCamera) GetPosition() math.Vec3 {
	c.update()
	return c.position
}

func (c *OrbitCamera) GetView() math.Mat4 {
	c.update()
	return c.ViewMatrix
}

func (c *OrbitCamera) update() {
	if !c.IsDirty {
		return
	}
	c.position = math.NewVec3(
		c.Radius*math.Sin(c.Phi)*math.Cos(c.Theta),
		c.Radius*math.Cos(c.Phi),
		c.Radius*math.Sin(c.Phi)*math.Sin(c.Theta),
	)
	c.ViewMatrix = math.NewMat4LookAtLH(c.position, math.NewVec3Zero(), math.NewVec3Up())
	c.IsDirty = false
}

// Rotate orbits by dx, dy pixels.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.Theta += c.RotateSpeed * dx
	c.Phi += c.RotateSpeed * dy
	c.Phi = math.Clamp(c.Phi, phiLimit, math.K_PI-phiLimit)
	c.IsDirty = true
}

// Zoom moves towards or away from the origin by dx, dy pixels.
func (c *OrbitCamera) Zoom(dx, dy float32) {
	c.Radius += c.ZoomSpeed*dx - c.ZoomSpeed*dy
	c.Radius = math.Clamp(c.Radius, c.MinRadius, c.MaxRadius)
	c.IsDirty = true
}

// BeginDrag remembers where a mouse drag started.
func (c *OrbitCamera) BeginDrag(x, y int16) {
	c.lastMouseX, c.lastMouseY = x, y
}

// Drag handles a mouse move. The left button rotates, the right one zooms.
func (c *OrbitCamera) Drag(left, right bool, x, y int16) {
	dx := float32(x - c.lastMouseX)
	dy := float32(y - c.lastMouseY)
	if left {
		c.Rotate(dx, dy)
	} else if right {
		c.Zoom(dx, dy)
	}
	c.lastMouseX, c.lastMouseY = x, y
}
