package testbed

import (
	"github.com/spaghettifunk/frameflight/engine"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/components"
)

const (
	fovY  = 0.25 * math.K_PI
	nearZ = 1.0
	farZ  = 1000.0
	// pixels of right button drag one wheel notch is worth
	wheelNotch = 40
)

// attachOrbitCamera lets the mouse drive cam: the left button orbits, the
// right one and the wheel zoom.
func attachOrbitCamera(g *engine.Game, cam *components.OrbitCamera) {
	g.Events.Register(core.EVENT_CODE_BUTTON_PRESSED, func(ec core.EventContext) bool {
		me, ok := ec.Data.(*core.MouseEvent)
		if !ok {
			return false
		}
		cam.BeginDrag(int16(me.PosX), int16(me.PosY))
		return false
	})
	g.Events.Register(core.EVENT_CODE_MOUSE_MOVED, func(ec core.EventContext) bool {
		me, ok := ec.Data.(*core.MouseEvent)
		if !ok {
			return false
		}
		cam.Drag(g.Input.IsButtonDown(core.BUTTON_LEFT), g.Input.IsButtonDown(core.BUTTON_RIGHT), int16(me.PosX), int16(me.PosY))
		return false
	})
	g.Events.Register(core.EVENT_CODE_MOUSE_WHEEL, func(ec core.EventContext) bool {
		me, ok := ec.Data.(*core.MouseEvent)
		if !ok {
			return false
		}
		cam.Zoom(0, float32(me.Scroll)*wheelNotch)
		return false
	})
}

func projection(aspect float32) math.Mat4 {
	return math.NewMat4PerspectiveFovLH(fovY, aspect, nearZ, farZ)
}

// lightSteelBlue is the clear color of the box and crate demos.
var lightSteelBlue = [4]float32{0.690196, 0.768627, 0.870588, 1}
