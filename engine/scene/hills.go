package scene

import "github.com/spaghettifunk/frameflight/engine/math"

// HillsHeight is the terrain height at (x, z).
func HillsHeight(x, z float32) float32 {
	return 0.3 * (z*math.Sin(0.1*x) + x*math.Cos(0.1*z))
}

// HillsNormal is the unit terrain normal at (x, z).
func HillsNormal(x, z float32) math.Vec3 {
	n := math.NewVec3(
		-0.03*z*math.Cos(0.1*x)-0.3*math.Cos(0.1*z),
		1,
		-0.3*math.Sin(0.1*x)+0.03*x*math.Sin(0.1*z),
	)
	return n.Normalized()
}

// CreateHills builds a grid and displaces it onto the hills surface.
func CreateHills(width, depth float32, m, n int) MeshData {
	grid := CreateGrid(width, depth, m, n)
	for i := range grid.Vertices {
		p := &grid.Vertices[i].Position
		p[1] = HillsHeight(p[0], p[2])
		grid.Vertices[i].Normal = HillsNormal(p[0], p[2]).F32()
	}
	return grid
}
