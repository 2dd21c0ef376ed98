package scene

import (
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// MeshData is generated vertex and index data.
type MeshData struct {
	Vertices []metadata.Vertex
	Indices  []uint32
}

func vertex(px, py, pz, nx, ny, nz, u, v float32) metadata.Vertex {
	return metadata.Vertex{
		Position: math.NewVec3(px, py, pz).F32(),
		Normal:   math.NewVec3(nx, ny, nz).F32(),
		TexC:     math.NewVec2(u, v).F32(),
	}
}

// CreateBox builds an axis aligned box centered at the origin with one quad
// per face.
func CreateBox(width, height, depth float32) MeshData {
	w2, h2, d2 := 0.5*width, 0.5*height, 0.5*depth

	vertices := []metadata.Vertex{
		// front
		vertex(-w2, -h2, -d2, 0, 0, -1, 0, 1),
		vertex(-w2, +h2, -d2, 0, 0, -1, 0, 0),
		vertex(+w2, +h2, -d2, 0, 0, -1, 1, 0),
		vertex(+w2, -h2, -d2, 0, 0, -1, 1, 1),
		// back
		vertex(-w2, -h2, +d2, 0, 0, 1, 1, 1),
		vertex(+w2, -h2, +d2, 0, 0, 1, 0, 1),
		vertex(+w2, +h2, +d2, 0, 0, 1, 0, 0),
		vertex(-w2, +h2, +d2, 0, 0, 1, 1, 0),
		// top
		vertex(-w2, +h2, -d2, 0, 1, 0, 0, 1),
		vertex(-w2, +h2, +d2, 0, 1, 0, 0, 0),
		vertex(+w2, +h2, +d2, 0, 1, 0, 1, 0),
		vertex(+w2, +h2, -d2, 0, 1, 0, 1, 1),
		// bottom
		vertex(-w2, -h2, -d2, 0, -1, 0, 1, 1),
		vertex(+w2, -h2, -d2, 0, -1, 0, 0, 1),
		vertex(+w2, -h2, +d2, 0, -1, 0, 0, 0),
		vertex(-w2, -h2, +d2, 0, -1, 0, 1, 0),
		// left
		vertex(-w2, -h2, +d2, -1, 0, 0, 0, 1),
		vertex(-w2, +h2, +d2, -1, 0, 0, 0, 0),
		vertex(-w2, +h2, -d2, -1, 0, 0, 1, 0),
		vertex(-w2, -h2, -d2, -1, 0, 0, 1, 1),
		// right
		vertex(+w2, -h2, -d2, 1, 0, 0, 0, 1),
		vertex(+w2, +h2, -d2, 1, 0, 0, 0, 0),
		vertex(+w2, +h2, +d2, 1, 0, 0, 1, 0),
		vertex(+w2, -h2, +d2, 1, 0, 0, 1, 1),
	}

	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		b := face * 4
		indices = append(indices, b, b+1, b+2, b, b+2, b+3)
	}
	return MeshData{Vertices: vertices, Indices: indices}
}

// CreateGrid builds an m x n vertex grid in the xz plane centered at the origin.
func CreateGrid(width, depth float32, m, n int) MeshData {
	halfWidth, halfDepth := 0.5*width, 0.5*depth
	dx := width / float32(n-1)
	dz := depth / float32(m-1)
	du := 1 / float32(n-1)
	dv := 1 / float32(m-1)

	vertices := make([]metadata.Vertex, 0, m*n)
	for i := 0; i < m; i++ {
		z := halfDepth - float32(i)*dz
		for j := 0; j < n; j++ {
			x := -halfWidth + float32(j)*dx
			vertices = append(vertices, vertex(x, 0, z, 0, 1, 0, float32(j)*du, float32(i)*dv))
		}
	}
	return MeshData{Vertices: vertices, Indices: GridIndices(m, n)}
}

// GridIndices triangulates an m x n vertex grid.
func GridIndices(m, n int) []uint32 {
	indices := make([]uint32, 0, (m-1)*(n-1)*6)
	cols := uint32(n)
	for i := uint32(0); i < uint32(m-1); i++ {
		for j := uint32(0); j < cols-1; j++ {
			indices = append(indices,
				i*cols+j, i*cols+j+1, (i+1)*cols+j,
				(i+1)*cols+j, i*cols+j+1, (i+1)*cols+j+1,
			)
		}
	}
	return indices
}

// CreateQuad builds a screen aligned quad. x and y are the top left corner.
func CreateQuad(x, y, w, h, depth float32) MeshData {
	return MeshData{
		Vertices: []metadata.Vertex{
			vertex(x, y-h, depth, 0, 0, -1, 0, 1),
			vertex(x, y, depth, 0, 0, -1, 0, 0),
			vertex(x+w, y, depth, 0, 0, -1, 1, 0),
			vertex(x+w, y-h, depth, 0, 0, -1, 1, 1),
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// CreateCylinder builds a cylinder along the y axis centered at the origin.
func CreateCylinder(bottomRadius, topRadius, height float32, sliceCount, stackCount int, caps bool) MeshData {
	var md MeshData

	stackHeight := height / float32(stackCount)
	radiusStep := (topRadius - bottomRadius) / float32(stackCount)
	dTheta := math.K_PI_2 / float32(sliceCount)

	for i := 0; i <= stackCount; i++ {
		y := -0.5*height + float32(i)*stackHeight
		r := bottomRadius + float32(i)*radiusStep
		for j := 0; j <= sliceCount; j++ {
			c, s := math.Cos(float32(j)*dTheta), math.Sin(float32(j)*dTheta)

			tangent := math.NewVec3(-s, 0, c)
			dr := bottomRadius - topRadius
			bitangent := math.NewVec3(dr*c, -height, dr*s)
			n := tangent.Cross(bitangent).Normalized()

			md.Vertices = append(md.Vertices, vertex(
				r*c, y, r*s,
				n.X, n.Y, n.Z,
				float32(j)/float32(sliceCount), 1-float32(i)/float32(stackCount),
			))
		}
	}

	ringVertexCount := uint32(sliceCount + 1)
	for i := uint32(0); i < uint32(stackCount); i++ {
		for j := uint32(0); j < uint32(sliceCount); j++ {
			md.Indices = append(md.Indices,
				i*ringVertexCount+j, (i+1)*ringVertexCount+j, (i+1)*ringVertexCount+j+1,
				i*ringVertexCount+j, (i+1)*ringVertexCount+j+1, i*ringVertexCount+j+1,
			)
		}
	}

	if caps {
		buildCylinderCap(&md, topRadius, height, sliceCount, true)
		buildCylinderCap(&md, bottomRadius, height, sliceCount, false)
	}
	return md
}

func buildCylinderCap(md *MeshData, radius, height float32, sliceCount int, top bool) {
	base := uint32(len(md.Vertices))
	y, ny := 0.5*height, float32(1)
	if !top {
		y, ny = -y, -1
	}
	dTheta := math.K_PI_2 / float32(sliceCount)

	for i := 0; i <= sliceCount; i++ {
		x := radius * math.Cos(float32(i)*dTheta)
		z := radius * math.Sin(float32(i)*dTheta)
		md.Vertices = append(md.Vertices, vertex(x, y, z, 0, ny, 0, x/height+0.5, z/height+0.5))
	}
	md.Vertices = append(md.Vertices, vertex(0, y, 0, 0, ny, 0, 0.5, 0.5))
	center := uint32(len(md.Vertices) - 1)

	for i := uint32(0); i < uint32(sliceCount); i++ {
		if top {
			md.Indices = append(md.Indices, center, base+i+1, base+i)
		} else {
			md.Indices = append(md.Indices, center, base+i, base+i+1)
		}
	}
}
