package scene

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/math"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

// Waves solves the 2D wave equation on a rows x cols grid with finite
// differences. Border vertices stay fixed.
type Waves struct {
	rows, cols  int
	spatialStep float32
	timeStep    float32

	k1, k2, k3 float32
	elapsed    float32

	prev     []math.Vec3
	curr     []math.Vec3
	normals  []math.Vec3
	tangentX []math.Vec3
}

// NewWaves creates a flat water surface. dx is the spacing between
// vertices, dt the simulation step.
func NewWaves(rows, cols int, dx, dt, speed, damping float32) (*Waves, error) {
	if rows < 5 || cols < 5 {
		return nil, fmt.Errorf("waves grid %dx%d too small: %w", rows, cols, core.ErrInvalidConfig)
	}
	if dx <= 0 || dt <= 0 {
		return nil, fmt.Errorf("waves steps dx=%v dt=%v: %w", dx, dt, core.ErrInvalidConfig)
	}

	d := damping*dt + 2
	e := (speed * speed) * (dt * dt) / (dx * dx)

	w := &Waves{
		rows:        rows,
		cols:        cols,
		spatialStep: dx,
		timeStep:    dt,
		k1:          (damping*dt - 2) / d,
		k2:          (4 - 8*e) / d,
		k3:          (2 * e) / d,
		prev:        make([]math.Vec3, rows*cols),
		curr:        make([]math.Vec3, rows*cols),
		normals:     make([]math.Vec3, rows*cols),
		tangentX:    make([]math.Vec3, rows*cols),
	}

	halfWidth := float32(cols-1) * dx * 0.5
	halfDepth := float32(rows-1) * dx * 0.5
	for i := 0; i < rows; i++ {
		z := halfDepth - float32(i)*dx
		for j := 0; j < cols; j++ {
			x := -halfWidth + float32(j)*dx
			k := i*cols + j
			w.prev[k] = math.NewVec3(x, 0, z)
			w.curr[k] = w.prev[k]
			w.normals[k] = math.NewVec3Up()
			w.tangentX[k] = math.NewVec3(1, 0, 0)
		}
	}
	return w, nil
}

func (w *Waves) RowCount() int      { return w.rows }
func (w *Waves) ColumnCount() int   { return w.cols }
func (w *Waves) VertexCount() int   { return w.rows * w.cols }
func (w *Waves) TriangleCount() int { return (w.rows - 1) * (w.cols - 1) * 2 }
func (w *Waves) Width() float32     { return float32(w.cols) * w.spatialStep }
func (w *Waves) Depth() float32     { return float32(w.rows) * w.spatialStep }

func (w *Waves) Position(i int) math.Vec3 { return w.curr[i] }
func (w *Waves) Normal(i int) math.Vec3   { return w.normals[i] }
func (w *Waves) TangentX(i int) math.Vec3 { return w.tangentX[i] }

// Indices triangulates the wave grid.
func (w *Waves) Indices() []uint32 {
	return GridIndices(w.rows, w.cols)
}

// Update accumulates dt and advances the simulation by one step once a full
// time step has passed.
func (w *Waves) Update(dt float32) {
	w.elapsed += dt
	if w.elapsed < w.timeStep {
		return
	}

	n := w.cols
	for i := 1; i < w.rows-1; i++ {
		for j := 1; j < n-1; j++ {
			// prev holds the step before curr; it is overwritten with the next one
			w.prev[i*n+j].Y = w.k1*w.prev[i*n+j].Y +
				w.k2*w.curr[i*n+j].Y +
				w.k3*(w.curr[(i+1)*n+j].Y+
					w.curr[(i-1)*n+j].Y+
					w.curr[i*n+j+1].Y+
					w.curr[i*n+j-1].Y)
		}
	}
	w.prev, w.curr = w.curr, w.prev
	w.elapsed = 0

	for i := 1; i < w.rows-1; i++ {
		for j := 1; j < n-1; j++ {
			l := w.curr[i*n+j-1].Y
			r := w.curr[i*n+j+1].Y
			t := w.curr[(i-1)*n+j].Y
			b := w.curr[(i+1)*n+j].Y
			w.normals[i*n+j] = math.NewVec3(-r+l, 2*w.spatialStep, b-t).Normalized()
			w.tangentX[i*n+j] = math.NewVec3(2*w.spatialStep, r-l, 0).Normalized()
		}
	}
}

// Disturb raises vertex (i, j) by magnitude and its four neighbours by half
// of it. Vertices next to the border cannot be disturbed.
func (w *Waves) Disturb(i, j int, magnitude float32) error {
	if i <= 1 || i >= w.rows-2 || j <= 1 || j >= w.cols-2 {
		return fmt.Errorf("disturbing wave vertex (%d, %d) of %dx%d: %w", i, j, w.rows, w.cols, core.ErrBufferIndexOutOfRange)
	}
	half := 0.5 * magnitude
	n := w.cols
	w.curr[i*n+j].Y += magnitude
	w.curr[i*n+j+1].Y += half
	w.curr[i*n+j-1].Y += half
	w.curr[(i+1)*n+j].Y += half
	w.curr[(i-1)*n+j].Y += half
	return nil
}

// UploadVertices writes the current surface into a slot's dynamic vertex
// buffer. Texture coordinates span the grid once.
func (w *Waves) UploadVertices(buf *frame.UploadBuffer[metadata.Vertex]) error {
	if buf == nil || buf.Len() < w.VertexCount() {
		return fmt.Errorf("waves need %d dynamic vertices: %w", w.VertexCount(), core.ErrBufferIndexOutOfRange)
	}
	width, depth := w.Width(), w.Depth()
	for i := range w.curr {
		p := w.curr[i]
		v := metadata.Vertex{
			Position: p.F32(),
			Normal:   w.normals[i].F32(),
			TexC:     math.NewVec2(0.5+p.X/width, 0.5-p.Z/depth).F32(),
		}
		if err := buf.CopyData(i, v); err != nil {
			return err
		}
	}
	return nil
}
