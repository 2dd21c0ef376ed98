package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/frame"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
)

func newTestWaves(t *testing.T) *Waves {
	t.Helper()
	w, err := NewWaves(128, 128, 1.0, 0.03, 4.0, 0.2)
	require.NoError(t, err)
	return w
}

func TestWavesDimensions(t *testing.T) {
	w := newTestWaves(t)
	assert.Equal(t, 128*128, w.VertexCount())
	assert.Equal(t, 127*127*2, w.TriangleCount())
	assert.Equal(t, float32(128), w.Width())
	assert.Equal(t, float32(128), w.Depth())
	assert.Len(t, w.Indices(), w.TriangleCount()*3)
}

func TestWavesDisturb(t *testing.T) {
	w := newTestWaves(t)
	require.NoError(t, w.Disturb(10, 20, 0.5))
	assert.Equal(t, float32(0.5), w.Position(10*128+20).Y)
	assert.Equal(t, float32(0.25), w.Position(10*128+21).Y)
	assert.Equal(t, float32(0.25), w.Position(11*128+20).Y)

	assert.ErrorIs(t, w.Disturb(1, 20, 1), core.ErrBufferIndexOutOfRange)
	assert.ErrorIs(t, w.Disturb(20, 126, 1), core.ErrBufferIndexOutOfRange)
}

func TestWavesUpdateWaitsForTimeStep(t *testing.T) {
	w := newTestWaves(t)
	require.NoError(t, w.Disturb(64, 64, 1))
	w.Update(0.01)
	assert.Equal(t, float32(0), w.Position(64*128+66).Y)

	w.Update(0.03)
	assert.NotEqual(t, float32(0), w.Position(64*128+66).Y)
	assert.NotEqual(t, float32(0), w.Normal(64*128+65).X)
}

func TestWavesStable(t *testing.T) {
	w := newTestWaves(t)
	require.NoError(t, w.Disturb(64, 64, 0.5))
	for step := 0; step < 2000; step++ {
		w.Update(0.03)
	}
	for i := 0; i < w.VertexCount(); i++ {
		y := w.Position(i).Y
		require.False(t, math32.IsNaN(y))
		require.Less(t, math32.Abs(y), float32(10))
	}
	// border vertices never move
	assert.Equal(t, float32(0), w.Position(0).Y)
}

func TestWavesUploadVertices(t *testing.T) {
	w := newTestWaves(t)
	buf := frame.NewUploadBuffer[metadata.Vertex]("waves", w.VertexCount())
	require.NoError(t, w.UploadVertices(buf))
	v, err := buf.At(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5+v.Position[0]/w.Width(), v.TexC[0], 1e-6)
	assert.Equal(t, uint64(1), buf.Writes(w.VertexCount()-1))

	assert.ErrorIs(t, w.UploadVertices(frame.NewUploadBuffer[metadata.Vertex]("small", 3)), core.ErrBufferIndexOutOfRange)
}
