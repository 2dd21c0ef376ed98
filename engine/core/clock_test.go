package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedStepClock(t *testing.T) {
	c := NewFixedStepClock(50 * time.Millisecond)
	c.Update()
	assert.Zero(t, c.Total(), "a clock that was never started does not advance")

	c.Start()
	for i := 0; i < 4; i++ {
		c.Update()
	}
	assert.InDelta(t, 0.2, c.Total(), 1e-9)
	assert.InDelta(t, 0.05, c.Delta(), 1e-9)

	c.Stop()
	c.Update()
	assert.Zero(t, c.Delta())
	assert.InDelta(t, 0.2, c.Total(), 1e-9)
}

func TestClockExcludesStoppedTime(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewClock()
	c.now = func() time.Time { return now }

	c.Start()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.0, c.Total(), 1e-9)

	c.Stop()
	now = now.Add(10 * time.Second)
	c.Resume()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 2.0, c.Total(), 1e-9)
	assert.InDelta(t, 1.0, c.Delta(), 1e-9)
}

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	fps, ms := m.Frame()
	assert.InDelta(t, 16.0, ms, 1e-9)
	assert.Zero(t, fps, "no full second has elapsed")

	for i := 0; i < 40; i++ {
		m.Update(0.016)
	}
	fps, _ = m.Frame()
	assert.Greater(t, fps, 0.0)
	assert.Equal(t, uint64(70), m.TotalFrames)
}
