package core

import "time"

// Clock tracks total running time and the delta between two updates. Time
// spent while stopped is not counted.
type Clock struct {
	now       func() time.Time
	startTime time.Time
	lastTime  time.Time
	paused    time.Duration
	stopTime  time.Time
	stopped   bool
	total     float64
	delta     float64
	// fixedStep, if positive, replaces wall time: every Update advances by it.
	fixedStep float64
}

func NewClock() *Clock {
	return &Clock{now: time.Now, stopped: true}
}

// NewFixedStepClock returns a clock whose updates advance by a constant step,
// which keeps headless runs deterministic.
func NewFixedStepClock(step time.Duration) *Clock {
	c := NewClock()
	c.fixedStep = step.Seconds()
	return c
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	t := c.now()
	c.startTime = t
	c.lastTime = t
	c.paused = 0
	c.total = 0
	c.delta = 0
	c.stopped = false
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	if c.stopped {
		return
	}
	c.stopTime = c.now()
	c.stopped = true
}

// Resume continues a stopped clock without counting the stopped interval.
func (c *Clock) Resume() {
	if !c.stopped {
		return
	}
	t := c.now()
	if !c.stopTime.IsZero() {
		c.paused += t.Sub(c.stopTime)
	}
	c.lastTime = t
	c.stopped = false
}

// Updates the provided clock. Should be called once per frame before reading
// Delta or Total. Has no effect on stopped clocks.
func (c *Clock) Update() {
	if c.stopped {
		c.delta = 0
		return
	}
	if c.fixedStep > 0 {
		c.delta = c.fixedStep
		c.total += c.fixedStep
		return
	}
	t := c.now()
	c.delta = t.Sub(c.lastTime).Seconds()
	if c.delta < 0 {
		c.delta = 0
	}
	c.lastTime = t
	c.total = (t.Sub(c.startTime) - c.paused).Seconds()
}

// Delta is the time in seconds between the last two updates.
func (c *Clock) Delta() float64 {
	return c.delta
}

// Total is the running time in seconds, excluding stopped intervals.
func (c *Clock) Total() float64 {
	return c.total
}

func (c *Clock) IsStopped() bool {
	return c.stopped
}
