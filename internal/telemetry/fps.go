package telemetry

import "time"

// FPSCounter counts frames per wall-clock second.
type FPSCounter struct {
	frames int
	last   int
	start  time.Time
}

// NewFPSCounter starts counting at now.
func NewFPSCounter(now time.Time) *FPSCounter {
	return &FPSCounter{start: now}
}

// Frame counts one frame. It returns true when a full second has elapsed
// and FPS has a new value.
func (c *FPSCounter) Frame(now time.Time) bool {
	c.frames++
	if now.Sub(c.start) < time.Second {
		return false
	}
	c.last = c.frames
	c.frames = 0
	c.start = now
	return true
}

// FPS returns the frame count of the last completed second.
func (c *FPSCounter) FPS() int {
	return c.last
}
