// Package tickrate counts how many times something happened in the last
// second, such as frames presented.
package tickrate

import "time"

// Counter is a rolling one second window of tick times.
type Counter struct {
	window time.Duration
	ticks  []time.Time
}

// New creates a counter over a one second window.
func New() *Counter {
	return &Counter{
		window: time.Second,
		ticks:  make([]time.Time, 0, 128),
	}
}

// Tick records a tick at now and returns the number of ticks within the
// window ending at now.
func (c *Counter) Tick(now time.Time) int {
	last := now.Add(-c.window)

	// drop ticks that fell out of the window
	i := 0
	for i < len(c.ticks) && c.ticks[i].Before(last) {
		i++
	}
	c.ticks = append(c.ticks[:0], c.ticks[i:]...)

	c.ticks = append(c.ticks, now)

	return len(c.ticks)
}
