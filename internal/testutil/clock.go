package testutil

import "time"

// Clock hands out deterministic, strictly increasing times. Pass
// [Clock.Now] wherever a time source is injected.
type Clock struct {
	current time.Time
	step    time.Duration
}

// NewClock returns a clock starting at a fixed UTC time and advancing one
// second per call.
func NewClock() *Clock {
	return &Clock{
		current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		step:    time.Second,
	}
}

// Now advances the clock and returns the new time.
func (c *Clock) Now() time.Time {
	c.current = c.current.Add(c.step)

	return c.current
}

// Peek returns the time the next call to [Clock.Now] will return.
func (c *Clock) Peek() time.Time {
	return c.current.Add(c.step)
}
