package hold

import "time"

// DefaultCooldown is the minimum gap between two actions for the same label.
const DefaultCooldown = 1500 * time.Millisecond

// Cooldown suppresses repeat actions for a label within a window of its last
// allowed action. Labels are independent. Not safe for concurrent use.
type Cooldown struct {
	window time.Duration
	last   map[string]time.Time
}

// NewCooldown creates a cooldown with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether label may act at now and, if so, records now as its
// last action. Suppressed attempts leave the record unchanged.
func (c *Cooldown) Allow(label string, now time.Time) bool {
	if last, ok := c.last[label]; ok && now.Sub(last) < c.window {
		return false
	}
	c.last[label] = now
	return true
}

// Remaining returns how long label stays suppressed as of now.
func (c *Cooldown) Remaining(label string, now time.Time) time.Duration {
	last, ok := c.last[label]
	if !ok {
		return 0
	}
	if d := c.window - now.Sub(last); d > 0 {
		return d
	}
	return 0
}

// Reset forgets every recorded action.
func (c *Cooldown) Reset() {
	clear(c.last)
}
