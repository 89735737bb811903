// Package hold turns a noisy stream of per-frame labels into confirmed events.
//
// A Tracker confirms a label once it has been observed continuously for the
// hold duration and then stays latched until the label changes. A Cooldown
// limits how often the same confirmed label may fire a side effect. Neither
// reads the clock: callers pass timestamps in.
package hold

import "time"

// Default hold durations.
const (
	DefaultSentenceHold = time.Second
	DefaultTriggerHold  = 2 * time.Second
)

// State is the tracker's position in the Idle -> Holding -> Triggered cycle.
type State int

const (
	Idle State = iota
	Holding
	Triggered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Triggered:
		return "triggered"
	}
	return "unknown"
}

// Tracker tracks one hand or channel. It is not safe for concurrent use;
// all calls for one tracker must be serialised by its owner.
type Tracker struct {
	// OnConfirm, when set, is called once per hold with the confirmed label.
	OnConfirm func(label string)

	hold      time.Duration
	label     string
	start     time.Time
	last      time.Time
	triggered bool
}

// New creates an idle tracker. A non-positive duration confirms on the
// first sample of a new label.
func New(holdDuration time.Duration) *Tracker {
	if holdDuration < 0 {
		holdDuration = 0
	}
	return &Tracker{hold: holdDuration}
}

// Update feeds one sample. An empty label means nothing was classified.
// It reports true exactly on the sample that confirms the current hold.
// A timestamp earlier than the previous sample is treated as equal to it.
func (t *Tracker) Update(ts time.Time, label string) bool {
	if !t.last.IsZero() && ts.Before(t.last) {
		ts = t.last
	}
	t.last = ts

	if label != t.label {
		t.label = label
		t.triggered = false
		t.start = ts
		if label == "" {
			t.start = time.Time{}
			return false
		}
	}

	if label == "" || t.triggered {
		return false
	}

	if ts.Sub(t.start) >= t.hold {
		t.triggered = true
		if t.OnConfirm != nil {
			t.OnConfirm(label)
		}
		return true
	}
	return false
}

// Progress returns hold progress in [0,1] as of the last sample.
func (t *Tracker) Progress() float64 {
	return t.ProgressAt(t.last)
}

// ProgressAt returns hold progress in [0,1] as of now, for rendering between
// samples. Times before the last sample are clamped to it.
func (t *Tracker) ProgressAt(now time.Time) float64 {
	if t.label == "" {
		return 0
	}
	if t.triggered || t.hold <= 0 {
		return 1
	}
	if now.Before(t.last) {
		now = t.last
	}
	elapsed := now.Sub(t.start)
	if elapsed <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(t.hold)
	if p > 1 {
		return 1
	}
	return p
}

// IsTriggered reports whether the current hold has been confirmed.
func (t *Tracker) IsTriggered() bool {
	return t.triggered
}

// Label returns the label being tracked, or "" when idle.
func (t *Tracker) Label() string {
	return t.label
}

// State returns the tracker's current state.
func (t *Tracker) State() State {
	switch {
	case t.label == "":
		return Idle
	case t.triggered:
		return Triggered
	default:
		return Holding
	}
}

// Reset discards all state and returns the tracker to Idle.
func (t *Tracker) Reset() {
	t.label = ""
	t.start = time.Time{}
	t.last = time.Time{}
	t.triggered = false
}
