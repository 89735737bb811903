package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/hold"
	"github.com/ayusman/unmute/internal/sign"
)

// Config holds the timing parameters of a session.
type Config struct {
	SentenceHold time.Duration
	TriggerHold  time.Duration
	Cooldown     time.Duration
}

// DefaultConfig returns the default hold and cooldown timings.
func DefaultConfig() Config {
	return Config{
		SentenceHold: hold.DefaultSentenceHold,
		TriggerHold:  hold.DefaultTriggerHold,
		Cooldown:     hold.DefaultCooldown,
	}
}

// Update describes what one observation did to the session.
type Update struct {
	Slot   string       `json:"slot"`
	Result *sign.Result `json:"result,omitempty"`

	// Confirmed is the symbol appended to the sentence by this observation.
	Confirmed string `json:"confirmed,omitempty"`
	Kind      Kind   `json:"kind,omitempty"`

	// Triggered is the label whose trigger hold completed and passed the cooldown.
	Triggered string `json:"triggered,omitempty"`
	// Suppressed is set when a trigger hold completed inside the cooldown window.
	Suppressed string `json:"suppressed,omitempty"`
	// CooldownLeftMS is how long Suppressed stays blocked.
	CooldownLeftMS int64 `json:"cooldown_left_ms,omitempty"`

	SentenceProgress float64 `json:"sentence_progress"`
	TriggerProgress  float64 `json:"trigger_progress"`
	Text             string  `json:"text"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Symbols []string  `json:"symbols"`
	Started time.Time `json:"started"`
}

type slot struct {
	sentence *hold.Tracker
	trigger  *hold.Tracker
}

// Session owns the sentence, one pair of trackers per hand slot and the
// trigger cooldown. Slots are keyed by SlotKey.
//
// A slot's trigger tracker latches after it fires, so one slot cannot fire
// the same label again sooner than a full trigger hold. The cooldown is
// shared by all slots. When the trigger hold is at least the cooldown, as
// with the defaults, it only ever suppresses a label that another hand
// triggered moments earlier.
//
// Observe is meant to be driven by a single pipeline goroutine; the mutex
// lets readers take snapshots concurrently.
type Session struct {
	mu       sync.Mutex
	config   Config
	id       string
	started  time.Time
	sentence Sentence
	slots    map[string]*slot
	cooldown *hold.Cooldown
}

// New creates an empty session with a fresh ID.
func New(config Config) *Session {
	return &Session{
		config:   config,
		id:       uuid.New().String(),
		started:  time.Now(),
		slots:    make(map[string]*slot),
		cooldown: hold.NewCooldown(config.Cooldown),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Config returns the session timings.
func (s *Session) Config() Config {
	return s.config
}

// SlotKey maps a handedness string to a slot name. Anything other than
// Left or Right is the unknown hand "".
func SlotKey(handedness string) string {
	switch handedness {
	case detector.HandLeft, detector.HandRight:
		return handedness
	default:
		return ""
	}
}

func (s *Session) slot(name string) *slot {
	sl, ok := s.slots[name]
	if !ok {
		sl = &slot{
			sentence: hold.New(s.config.SentenceHold),
			trigger:  hold.New(s.config.TriggerHold),
		}
		s.slots[name] = sl
	}
	return sl
}

// Observe feeds one classification for a hand slot at ts. ok=false means the
// hand matched nothing. slotName goes through SlotKey.
func (s *Session) Observe(ts time.Time, slotName string, r sign.Result, ok bool) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	slotName = SlotKey(slotName)

	label := ""
	if ok {
		label = r.Label
	}

	sl := s.slot(slotName)
	u := Update{Slot: slotName}
	if ok {
		res := r
		u.Result = &res
	}

	if sl.sentence.Update(ts, label) {
		u.Confirmed = label
		u.Kind = s.sentence.Append(label)
	}

	if sl.trigger.Update(ts, label) {
		if s.cooldown.Allow(label, ts) {
			u.Triggered = label
		} else {
			u.Suppressed = label
			u.CooldownLeftMS = s.cooldown.Remaining(label, ts).Milliseconds()
		}
	}

	u.SentenceProgress = sl.sentence.Progress()
	u.TriggerProgress = sl.trigger.Progress()
	u.Text = s.sentence.Text()
	return u
}

// Slots returns the hand slots observed so far, sorted.
func (s *Session) Slots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enter appends symbol directly, bypassing the trackers.
func (s *Session) Enter(symbol string) (Kind, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := s.sentence.Append(symbol)
	return kind, s.sentence.Text()
}

// Text returns the current sentence.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentence.Text()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:      s.id,
		Text:    s.sentence.Text(),
		Symbols: s.sentence.Symbols(),
		Started: s.started,
	}
}

// Clear empties the sentence. Trackers keep running.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentence.Clear()
}

// Stop resets every tracker and the cooldown, as when tracking stops.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		sl.sentence.Reset()
		sl.trigger.Reset()
	}
	s.cooldown.Reset()
}

// Restart stops tracking and begins a new, empty session with a fresh ID.
func (s *Session) Restart() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		sl.sentence.Reset()
		sl.trigger.Reset()
	}
	s.cooldown.Reset()
	s.sentence.Clear()
	s.id = uuid.New().String()
	s.started = time.Now()
	return s.id
}
