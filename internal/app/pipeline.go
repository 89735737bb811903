package app

import (
	"log"
	"time"

	"github.com/ayusman/unmute/internal/plugin"
	"github.com/ayusman/unmute/internal/session"
	"github.com/ayusman/unmute/internal/sign"
	"github.com/ayusman/unmute/internal/store"
)

// EventType distinguishes pipeline events.
type EventType string

const (
	// EventFrame carries the per-hand outcome of one observation.
	EventFrame EventType = "frame"
	// EventAction reports the result of a plugin action.
	EventAction EventType = "action"
	// EventSession reports a manual change to the sentence.
	EventSession EventType = "session"
)

// ActionResult is the outcome of a bound plugin action.
type ActionResult struct {
	Label   string `json:"label"`
	Plugin  string `json:"plugin"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Event is published to subscribers.
type Event struct {
	Type      EventType        `json:"type"`
	SessionID string           `json:"session_id"`
	Timestamp time.Time        `json:"timestamp"`
	Updates   []session.Update `json:"updates,omitempty"`
	Action    *ActionResult    `json:"action,omitempty"`
	Text      string           `json:"text"`
}

// runPipeline drains the observation queue until stop is closed.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case obs := <-a.queue:
			a.Process(obs)
		}
	}
}

// Process classifies every hand of obs, feeds the session and runs the side
// effects of any confirmation. Hand slots seen earlier but missing from obs
// receive "none" so their holds reset. Calls are serialised.
func (a *App) Process(obs Observation) []session.Update {
	if !a.IsEnabled() {
		return nil
	}

	a.procMu.Lock()
	defer a.procMu.Unlock()

	ts := obs.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	seen := make(map[string]bool, len(obs.Hands))
	var updates []session.Update

	for _, hand := range obs.Hands {
		slot := session.SlotKey(hand.Image.Handedness)
		if seen[slot] {
			// Two hands claiming one slot: the first detection wins.
			continue
		}
		seen[slot] = true

		r, ok := a.classifier.ClassifyHand(hand)
		updates = append(updates, a.session.Observe(ts, slot, r, ok))
	}

	for _, slot := range a.session.Slots() {
		if !seen[slot] {
			updates = append(updates, a.session.Observe(ts, slot, sign.Result{}, false))
		}
	}

	id := a.session.ID()
	for _, u := range updates {
		a.handleUpdate(id, ts, u)
	}

	a.publish(Event{
		Type:      EventFrame,
		SessionID: id,
		Timestamp: ts,
		Updates:   updates,
		Text:      a.session.Text(),
	})
	return updates
}

func (a *App) handleUpdate(sessionID string, ts time.Time, u session.Update) {
	confidence := 0.0
	if u.Result != nil {
		confidence = u.Result.Confidence
	}

	if u.Confirmed != "" {
		log.Printf("confirmed %s %q (slot %q)", u.Kind, u.Confirmed, u.Slot)
		a.recordEvent(&store.Event{
			SessionID:  sessionID,
			Label:      u.Confirmed,
			Kind:       string(u.Kind),
			Confidence: confidence,
			CreatedAt:  ts,
		}, u.Text)
	}

	if u.Suppressed != "" {
		log.Printf("trigger %q suppressed by cooldown (%dms left)", u.Suppressed, u.CooldownLeftMS)
	}

	if u.Triggered != "" {
		log.Printf("trigger %q confirmed", u.Triggered)
		a.recordEvent(&store.Event{
			SessionID:  sessionID,
			Label:      u.Triggered,
			Kind:       string(session.KindTrigger),
			Confidence: confidence,
			CreatedAt:  ts,
		}, u.Text)
		a.executeAction(sessionID, u.Triggered, u.Text)
	}
}

// Enter appends symbol to the sentence as a manual override.
func (a *App) Enter(symbol string) (session.Kind, string) {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	kind, text := a.session.Enter(symbol)
	id := a.session.ID()

	a.recordEvent(&store.Event{
		SessionID: id,
		Label:     symbol,
		Kind:      string(session.KindManual),
	}, text)
	a.publish(Event{Type: EventSession, SessionID: id, Timestamp: time.Now(), Text: text})
	return kind, text
}

// Clear empties the sentence and forgets its recorded events.
func (a *App) Clear() {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	a.session.Clear()
	id := a.session.ID()

	if st := a.config.Store; st != nil {
		if err := st.Events().DeleteBySession(id); err != nil {
			log.Printf("clear session %s: %v", id, err)
		}
	}
	a.publish(Event{Type: EventSession, SessionID: id, Timestamp: time.Now()})
}

// Restart begins a new session. The previous one stays in the store with
// its final sentence.
func (a *App) Restart() session.Snapshot {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	a.flushText()
	a.session.Restart()

	snap := a.session.Snapshot()
	a.persistSession(snap)
	a.publish(Event{Type: EventSession, SessionID: snap.ID, Timestamp: time.Now()})
	return snap
}

// flushText writes the current sentence to the stored session.
// Callers hold procMu.
func (a *App) flushText() {
	st := a.config.Store
	if st == nil {
		return
	}
	id := a.session.ID()
	if err := st.Sessions().UpdateText(id, a.session.Text()); err != nil {
		log.Printf("save session %s: %v", id, err)
	}
}

func (a *App) persistSession(snap session.Snapshot) {
	st := a.config.Store
	if st == nil {
		return
	}
	err := st.Sessions().Create(&store.Session{ID: snap.ID, Text: snap.Text, CreatedAt: snap.Started})
	if err != nil {
		log.Printf("create session %s: %v", snap.ID, err)
	}
}

func (a *App) recordEvent(e *store.Event, text string) {
	st := a.config.Store
	if st == nil {
		return
	}
	if err := st.Events().Append(e, text); err != nil {
		log.Printf("record %s %q: %v", e.Kind, e.Label, err)
	}
}

// executeAction runs the plugin bound to a confirmed trigger. Unbound or
// disabled labels are skipped silently. The plugin runs in its own goroutine
// so a slow plugin never stalls the pipeline.
func (a *App) executeAction(sessionID, label, text string) {
	st := a.config.Store
	if st == nil {
		return
	}

	b, err := st.Bindings().GetByLabel(label)
	if err != nil {
		log.Printf("look up binding for %q: %v", label, err)
		return
	}
	if b == nil || !b.Enabled {
		return
	}

	result := &ActionResult{Label: label, Plugin: b.PluginName, Action: b.ActionName}

	p, err := a.pluginMgr.Resolve(b.PluginName, b.ActionName)
	if err != nil {
		result.Error = err.Error()
		log.Printf("binding %s for %q: %v", b.ID, label, err)
		a.publish(Event{Type: EventAction, SessionID: sessionID, Timestamp: time.Now(), Action: result, Text: text})
		return
	}

	req := &plugin.Request{
		Action: b.ActionName,
		Sign:   label,
		Text:   text,
		Config: b.Config,
	}

	a.actions.Add(1)
	go func() {
		defer a.actions.Done()

		resp, err := a.pluginExec.Execute(a.ctx, p, req)
		switch {
		case err != nil:
			result.Error = err.Error()
		case !resp.Success:
			result.Error = resp.Error
		default:
			result.Success = true
		}
		if !result.Success {
			log.Printf("plugin %s %s for %q failed: %s", b.PluginName, b.ActionName, label, result.Error)
		}

		a.publish(Event{Type: EventAction, SessionID: sessionID, Timestamp: time.Now(), Action: result, Text: text})
	}()
}
