package app

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/session"
	"github.com/ayusman/unmute/internal/store"
	"github.com/ayusman/unmute/testdata"
)

var start = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a := New(cfg)
	t.Cleanup(func() { a.Close() })
	return a
}

// play feeds a recorded sequence through Process and returns every update.
func play(t *testing.T, a *App, name string) []session.Update {
	t.Helper()

	seq, err := testdata.LoadSequence(name)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := seq.Frames(start)
	if err != nil {
		t.Fatal(err)
	}

	var all []session.Update
	for _, fr := range frames {
		obs := Observation{Timestamp: fr.At}
		if fr.Hand != nil {
			obs.Hands = []detector.Hand{*fr.Hand}
		}
		all = append(all, a.Process(obs)...)
	}
	return all
}

func confirmed(updates []session.Update) []string {
	var out []string
	for _, u := range updates {
		if u.Confirmed != "" {
			out = append(out, u.Confirmed)
		}
	}
	return out
}

func TestApp_SequenceBuildsSentence(t *testing.T) {
	st := newTestStore(t)
	a := newTestApp(t, Config{Store: st})

	updates := play(t, a, "i_hello")

	if got := confirmed(updates); len(got) != 2 || got[0] != "I" || got[1] != "Hello" {
		t.Fatalf("confirmed = %v, want [I Hello]", got)
	}
	if got := a.Session().Text(); got != "I Hello" {
		t.Errorf("Text() = %q, want %q", got, "I Hello")
	}

	id := a.Session().ID()
	events, err := st.Events().ListBySession(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("stored %d events, want 2: %+v", len(events), events)
	}
	if events[0].Label != "I" || events[0].Kind != "letter" || events[1].Kind != "word" {
		t.Errorf("events = %+v", events)
	}
	sess, err := st.Sessions().GetByID(id)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Text != "I Hello" {
		t.Errorf("stored text = %q", sess.Text)
	}
}

func TestApp_MissingHandResetsHold(t *testing.T) {
	a := newTestApp(t, Config{})

	for _, at := range []int{0, 900} {
		hand := detector.HandOf(testdata.MustPose("i"), nil)
		a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start.Add(time.Duration(at) * time.Millisecond)})
	}
	// The hand leaves: the slot is fed "none".
	updates := a.Process(Observation{Timestamp: start.Add(950 * time.Millisecond)})
	if len(updates) != 1 || updates[0].Slot != detector.HandRight || updates[0].Result != nil {
		t.Fatalf("updates = %+v, want a none update for the right slot", updates)
	}

	hand := detector.HandOf(testdata.MustPose("i"), nil)
	u := a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start.Add(1000 * time.Millisecond)})
	if len(u) != 1 || u[0].Confirmed != "" || u[0].SentenceProgress != 0 {
		t.Errorf("hold survived a missing hand: %+v", u)
	}
}

func TestApp_FlickerNeverConfirms(t *testing.T) {
	a := newTestApp(t, Config{})

	updates := play(t, a, "flicker")
	if got := confirmed(updates); len(got) != 0 {
		t.Errorf("confirmed = %v, want nothing", got)
	}
	for _, u := range updates {
		if u.Slot != detector.HandLeft {
			t.Errorf("update for slot %q, want Left", u.Slot)
		}
	}
}

func TestApp_DuplicateSlotFirstWins(t *testing.T) {
	a := newTestApp(t, Config{})

	first := detector.HandOf(testdata.MustPose("fist"), nil)
	second := detector.HandOf(testdata.MustPose("open_palm"), nil)
	updates := a.Process(Observation{Hands: []detector.Hand{first, second}, Timestamp: start})

	if len(updates) != 1 || updates[0].Result == nil || updates[0].Result.Label != "Yes" {
		t.Errorf("updates = %+v, want one Yes", updates)
	}
}

func TestApp_TriggerRunsBoundPlugin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	pluginDir := t.TempDir()
	dir := filepath.Join(pluginDir, "recorder")
	os.MkdirAll(dir, 0755)
	out := filepath.Join(t.TempDir(), "request.json")
	script := "#!/bin/sh\ncat > " + out + "\necho '{\"success\":true}'\n"
	os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755)
	os.WriteFile(filepath.Join(dir, "plugin.json"),
		[]byte(`{"name":"recorder","executable":"run.sh","actions":["record"]}`), 0644)

	st := newTestStore(t)
	if err := st.Bindings().Create(&store.Binding{
		ID: "b-1", Label: "Yes", PluginName: "recorder", ActionName: "record", Enabled: true,
	}); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, Config{Store: st, PluginDir: pluginDir})
	if err := a.DiscoverPlugins(); err != nil {
		t.Fatal(err)
	}
	events, unsubscribe := a.Subscribe()
	defer unsubscribe()

	updates := play(t, a, "fist_hold")

	var triggered int
	for _, u := range updates {
		if u.Triggered == "Yes" {
			triggered++
		}
	}
	if triggered != 1 {
		t.Fatalf("triggered %d times, want 1", triggered)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != EventAction {
				continue
			}
			if !ev.Action.Success {
				t.Fatalf("action failed: %+v", ev.Action)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if len(data) == 0 {
				t.Error("plugin received an empty request")
			}
			return
		case <-timeout:
			t.Fatal("no action event")
		}
	}
}

func TestApp_UnsupportedActionReported(t *testing.T) {
	pluginDir := t.TempDir()
	dir := filepath.Join(pluginDir, "keyboard")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "plugin.json"),
		[]byte(`{"name":"keyboard","executable":"keyboard","actions":["type"]}`), 0644)

	st := newTestStore(t)
	st.Bindings().Create(&store.Binding{
		ID: "b-1", Label: "Yes", PluginName: "keyboard", ActionName: "explode", Enabled: true,
	})

	a := newTestApp(t, Config{Store: st, PluginDir: pluginDir})
	a.DiscoverPlugins()
	events, unsubscribe := a.Subscribe()
	defer unsubscribe()

	play(t, a, "fist_hold")

	for {
		select {
		case ev := <-events:
			if ev.Type == EventAction {
				if ev.Action.Success || ev.Action.Error == "" {
					t.Errorf("action = %+v, want an error", ev.Action)
				}
				return
			}
		default:
			t.Fatal("no action event published")
		}
	}
}

func TestApp_SubmitDropsStale(t *testing.T) {
	a := newTestApp(t, Config{})
	events, unsubscribe := a.Subscribe()
	defer unsubscribe()

	stale := Observation{Timestamp: start}
	fresh := Observation{Timestamp: start.Add(time.Second)}

	if !a.Submit(stale) {
		t.Error("first Submit() should not drop anything")
	}
	if a.Submit(fresh) {
		t.Error("second Submit() should report a dropped observation")
	}

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()

	select {
	case ev := <-events:
		if !ev.Timestamp.Equal(fresh.Timestamp) {
			t.Errorf("processed observation at %v, want the fresh one", ev.Timestamp)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not process the queued observation")
	}
}

func TestApp_StartStop(t *testing.T) {
	a := newTestApp(t, Config{})

	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	a.Stop()
	a.Stop()
}

func TestApp_Disabled(t *testing.T) {
	a := newTestApp(t, Config{})
	hand := detector.HandOf(testdata.MustPose("fist"), nil)

	a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start})
	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Fatal("IsEnabled() = true after disabling")
	}
	if u := a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start.Add(time.Second)}); u != nil {
		t.Errorf("disabled app processed an observation: %+v", u)
	}

	a.SetEnabled(true)
	u := a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start.Add(1100 * time.Millisecond)})
	if len(u) != 1 || u[0].Confirmed != "" {
		t.Errorf("hold should restart after re-enabling: %+v", u)
	}
}

func TestApp_ManualEntryClearRestart(t *testing.T) {
	st := newTestStore(t)
	a := newTestApp(t, Config{Store: st})
	id := a.Session().ID()

	if kind, text := a.Enter("Hello"); kind != session.KindWord || text != "Hello" {
		t.Errorf("Enter() = %s, %q", kind, text)
	}
	events, _ := st.Events().ListBySession(id)
	if len(events) != 1 || events[0].Kind != "manual" {
		t.Errorf("events = %+v, want one manual entry", events)
	}

	a.Clear()
	if a.Session().Text() != "" {
		t.Error("Clear() left text behind")
	}
	if events, _ := st.Events().ListBySession(id); len(events) != 0 {
		t.Errorf("Clear() left %d events", len(events))
	}

	a.Enter("A")
	snap := a.Restart()
	if snap.ID == id || snap.Text != "" {
		t.Errorf("Restart() = %+v", snap)
	}
	if _, err := st.Sessions().GetByID(snap.ID); err != nil {
		t.Errorf("new session not stored: %v", err)
	}
	old, err := st.Sessions().GetByID(id)
	if err != nil || old.Text != "A" {
		t.Errorf("old session = %+v, %v; want text A kept", old, err)
	}
}

func TestApp_ManualEntryDuringPipeline(t *testing.T) {
	st := newTestStore(t)
	a := newTestApp(t, Config{
		Store:   st,
		Session: session.Config{SentenceHold: time.Nanosecond, TriggerHold: time.Hour, Cooldown: time.Second},
	})
	id := a.Session().ID()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		at := 0
		for i := 0; i < 25; i++ {
			for _, pose := range []string{"i", "l"} {
				for range 2 {
					hand := detector.HandOf(testdata.MustPose(pose), nil)
					a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start.Add(time.Duration(at) * time.Millisecond)})
					at++
				}
			}
		}
	}()
	for i := 0; i < 50; i++ {
		a.Enter("Hello")
	}
	wg.Wait()

	sess, err := st.Sessions().GetByID(id)
	if err != nil {
		t.Fatal(err)
	}
	if want := a.Session().Text(); sess.Text != want {
		t.Errorf("stored text = %q, want %q", sess.Text, want)
	}
	if events, _ := st.Events().ListBySession(id); len(events) != 100 {
		t.Errorf("stored %d events, want 100", len(events))
	}
}

func TestApp_UnknownHandednessSharesSlot(t *testing.T) {
	a := newTestApp(t, Config{})

	for i, handedness := range []string{"Bogus", "Other", "", "right"} {
		hand := detector.HandOf(testdata.MustPose("fist"), nil)
		hand.Image.Handedness = handedness
		updates := a.Process(Observation{Hands: []detector.Hand{hand}, Timestamp: start.Add(time.Duration(i) * time.Millisecond)})
		if len(updates) != 1 || updates[0].Slot != "" {
			t.Errorf("handedness %q: updates = %+v, want one update for slot \"\"", handedness, updates)
		}
	}
	if got := a.Session().Slots(); !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("Slots() = %v, want only the unknown slot", got)
	}
}

func TestApp_RestartAndCloseSaveText(t *testing.T) {
	st := newTestStore(t)
	a := New(Config{Store: st})
	first := a.Session().ID()

	// Changes made on the session directly only reach the store on a flush.
	a.Session().Enter("A")
	snap := a.Restart()
	if sess, err := st.Sessions().GetByID(first); err != nil || sess.Text != "A" {
		t.Errorf("first session = %+v, %v; want text A", sess, err)
	}

	a.Session().Enter("B")
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if sess, err := st.Sessions().GetByID(snap.ID); err != nil || sess.Text != "B" {
		t.Errorf("second session = %+v, %v; want text B", sess, err)
	}
}

func TestApp_DetectImageWithoutDetector(t *testing.T) {
	a := newTestApp(t, Config{})
	if _, err := a.DetectImage(nil); !errors.Is(err, ErrNoDetector) {
		t.Errorf("DetectImage() error = %v, want ErrNoDetector", err)
	}
}

func TestApp_Unsubscribe(t *testing.T) {
	a := newTestApp(t, Config{})
	events, unsubscribe := a.Subscribe()
	unsubscribe()
	unsubscribe()

	a.Process(Observation{Timestamp: start})
	if _, ok := <-events; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}
