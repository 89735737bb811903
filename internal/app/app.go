// Package app wires the classifier, the session and the side effects
// (persistence, plugin actions, subscribers) into a single observation
// pipeline.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/plugin"
	"github.com/ayusman/unmute/internal/session"
	"github.com/ayusman/unmute/internal/sign"
	"github.com/ayusman/unmute/internal/store"
)

// DefaultPluginTimeout bounds a single plugin execution.
const DefaultPluginTimeout = 5 * time.Second

// subscriberBuffer is the number of events a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 64

// ErrNoDetector is returned by DetectImage when no detector is configured.
var ErrNoDetector = errors.New("no hand detector configured")

// Config holds configuration options for the application.
type Config struct {
	// Store persists sessions, events and bindings. Optional.
	Store *store.Store

	PluginDir     string
	PluginTimeout time.Duration

	Session session.Config
	Sign    sign.Options

	// Detector is used for host-supplied images. When nil and
	// UseMediaPipe is set, the MediaPipe service is tried first.
	Detector       detector.Detector
	UseMediaPipe   bool
	DetectorConfig detector.Config
}

// Observation is one set of hands seen at one instant.
type Observation struct {
	Hands     []detector.Hand `json:"hands"`
	Timestamp time.Time       `json:"timestamp"`
}

// App owns the pipeline state. Observations are processed one at a time,
// either by the Start goroutine or by direct calls to Process.
type App struct {
	config     Config
	classifier *sign.Classifier
	session    *session.Session
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu       sync.RWMutex
	detector detector.Detector
	enabled  bool
	stopCh   chan struct{}
	doneCh   chan struct{}

	// procMu serialises every change to the session and its stored copy.
	procMu sync.Mutex
	queue  chan Observation

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	actions sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.PluginTimeout <= 0 {
		config.PluginTimeout = DefaultPluginTimeout
	}
	if config.Session == (session.Config{}) {
		config.Session = session.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:      config,
		classifier:  sign.New(config.Sign),
		session:     session.New(config.Session),
		pluginMgr:   plugin.NewManager(config.PluginDir),
		pluginExec:  plugin.NewExecutor(config.PluginTimeout),
		detector:    config.Detector,
		enabled:     true,
		queue:       make(chan Observation, 1),
		subscribers: make(map[chan Event]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}

	if a.detector == nil && config.UseMediaPipe {
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			a.detector = mp
			log.Println("using mediapipe hand detection")
		} else {
			log.Printf("mediapipe not available (%v), image detection disabled", err)
		}
	}

	a.persistSession(a.session.Snapshot())
	return a
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// SetEnabled pauses or resumes tracking. Pausing resets every hold, as when
// the hands leave the frame.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if was && !enabled {
		a.session.Stop()
	}
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector, or nil.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// DetectImage runs the configured detector on a host-supplied image.
func (a *App) DetectImage(img *gocv.Mat) ([]detector.Hand, error) {
	d := a.Detector()
	if d == nil {
		return nil, ErrNoDetector
	}
	return d.Detect(img)
}

// Classifier returns the sign classifier.
func (a *App) Classifier() *sign.Classifier {
	return a.classifier
}

// Session returns the live session.
func (a *App) Session() *session.Session {
	return a.session
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Store returns the configured store, or nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Submit hands an observation to the pipeline goroutine. The queue holds one
// observation; a pending one that has not been picked up yet is replaced.
// It returns false when a stale observation was dropped.
func (a *App) Submit(obs Observation) bool {
	select {
	case a.queue <- obs:
		return true
	default:
	}

	select {
	case <-a.queue:
	default:
	}
	select {
	case a.queue <- obs:
	default:
		// Another producer refilled the slot first; theirs is as fresh.
	}
	return false
}

// Start launches the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("sign pipeline started")
	return nil
}

// Stop halts the pipeline goroutine and waits for it to exit. Holds in
// progress are reset.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	a.session.Stop()
	log.Println("sign pipeline stopped")
}

// Close stops the pipeline, cancels running plugin actions, waits for them
// saves the sentence and closes the detector.
func (a *App) Close() error {
	a.Stop()
	a.cancel()
	a.actions.Wait()

	a.procMu.Lock()
	a.flushText()
	a.procMu.Unlock()

	if d := a.Detector(); d != nil {
		return d.Close()
	}
	return nil
}

// Subscribe registers for pipeline events. The returned function
// unsubscribes and closes the channel. Events are dropped for subscribers
// that fall behind.
func (a *App) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	a.subMu.Lock()
	a.subscribers[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subscribers, ch)
			a.subMu.Unlock()
			close(ch)
		})
	}
}

func (a *App) publish(ev Event) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for ch := range a.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
