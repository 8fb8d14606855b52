// Package app wires camera capture, hand detection and gesture tracking together.
package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// ErrNoDetector is returned by ProcessFrame when no detector is set.
var ErrNoDetector = errors.New("no hand detector configured")

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is still.
	IdleFPS = 5
	// ActiveFPS is the frame rate while motion is seen.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// DefaultJPEGQuality is used for the annotated stream.
	DefaultJPEGQuality = 80
)

// Config holds the App's collaborators. Store, Dispatcher and Metrics are optional.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Store      *store.Store
	Dispatcher *plugin.Dispatcher
	Metrics    *metrics.Metrics

	Threshold       int
	MotionThreshold float64
	JPEGQuality     int
	Style           overlay.Style
}

// Result is published to listeners after every processed frame.
type Result struct {
	SessionID string          `json:"session_id"`
	Timestamp time.Time       `json:"timestamp"`
	Hands     []gesture.State `json:"hands"`
}

// Listener receives pipeline results. Listeners run on the pipeline goroutine
// and must not block.
type Listener func(Result)

// App owns the camera pipeline and the bookkeeping shared with API sessions.
type App struct {
	config Config
	camera capture.Camera
	motion *capture.MotionGate

	mu        sync.RWMutex
	detector  detector.Detector
	enabled   bool
	stopCh    chan struct{}
	done      chan struct{}
	sessionID string
	listeners []Listener

	// trackers and latest are owned by the frame loop; procMu guards them
	// against readers on other goroutines.
	procMu   sync.Mutex
	trackers map[string]*gesture.Tracker
	latest   []byte

	apiSessions atomic.Int64
}

// New creates an App. Missing Threshold, MotionThreshold and JPEGQuality take defaults.
func New(config Config) *App {
	if config.Threshold <= 0 {
		config.Threshold = gesture.DefaultStabilityThreshold
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = 1.0
	}
	if config.JPEGQuality <= 0 {
		config.JPEGQuality = DefaultJPEGQuality
	}
	if config.Style == (overlay.Style{}) {
		config.Style = overlay.DefaultStyle()
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		motion:   capture.NewMotionGate(config.MotionThreshold, 0),
		detector: config.Detector,
		enabled:  true,
		trackers: map[string]*gesture.Tracker{
			detector.HandLeft:  gesture.NewTracker(config.Threshold),
			detector.HandRight: gesture.NewTracker(config.Threshold),
		},
	}
	return a
}

// SetEnabled pauses or resumes frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()
	logger.S().Infof("Gesture detection enabled=%v", enabled)
}

// IsEnabled reports whether frame processing is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector swaps the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// AddListener registers fn for every Result.
func (a *App) AddListener(fn Listener) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

// Running reports whether the camera pipeline is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// SessionID is the store session of the current camera run, or "" when stopped.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// Start opens the camera, records a camera session and starts the frame loop.
// Starting a running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if a.camera == nil {
		return capture.ErrCameraNotOpen
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.sessionID = uuid.New().String()
	if a.config.Store != nil {
		sess := &store.Session{ID: a.sessionID, Source: store.SourceCamera, Threshold: a.config.Threshold}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			logger.S().Errorf("Failed to record camera session: %v", err)
		}
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	logger.S().Infof("Detection pipeline started (session %s)", a.sessionID)
	return nil
}

// Stop halts the frame loop, closes the camera and ends the camera session.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done, sessionID := a.stopCh, a.done, a.sessionID
	a.stopCh, a.done, a.sessionID = nil, nil, ""
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		logger.S().Errorf("Error closing camera: %v", err)
	}
	a.motion.Reset()
	a.resetTrackers()

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().End(sessionID); err != nil {
			logger.S().Errorf("Failed to end camera session: %v", err)
		}
	}

	logger.S().Info("Detection pipeline stopped")
}

// Close stops the pipeline and releases the detector and motion gate.
func (a *App) Close() {
	a.Stop()
	a.motion.Close()
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			logger.S().Errorf("Error closing detector: %v", err)
		}
	}
}

// LatestJPEG returns the most recent annotated frame.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.latest, a.latest != nil
}

// Current returns the tracker state of each hand, Left first.
func (a *App) Current() []gesture.State {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return []gesture.State{
		a.trackers[detector.HandLeft].Current(),
		a.trackers[detector.HandRight].Current(),
	}
}

func (a *App) resetTrackers() {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	for _, t := range a.trackers {
		t.Reset()
	}
}

// SessionHooks returns registry hooks that persist API sessions and their
// stable gesture changes the same way camera runs are recorded.
func (a *App) SessionHooks() session.Hooks {
	return session.Hooks{
		OnCreate: func(s session.Snapshot) {
			a.config.Metrics.SetActiveSessions(int(a.apiSessions.Add(1)))
			if a.config.Store == nil {
				return
			}
			sess := &store.Session{ID: s.ID, Source: store.SourceAPI, Threshold: s.Threshold, StartedAt: s.CreatedAt.UTC()}
			if err := a.config.Store.Sessions().Create(sess); err != nil {
				logger.S().Errorf("Failed to record session %s: %v", s.ID, err)
			}
		},
		OnFrame: func(c session.Change) {
			if c.State.HasHand {
				a.config.Metrics.ObserveFrame(string(c.State.Raw.Gesture))
			}
		},
		OnChange: func(c session.Change) {
			a.recordChange(c.SessionID, c.State)
		},
		OnClose: func(id string) {
			a.config.Metrics.SetActiveSessions(int(a.apiSessions.Add(-1)))
			if a.config.Store == nil {
				return
			}
			if err := a.config.Store.Sessions().End(id); err != nil {
				logger.S().Errorf("Failed to end session %s: %v", id, err)
			}
		},
	}
}

// recordChange persists a stable gesture change, counts it and notifies plugins.
func (a *App) recordChange(sessionID string, st gesture.State) {
	logger.S().Infof("Gesture %s -> %s (%s, %.2f)", st.Previous, st.Gesture, st.Handedness, st.Confidence)
	a.config.Metrics.ObserveStable(string(st.Gesture))

	if a.config.Store != nil && sessionID != "" {
		event := &store.Event{
			SessionID:  sessionID,
			Gesture:    string(st.Gesture),
			Previous:   string(st.Previous),
			Confidence: st.Confidence,
			Handedness: st.Handedness,
		}
		if err := a.config.Store.Events().Create(event); err != nil {
			logger.S().Errorf("Failed to record gesture event: %v", err)
		}
	}

	if a.config.Dispatcher != nil && st.Gesture != gesture.None {
		a.config.Dispatcher.Submit(plugin.Request{
			Gesture:    string(st.Gesture),
			Previous:   string(st.Previous),
			Confidence: st.Confidence,
			Handedness: st.Handedness,
			Session:    sessionID,
		})
	}
}
