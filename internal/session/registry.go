// Package session keeps one gesture tracker per remote frame stream.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
)

var (
	// ErrNotFound is returned for unknown or closed session ids.
	ErrNotFound = errors.New("session not found")
	// ErrOutOfOrder is returned when a frame is older than the last accepted one.
	ErrOutOfOrder = errors.New("frame timestamp is older than the last accepted frame")
)

// DefaultIdleTimeout is used when Options.IdleTimeout is zero.
const DefaultIdleTimeout = 5 * time.Minute

// Frame is one observation submitted to a session.
type Frame struct {
	// TimestampMs orders frames within a session. Zero skips the ordering check.
	TimestampMs int64                   `json:"timestamp_ms"`
	Hand        *detector.HandLandmarks `json:"hand,omitempty"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID        string        `json:"id"`
	Threshold int           `json:"threshold"`
	CreatedAt time.Time     `json:"created_at"`
	LastSeen  time.Time     `json:"last_seen"`
	Frames    int64         `json:"frames"`
	State     gesture.State `json:"state"`
}

// Change is delivered to Hooks.OnFrame for every frame and to Hooks.OnChange
// when the stable gesture changes.
type Change struct {
	SessionID string
	State     gesture.State
}

// Hooks observe session lifecycle events. Any hook may be nil.
// OnFrame and OnChange run while the session is locked and must not call back
// into the Registry. OnClose never runs before an in-flight OnFrame or
// OnChange for the same session has returned.
type Hooks struct {
	OnCreate func(Snapshot)
	OnFrame  func(Change)
	OnChange func(Change)
	OnClose  func(id string)
}

// Options configure a Registry.
type Options struct {
	IdleTimeout time.Duration
	Hooks       Hooks
}

type session struct {
	mu sync.Mutex

	id            string
	createdAt     time.Time
	lastSeen      time.Time
	lastTimestamp int64
	frames        int64
	tracker       *gesture.Tracker
	closed        bool
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.id,
		Threshold: s.tracker.Threshold(),
		CreatedAt: s.createdAt,
		LastSeen:  s.lastSeen,
		Frames:    s.frames,
		State:     s.tracker.Current(),
	}
}

// Registry owns the set of open sessions. It is safe for concurrent use; each
// session's tracker is only ever touched under that session's lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session

	idleTimeout time.Duration
	hooks       Hooks
	now         func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts Options) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		sessions:    make(map[string]*session),
		idleTimeout: opts.IdleTimeout,
		hooks:       opts.Hooks,
		now:         time.Now,
	}
}

// Create opens a session whose tracker uses threshold. A non-positive
// threshold selects gesture.DefaultStabilityThreshold.
func (r *Registry) Create(threshold int) Snapshot {
	now := r.now()
	s := &session{
		id:        uuid.New().String(),
		createdAt: now,
		lastSeen:  now,
		tracker:   gesture.NewTracker(threshold),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	snap := s.snapshot()
	logger.S().Infof("Session %s opened (threshold %d)", snap.ID, snap.Threshold)
	if r.hooks.OnCreate != nil {
		r.hooks.OnCreate(snap)
	}
	return snap
}

func (r *Registry) lookup(id string) (*session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Get returns a snapshot of the session.
func (r *Registry) Get(id string) (Snapshot, error) {
	s, err := r.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Feed runs one frame through the session's tracker and returns the new state.
func (r *Registry) Feed(id string, frame Frame) (gesture.State, error) {
	s, err := r.lookup(id)
	if err != nil {
		return gesture.State{}, err
	}
	return r.feed(s, frame)
}

func (r *Registry) feed(s *session, frame Frame) (gesture.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Closed between lookup and lock.
	if s.closed {
		return gesture.State{}, ErrNotFound
	}

	if frame.TimestampMs != 0 {
		if frame.TimestampMs < s.lastTimestamp {
			return gesture.State{}, ErrOutOfOrder
		}
		s.lastTimestamp = frame.TimestampMs
	}

	state := s.tracker.Update(frame.Hand)
	s.frames++
	s.lastSeen = r.now()

	if r.hooks.OnFrame != nil {
		r.hooks.OnFrame(Change{SessionID: s.id, State: state})
	}
	if state.Changed && r.hooks.OnChange != nil {
		r.hooks.OnChange(Change{SessionID: s.id, State: state})
	}
	return state, nil
}

// Reset clears the session's tracker and ordering state.
func (r *Registry) Reset(id string) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.tracker.Reset()
	s.lastTimestamp = 0
	s.lastSeen = r.now()
	s.mu.Unlock()
	return nil
}

// Close removes the session.
func (r *Registry) Close(id string) error {
	if !r.remove(id, time.Time{}) {
		return ErrNotFound
	}
	return nil
}

// remove deletes the session and marks it closed so that callers still
// holding it see ErrNotFound. With a non-zero cutoff the session is only
// removed if it has been idle since cutoff. OnClose runs after any in-flight
// Feed on the session has finished its hooks.
func (r *Registry) remove(id string, cutoff time.Time) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	s.mu.Lock()
	if !cutoff.IsZero() && !s.lastSeen.Before(cutoff) {
		s.mu.Unlock()
		r.mu.Unlock()
		return false
	}
	s.closed = true
	s.mu.Unlock()
	delete(r.sessions, id)
	r.mu.Unlock()

	logger.S().Infof("Session %s closed", id)
	if r.hooks.OnClose != nil {
		r.hooks.OnClose(id)
	}
	return true
}

// List returns snapshots of all open sessions, oldest first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	sessions := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		out = append(out, s.snapshot())
		s.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap closes sessions that have not received a frame since now minus the
// idle timeout and returns their ids.
func (r *Registry) Reap(now time.Time) []string {
	cutoff := now.Add(-r.idleTimeout)

	var expired []string
	r.mu.RLock()
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	reaped := expired[:0]
	for _, id := range expired {
		if r.remove(id, cutoff) {
			reaped = append(reaped, id)
		}
	}
	if len(reaped) > 0 {
		logger.S().Infof("Reaped %d idle sessions", len(reaped))
	}
	return reaped
}

// Run reaps idle sessions every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.idleTimeout / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Reap(now)
		}
	}
}
