package store

import (
	"database/sql"
	"time"
)

// Event is a stable gesture change recorded for a session.
type Event struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Gesture    string    `json:"gesture"`
	Previous   string    `json:"previous"`
	Confidence float64   `json:"confidence"`
	Handedness string    `json:"handedness,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GestureCount is the number of events recorded for one gesture.
type GestureCount struct {
	Gesture string `json:"gesture"`
	Count   int    `json:"count"`
}

// EventRepository provides access to gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts an event and fills in its ID.
func (r *EventRepository) Create(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	if e.Previous == "" {
		e.Previous = "none"
	}

	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, gesture, previous, confidence, handedness, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Gesture, e.Previous, e.Confidence, e.Handedness, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

const eventColumns = `id, session_id, gesture, previous, confidence, handedness, created_at`

// ListBySession returns a session's events in the order they were recorded.
func (r *EventRepository) ListBySession(sessionID string) ([]*Event, error) {
	return r.query(
		`SELECT `+eventColumns+` FROM gesture_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
}

// List returns the most recent events across sessions, newest first.
// A non-positive limit returns every event.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(
		`SELECT `+eventColumns+` FROM gesture_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

// CountByGesture returns how often each gesture was recorded, most frequent first.
// An empty sessionID counts across all sessions.
func (r *EventRepository) CountByGesture(sessionID string) ([]GestureCount, error) {
	rows, err := r.db.Query(
		`SELECT gesture, COUNT(*) FROM gesture_events
		 WHERE ? = '' OR session_id = ?
		 GROUP BY gesture ORDER BY COUNT(*) DESC, gesture`,
		sessionID, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []GestureCount
	for rows.Next() {
		var c GestureCount
		if err := rows.Scan(&c.Gesture, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *EventRepository) query(q string, args ...any) ([]*Event, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		err := rows.Scan(&e.ID, &e.SessionID, &e.Gesture, &e.Previous, &e.Confidence, &e.Handedness, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
