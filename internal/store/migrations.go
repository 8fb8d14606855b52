package store

func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per frame stream (camera run or API session).
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL CHECK(source IN ('camera', 'api')),
			threshold INTEGER NOT NULL DEFAULT 3,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Stable gesture changes emitted by a session's tracker.
		`CREATE TABLE IF NOT EXISTS gesture_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			gesture TEXT NOT NULL,
			previous TEXT NOT NULL DEFAULT 'none',
			confidence REAL NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_gesture_events_session_id ON gesture_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_gesture_events_gesture ON gesture_events(gesture)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
