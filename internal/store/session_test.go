package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "sess-1", Source: SourceCamera, Threshold: 3}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set on create")
	}

	got, err := repo.GetByID("sess-1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Source != SourceCamera || got.Threshold != 3 {
		t.Errorf("unexpected session: %+v", got)
	}
	if !got.StartedAt.Equal(sess.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, sess.StartedAt)
	}
	if !got.Active() {
		t.Error("new session should be active")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_RejectsUnknownSource(t *testing.T) {
	s := newTestStore(t)

	if err := s.Sessions().Create(&Session{ID: "x", Source: "serial"}); err == nil {
		t.Error("expected constraint error for unknown source")
	}
}

func TestSessionRepository_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "dup", Source: SourceAPI}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.Create(&Session{ID: "dup", Source: SourceAPI}); err == nil {
		t.Error("expected error on duplicate id")
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sess := &Session{ID: id, Source: SourceAPI, Threshold: 3, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(sess); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(list))
	}
	if list[0].ID != "c" || list[2].ID != "a" {
		t.Errorf("expected newest first, got %s..%s", list[0].ID, list[2].ID)
	}
}

func TestSessionRepository_List_Empty(t *testing.T) {
	s := newTestStore(t)

	list, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no sessions, got %d", len(list))
	}
}

func TestSessionRepository_End(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "e", Source: SourceAPI}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.End("e"); err != nil {
		t.Fatalf("end: %v", err)
	}

	got, err := repo.GetByID("e")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Active() {
		t.Fatal("session should be ended")
	}
	first := *got.EndedAt

	time.Sleep(5 * time.Millisecond)
	if err := repo.End("e"); err != nil {
		t.Fatalf("second end: %v", err)
	}
	got, _ = repo.GetByID("e")
	if !got.EndedAt.Equal(first) {
		t.Errorf("ending twice moved end time from %v to %v", first, *got.EndedAt)
	}

	if err := repo.End("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)

	if err := s.Sessions().Create(&Session{ID: "d", Source: SourceAPI}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Events().Create(&Event{SessionID: "d", Gesture: "fist", Confidence: 0.9}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := s.Sessions().Delete("d"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events, err := s.Events().ListBySession("d")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected events to be deleted with session, got %d", len(events))
	}

	if err := s.Sessions().Delete("d"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
