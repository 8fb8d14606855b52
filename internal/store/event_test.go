package store

import (
	"testing"
)

func seedSession(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.Sessions().Create(&Session{ID: id, Source: SourceAPI, Threshold: 3}); err != nil {
		t.Fatalf("failed to create session %s: %v", id, err)
	}
}

func TestEventRepository_Create(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "s1")

	e := &Event{SessionID: "s1", Gesture: "peace", Confidence: 0.85, Handedness: "Left"}
	if err := s.Events().Create(e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if e.Previous != "none" {
		t.Errorf("Previous = %q, want none", e.Previous)
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestEventRepository_RequiresSession(t *testing.T) {
	s := newTestStore(t)

	err := s.Events().Create(&Event{SessionID: "ghost", Gesture: "fist", Confidence: 0.9})
	if err == nil {
		t.Error("expected foreign key violation for unknown session")
	}
}

func TestEventRepository_ListBySession(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "s1")
	seedSession(t, s, "s2")
	repo := s.Events()

	for _, g := range []string{"fist", "point", "none"} {
		if err := repo.Create(&Event{SessionID: "s1", Gesture: g, Confidence: 0.9}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(&Event{SessionID: "s2", Gesture: "peace", Confidence: 0.85}); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := repo.ListBySession("s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []string{"fist", "point", "none"}
	for i, e := range events {
		if e.Gesture != want[i] {
			t.Errorf("event %d = %s, want %s", i, e.Gesture, want[i])
		}
		if e.SessionID != "s1" {
			t.Errorf("event %d belongs to %s", i, e.SessionID)
		}
	}
}

func TestEventRepository_ListLimit(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "s1")
	repo := s.Events()

	for _, g := range []string{"fist", "point", "peace", "thumbs_up"} {
		if err := repo.Create(&Event{SessionID: "s1", Gesture: g, Confidence: 0.85}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	recent, err := repo.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 || recent[0].Gesture != "thumbs_up" || recent[1].Gesture != "peace" {
		t.Errorf("unexpected recent events: %+v", recent)
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 events, got %d", len(all))
	}
}

func TestEventRepository_CountByGesture(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "s1")
	seedSession(t, s, "s2")
	repo := s.Events()

	seed := []struct{ session, gesture string }{
		{"s1", "fist"}, {"s1", "fist"}, {"s1", "point"},
		{"s2", "fist"}, {"s2", "peace"}, {"s2", "peace"}, {"s2", "peace"},
	}
	for _, e := range seed {
		if err := repo.Create(&Event{SessionID: e.session, Gesture: e.gesture, Confidence: 0.9}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	t.Run("all sessions", func(t *testing.T) {
		counts, err := repo.CountByGesture("")
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		want := []GestureCount{{"fist", 3}, {"peace", 3}, {"point", 1}}
		if len(counts) != len(want) {
			t.Fatalf("got %+v, want %+v", counts, want)
		}
		for i := range want {
			if counts[i] != want[i] {
				t.Errorf("count %d = %+v, want %+v", i, counts[i], want[i])
			}
		}
	})

	t.Run("single session", func(t *testing.T) {
		counts, err := repo.CountByGesture("s1")
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if len(counts) != 2 || counts[0] != (GestureCount{"fist", 2}) {
			t.Errorf("unexpected counts: %+v", counts)
		}
	})
}
