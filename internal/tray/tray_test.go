package tray

import (
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		states []gesture.State
		want   string
	}{
		{"no states", nil, "No gesture detected"},
		{"no stable gesture", []gesture.State{{Gesture: gesture.None, HasHand: true}}, "No gesture detected"},
		{
			"one hand",
			[]gesture.State{
				{Gesture: gesture.None, Handedness: "Left"},
				{Gesture: gesture.Peace, Confidence: 0.85, Handedness: "Right"},
			},
			"Right: Peace - Rainbow Wave (85%)",
		},
		{
			"both hands",
			[]gesture.State{
				{Gesture: gesture.Fist, Confidence: 0.9, Handedness: "Left"},
				{Gesture: gesture.ThumbsUp, Confidence: 0.85, Handedness: "Right"},
			},
			"Left: Fist - Pulsing Sphere (90%), Right: Thumbs Up - Fireworks (85%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.states); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTray_SetGestures(t *testing.T) {
	tr := New()
	if tr.Current() != "No gesture detected" {
		t.Errorf("unexpected initial text %q", tr.Current())
	}
	if !tr.IsEnabled() {
		t.Error("expected tray to start enabled")
	}

	tr.SetGestures([]gesture.State{{Gesture: gesture.Point, Confidence: 0.85}})
	if tr.Current() != "Point - Laser Beam (85%)" {
		t.Errorf("unexpected text %q", tr.Current())
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("unexpected toggle callbacks %v", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected tray enabled after two toggles")
	}
}
