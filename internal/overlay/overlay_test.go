package overlay

import (
	"image"
	"sync"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestConnections(t *testing.T) {
	if len(Connections) != 23 {
		t.Fatalf("expected 23 connections, got %d", len(Connections))
	}
	for _, c := range Connections {
		for _, idx := range c {
			if idx < 0 || idx >= detector.NumLandmarks {
				t.Errorf("connection %v references landmark out of range", c)
			}
		}
	}
}

func TestToPixel(t *testing.T) {
	tests := []struct {
		name   string
		p      detector.Point3D
		mirror bool
		want   image.Point
	}{
		{"origin", detector.Point3D{}, false, image.Pt(0, 0)},
		{"center", detector.Point3D{X: 0.5, Y: 0.5}, false, image.Pt(320, 240)},
		{"mirrored", detector.Point3D{X: 0.25, Y: 1}, true, image.Pt(480, 480)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPixel(tt.p, 640, 480, tt.mirror); got != tt.want {
				t.Errorf("ToPixel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name  string
		state gesture.State
		want  string
	}{
		{"none", gesture.State{Gesture: gesture.None}, "No gesture detected"},
		{"open hand", gesture.State{Gesture: gesture.OpenHand, Confidence: 0.9}, "Open Hand - Particle Explosion (90%)"},
		{"fist", gesture.State{Gesture: gesture.Fist, Confidence: 0.9}, "Fist - Pulsing Sphere (90%)"},
		{"point", gesture.State{Gesture: gesture.Point, Confidence: 0.85}, "Point - Laser Beam (85%)"},
		{"peace", gesture.State{Gesture: gesture.Peace, Confidence: 0.7}, "Peace - Rainbow Wave (70%)"},
		{"thumbs up", gesture.State{Gesture: gesture.ThumbsUp, Confidence: 0.85}, "Thumbs Up - Fireworks (85%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(tt.state); got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectName(t *testing.T) {
	if got := EffectName("particle-explosion"); got != "Particle Explosion" {
		t.Errorf("EffectName() = %q", got)
	}
	if got := EffectName(""); got != "" {
		t.Errorf("EffectName(\"\") = %q, want empty", got)
	}
}

func TestEffectName_Concurrent(t *testing.T) {
	animations := map[string]string{
		"particle-explosion": "Particle Explosion",
		"pulsing-sphere":     "Pulsing Sphere",
		"laser-beam":         "Laser Beam",
		"rainbow-wave":       "Rainbow Wave",
		"fireworks":          "Fireworks",
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8*200*len(animations))
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				for id, want := range animations {
					if got := EffectName(id); got != want {
						errs <- got
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("garbled effect name %q", got)
	}
}

func TestAnnotateAndEncode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.SetTo(gocv.NewScalar(0, 0, 0, 0))

	hand := detector.OpenHandLandmarks()
	states := []gesture.State{{Gesture: gesture.OpenHand, Confidence: 0.9, Handedness: detector.HandRight}}
	Annotate(&img, []detector.HandLandmarks{hand}, states, DefaultStyle())

	// The index fingertip dot is drawn in red (BGR order).
	tip := ToPixel(hand.Points[detector.IndexTip], 640, 480, false)
	px := img.GetVecbAt(tip.Y, tip.X)
	if px[2] != 255 || px[1] != 0 || px[0] != 0 {
		t.Errorf("expected red landmark at %v, got %v", tip, px)
	}

	data, err := EncodeJPEG(&img, 80)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output is not a JPEG")
	}
}

func TestDrawHand_NilSafe(t *testing.T) {
	DrawHand(nil, nil, DefaultStyle())

	empty := gocv.NewMat()
	defer empty.Close()
	hand := detector.FistLandmarks()
	DrawHand(&empty, &hand, DefaultStyle())
	DrawCaption(&empty, "x", image.Pt(0, 0), DefaultStyle())
}
