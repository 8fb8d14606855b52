package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func handJSON(t *testing.T, h detector.HandLandmarks) []byte {
	t.Helper()
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("failed to marshal hand: %v", err)
	}
	return data
}

func TestGestureHandler_List(t *testing.T) {
	h := NewGestureHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/gestures", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listGesturesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Gestures) != 6 {
		t.Fatalf("expected 6 gestures, got %d", len(response.Gestures))
	}
	if response.Gestures[0].Type != "none" {
		t.Errorf("expected none first, got %s", response.Gestures[0].Type)
	}

	for _, g := range response.Gestures {
		if g.Type == "open_hand" {
			if g.Label != "Open Hand" || g.Effect != "Particle Explosion" {
				t.Errorf("unexpected open_hand entry: %+v", g)
			}
		}
	}
}

func TestGestureHandler_MethodNotAllowed(t *testing.T) {
	h := NewGestureHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/gestures", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestClassifyHandler(t *testing.T) {
	h := NewClassifyHandler()

	tests := []struct {
		name     string
		hand     detector.HandLandmarks
		gesture  string
		extended int
	}{
		{"fist", detector.FistLandmarks(), "fist", 0},
		{"open hand", detector.OpenHandLandmarks(), "open_hand", 5},
		{"peace", detector.PeaceLandmarks(), "peace", 2},
		{"thumbs up", detector.ThumbsUpLandmarks(), "thumbs_up", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"hand":` + string(handJSON(t, tt.hand)) + `}`
			req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}

			var response classifyResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if string(response.Gesture) != tt.gesture {
				t.Errorf("expected %s, got %s", tt.gesture, response.Gesture)
			}
			if response.Extended != tt.extended {
				t.Errorf("expected %d extended fingers, got %d", tt.extended, response.Extended)
			}
			if response.Confidence <= 0 {
				t.Errorf("expected positive confidence, got %f", response.Confidence)
			}
		})
	}
}

func TestClassifyHandler_NoHand(t *testing.T) {
	h := NewClassifyHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var response classifyResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Gesture != "none" || response.Confidence != 0 {
		t.Errorf("expected none with zero confidence, got %+v", response)
	}
	if response.Normalized != nil {
		t.Errorf("expected no normalized hand, got %+v", response.Normalized)
	}
}

func TestClassifyHandler_NormalizedHand(t *testing.T) {
	h := NewClassifyHandler()

	hand := detector.PointLandmarks()
	body := `{"hand":` + string(handJSON(t, hand)) + `}`
	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var response classifyResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Normalized == nil {
		t.Fatal("expected a normalized hand")
	}

	wrist := response.Normalized.Points[detector.Wrist]
	if math.Abs(wrist.X) > 1e-9 || math.Abs(wrist.Y) > 1e-9 || math.Abs(wrist.Z) > 1e-9 {
		t.Errorf("expected wrist at origin, got %+v", wrist)
	}
	mcp := response.Normalized.Points[detector.MiddleMCP]
	if d := math.Sqrt(mcp.X*mcp.X + mcp.Y*mcp.Y + mcp.Z*mcp.Z); math.Abs(d-1) > 1e-9 {
		t.Errorf("expected palm length 1, got %f", d)
	}
	if response.Normalized.Handedness != hand.Handedness {
		t.Errorf("expected handedness %s, got %s", hand.Handedness, response.Normalized.Handedness)
	}
}

func TestClassifyHandler_InvalidHand(t *testing.T) {
	h := NewClassifyHandler()

	body := `{"hand":{"points":[{"x":0.5,"y":0.5,"z":0}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/classify", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
