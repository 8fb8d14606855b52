package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
)

// GestureHandler serves the catalog of recognizable gestures.
type GestureHandler struct{}

// NewGestureHandler creates a GestureHandler.
func NewGestureHandler() *GestureHandler {
	return &GestureHandler{}
}

type gestureResponse struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Animation string `json:"animation,omitempty"`
	Effect    string `json:"effect,omitempty"`
}

type listGesturesResponse struct {
	Gestures []gestureResponse `json:"gestures"`
}

// ServeHTTP handles GET /api/gestures.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	catalog := gesture.Catalog()
	response := listGesturesResponse{Gestures: make([]gestureResponse, 0, len(catalog))}
	for _, info := range catalog {
		response.Gestures = append(response.Gestures, gestureResponse{
			Type:      string(info.Type),
			Label:     info.Label,
			Animation: info.Animation,
			Effect:    overlay.EffectName(info.Animation),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// ClassifyHandler classifies a single hand without any debouncing.
type ClassifyHandler struct{}

// NewClassifyHandler creates a ClassifyHandler.
func NewClassifyHandler() *ClassifyHandler {
	return &ClassifyHandler{}
}

type classifyRequest struct {
	Hand *detector.HandLandmarks `json:"hand"`
}

type classifyResponse struct {
	Gesture    gesture.Type            `json:"gesture"`
	Label      string                  `json:"label"`
	Confidence float64                 `json:"confidence"`
	Fingers    gesture.FingerState     `json:"fingers"`
	Extended   int                     `json:"extended"`
	// Normalized is the hand moved to the wrist and scaled to palm length.
	Normalized *detector.HandLandmarks `json:"normalized,omitempty"`
}

// ServeHTTP handles POST /api/classify. A request without a hand classifies as none.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hand: "+err.Error())
		return
	}

	var fingers gesture.FingerState
	if req.Hand != nil {
		fingers = gesture.FingerStates(req.Hand)
	}
	c := gesture.Classify(req.Hand)

	writeJSON(w, http.StatusOK, classifyResponse{
		Gesture:    c.Gesture,
		Label:      c.Gesture.Label(),
		Confidence: c.Confidence,
		Fingers:    fingers,
		Extended:   gesture.CountExtended(fingers),
		Normalized: req.Hand.Normalize(),
	})
}
