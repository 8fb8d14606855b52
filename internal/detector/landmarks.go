// Package detector provides hand landmark types and the detectors that produce them.
package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the hand detector.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// ErrLandmarkCount is returned when a landmark list does not hold exactly NumLandmarks points.
var ErrLandmarkCount = errors.New("hand must have exactly 21 landmarks")

// Point3D is a normalized landmark position. X and Y are relative to the frame
// width and height, Z is a relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: 21 landmarks plus the handedness label.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewHandLandmarks builds a HandLandmarks from a variable-length point list.
// It returns ErrLandmarkCount unless exactly NumLandmarks points are given.
// An empty handedness defaults to "Right".
func NewHandLandmarks(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w: got %d", ErrLandmarkCount, len(points))
	}

	switch handedness {
	case "":
		handedness = HandRight
	case HandLeft, HandRight:
	default:
		return h, fmt.Errorf("invalid handedness %q", handedness)
	}

	copy(h.Points[:], points)
	h.Handedness = handedness
	h.Score = score
	return h, nil
}

// UnmarshalJSON decodes {"points": [...], "handedness": ..., "score": ...}
// with the same validation as NewHandLandmarks.
func (h *HandLandmarks) UnmarshalJSON(data []byte) error {
	var raw jsonHand
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewHandLandmarks(raw.Points, raw.Handedness, raw.Score)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize returns a copy of the hand translated so the wrist is at the origin
// and scaled so the wrist to middle-finger MCP distance is 1.0.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := range h.Points {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := range normalized.Points {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
