package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// ThumbExtensionRatio is how much farther from the index knuckle the thumb tip
// must be, horizontally, than the thumb's own MCP before the thumb counts as
// extended. Comparing two distances keeps the test independent of hand size.
const ThumbExtensionRatio = 1.2

// FingerState records which fingers are extended in a single frame.
type FingerState struct {
	Thumb  bool `json:"thumb"`
	Index  bool `json:"index"`
	Middle bool `json:"middle"`
	Ring   bool `json:"ring"`
	Pinky  bool `json:"pinky"`
}

// finger is the landmark layout of one non-thumb finger.
type finger struct {
	tip, pip, mcp int
}

var (
	indexFinger  = finger{detector.IndexTip, detector.IndexPIP, detector.IndexMCP}
	middleFinger = finger{detector.MiddleTip, detector.MiddlePIP, detector.MiddleMCP}
	ringFinger   = finger{detector.RingTip, detector.RingPIP, detector.RingMCP}
	pinkyFinger  = finger{detector.PinkyTip, detector.PinkyPIP, detector.PinkyMCP}
)

// IsFingerExtended reports whether the finger runs strictly upward in image
// space from MCP through PIP to tip. It assumes an upright hand facing the
// camera. Indices must be valid landmark constants.
func IsFingerExtended(hand *detector.HandLandmarks, tip, pip, mcp int) bool {
	p := &hand.Points
	return p[tip].Y < p[pip].Y && p[pip].Y < p[mcp].Y
}

// IsThumbExtended reports whether the thumb tip has swung away from the palm.
// The thumb bends sideways, so it is judged on the x axis against the index MCP.
func IsThumbExtended(hand *detector.HandLandmarks) bool {
	p := &hand.Points
	indexMCP := p[detector.IndexMCP].X
	tipDistance := math.Abs(p[detector.ThumbTip].X - indexMCP)
	baseDistance := math.Abs(p[detector.ThumbMCP].X - indexMCP)
	return tipDistance > baseDistance*ThumbExtensionRatio
}

// FingerStates evaluates all five fingers of hand.
func FingerStates(hand *detector.HandLandmarks) FingerState {
	ext := func(f finger) bool {
		return IsFingerExtended(hand, f.tip, f.pip, f.mcp)
	}
	return FingerState{
		Thumb:  IsThumbExtended(hand),
		Index:  ext(indexFinger),
		Middle: ext(middleFinger),
		Ring:   ext(ringFinger),
		Pinky:  ext(pinkyFinger),
	}
}

// CountExtended returns the number of extended fingers in s.
func CountExtended(s FingerState) int {
	n := 0
	for _, extended := range [...]bool{s.Thumb, s.Index, s.Middle, s.Ring, s.Pinky} {
		if extended {
			n++
		}
	}
	return n
}
