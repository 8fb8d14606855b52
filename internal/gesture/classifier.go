package gesture

import "github.com/ayusman/mudra/internal/detector"

// Classification is the per-frame, undebounced result for one hand.
type Classification struct {
	Gesture    Type    `json:"gesture"`
	Confidence float64 `json:"confidence"`
}

// Rule is one row of the classifier's decision table.
type Rule struct {
	Name       string
	Matches    func(s FingerState, extended int) bool
	Gesture    Type
	Confidence float64
}

// fallback is returned when no rule matches.
var fallback = Classification{Gesture: None, Confidence: 0.5}

// rules is evaluated top to bottom and the first match wins. Several rows
// overlap, so the order is part of the contract.
var rules = []Rule{
	{
		Name:       "all fingers extended",
		Matches:    func(s FingerState, _ int) bool { return s.Thumb && s.Index && s.Middle && s.Ring && s.Pinky },
		Gesture:    OpenHand,
		Confidence: 0.9,
	},
	{
		Name:       "no fingers extended",
		Matches:    func(_ FingerState, n int) bool { return n == 0 },
		Gesture:    Fist,
		Confidence: 0.9,
	},
	{
		Name:       "thumb only",
		Matches:    func(s FingerState, _ int) bool { return s.Thumb && !s.Index && !s.Middle && !s.Ring && !s.Pinky },
		Gesture:    ThumbsUp,
		Confidence: 0.85,
	},
	{
		Name:       "index only",
		Matches:    func(s FingerState, _ int) bool { return !s.Thumb && s.Index && !s.Middle && !s.Ring && !s.Pinky },
		Gesture:    Point,
		Confidence: 0.85,
	},
	{
		Name:       "index and middle",
		Matches:    func(s FingerState, _ int) bool { return !s.Thumb && s.Index && s.Middle && !s.Ring && !s.Pinky },
		Gesture:    Peace,
		Confidence: 0.85,
	},
	{
		// Many people cannot fully tuck the thumb while making a peace sign.
		Name:       "index and middle with thumb",
		Matches:    func(s FingerState, _ int) bool { return s.Thumb && s.Index && s.Middle && !s.Ring && !s.Pinky },
		Gesture:    Peace,
		Confidence: 0.7,
	},
}

// Rules returns a copy of the decision table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// ClassifyStates maps finger states to a gesture using the decision table.
func ClassifyStates(s FingerState) Classification {
	extended := CountExtended(s)
	for _, r := range rules {
		if r.Matches(s, extended) {
			return Classification{Gesture: r.Gesture, Confidence: r.Confidence}
		}
	}
	return fallback
}

// Classify classifies a single hand. A nil hand yields None with zero confidence.
func Classify(hand *detector.HandLandmarks) Classification {
	if hand == nil {
		return Classification{Gesture: None}
	}
	return ClassifyStates(FingerStates(hand))
}
