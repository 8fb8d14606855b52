package gesture

import "github.com/ayusman/mudra/internal/detector"

// State is what a Tracker reports after each frame.
type State struct {
	// Gesture is the debounced gesture; None until a run is stable.
	Gesture Type `json:"gesture"`
	// Confidence is the raw confidence of a stable gesture, 0 otherwise.
	Confidence float64 `json:"confidence"`
	// Raw is this frame's undebounced classification.
	Raw Classification `json:"raw"`
	// Fingers is this frame's finger state.
	Fingers FingerState `json:"fingers"`
	// HasHand is false when the frame contained no hand.
	HasHand    bool   `json:"has_hand"`
	Handedness string `json:"handedness,omitempty"`
	// Previous is the stable gesture reported for the prior frame.
	Previous Type `json:"previous"`
	// Changed is true when Gesture differs from Previous.
	Changed bool `json:"changed"`
}

// Pending reports whether a recognizable gesture is visible but not yet stable.
func (s State) Pending() bool {
	return s.HasHand && s.Gesture == None && s.Raw.Gesture != None
}

// Tracker follows one hand across frames: it classifies each frame, debounces
// the result, and remembers the previous stable gesture.
// Like Debouncer it has a single owner and is not safe for concurrent use.
type Tracker struct {
	debouncer *Debouncer
	current   State
}

// NewTracker creates a Tracker whose debouncer uses threshold.
func NewTracker(threshold int) *Tracker {
	return &Tracker{
		debouncer: NewDebouncer(threshold),
		current:   State{Gesture: None, Previous: None, Raw: Classification{Gesture: None}},
	}
}

// Update processes one frame. A nil hand means the hand left the frame: the
// debouncer is reset so the next appearance starts a fresh run.
func (t *Tracker) Update(hand *detector.HandLandmarks) State {
	previous := t.current.Gesture

	if hand == nil {
		t.debouncer.Reset()
		t.current = State{
			Gesture:  None,
			Raw:      Classification{Gesture: None},
			Previous: previous,
			Changed:  previous != None,
		}
		return t.current
	}

	fingers := FingerStates(hand)
	raw := ClassifyStates(fingers)
	stable := t.debouncer.Feed(raw.Gesture)

	var confidence float64
	if stable != None {
		confidence = raw.Confidence
	}

	t.current = State{
		Gesture:    stable,
		Confidence: confidence,
		Raw:        raw,
		Fingers:    fingers,
		HasHand:    true,
		Handedness: hand.Handedness,
		Previous:   previous,
		Changed:    stable != previous,
	}
	return t.current
}

// Reset clears the debouncer and the remembered state.
func (t *Tracker) Reset() {
	t.debouncer.Reset()
	t.current = State{Gesture: None, Previous: None, Raw: Classification{Gesture: None}}
}

// Current returns the state produced by the most recent Update.
func (t *Tracker) Current() State {
	return t.current
}

// Threshold returns the debouncer's stability threshold.
func (t *Tracker) Threshold() int {
	return t.debouncer.Threshold()
}
