// Package gesture turns hand landmarks into discrete, debounced gesture labels.
//
// The pipeline is FingerStates -> Classify -> Debouncer, with Tracker gluing
// them together for one stream of frames.
package gesture

// Type identifies a recognized hand gesture.
type Type string

// Recognized gestures. None doubles as the initial state and the
// "no confident or stable gesture" sentinel.
const (
	None     Type = "none"
	OpenHand Type = "open_hand"
	Fist     Type = "fist"
	Point    Type = "point"
	Peace    Type = "peace"
	ThumbsUp Type = "thumbs_up"
)

// Info describes how a gesture is presented to users.
type Info struct {
	Type      Type   `json:"type"`
	Label     string `json:"label"`
	Animation string `json:"animation,omitempty"`
}

var catalog = []Info{
	{Type: None, Label: "No gesture detected"},
	{Type: OpenHand, Label: "Open Hand", Animation: "particle-explosion"},
	{Type: Fist, Label: "Fist", Animation: "pulsing-sphere"},
	{Type: Point, Label: "Point", Animation: "laser-beam"},
	{Type: Peace, Label: "Peace", Animation: "rainbow-wave"},
	{Type: ThumbsUp, Label: "Thumbs Up", Animation: "fireworks"},
}

// Types returns every gesture, None first.
func Types() []Type {
	types := make([]Type, len(catalog))
	for i, info := range catalog {
		types[i] = info.Type
	}
	return types
}

// Catalog returns presentation info for every gesture.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// ParseType converts a string to a Type.
func ParseType(s string) (Type, bool) {
	for _, info := range catalog {
		if string(info.Type) == s {
			return info.Type, true
		}
	}
	return None, false
}

// Describe returns presentation info for t. Unknown types describe as None.
func (t Type) Describe() Info {
	for _, info := range catalog {
		if info.Type == t {
			return info
		}
	}
	return catalog[0]
}

// Label is the human readable name of t.
func (t Type) Label() string {
	return t.Describe().Label
}

func (t Type) String() string {
	return string(t)
}
