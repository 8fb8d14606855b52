package gesture

// DefaultStabilityThreshold is the number of identical consecutive frames
// needed before a gesture is reported.
const DefaultStabilityThreshold = 3

// Debouncer is a run-length confirmation filter over raw classifications.
// A gesture is reported only once it has been seen on threshold consecutive
// frames; any different frame restarts the run.
//
// A Debouncer belongs to exactly one stream of frames, fed in temporal order.
// It is not safe for concurrent use.
type Debouncer struct {
	threshold int
	last      Type
	count     int
}

// NewDebouncer returns a Debouncer requiring threshold consecutive frames.
// A threshold <= 0 selects DefaultStabilityThreshold.
func NewDebouncer(threshold int) *Debouncer {
	if threshold <= 0 {
		threshold = DefaultStabilityThreshold
	}
	return &Debouncer{threshold: threshold, last: None}
}

// Feed records one frame's raw gesture and returns the stable gesture, or
// None while the current run is shorter than the threshold.
func (d *Debouncer) Feed(g Type) Type {
	if g == d.last {
		d.count++
	} else {
		d.last = g
		d.count = 1
	}

	if d.count >= d.threshold {
		return d.last
	}
	return None
}

// Reset returns the debouncer to its initial state.
func (d *Debouncer) Reset() {
	d.last = None
	d.count = 0
}

// Threshold returns the configured stability threshold.
func (d *Debouncer) Threshold() int { return d.threshold }

// Last returns the raw gesture of the current run.
func (d *Debouncer) Last() Type { return d.last }

// Count returns the length of the current run.
func (d *Debouncer) Count() int { return d.count }

// Stable reports whether the current run has reached the threshold.
func (d *Debouncer) Stable() bool { return d.count >= d.threshold }
