package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// BlurKernel is the Gaussian blur kernel size applied before differencing.
	BlurKernel = 21
	// PixelDiffThreshold is the per-pixel intensity change counted as motion.
	PixelDiffThreshold = 25
	// DefaultHoldFrames keeps the gate open for this many frames after motion stops.
	DefaultHoldFrames = 10
)

// MotionResult is the outcome of one MotionGate.Check.
type MotionResult struct {
	// Moving is true when ChangePercent exceeded the threshold on this frame.
	Moving bool
	// Active is true while motion was seen within the last hold frames.
	Active bool
	// ChangePercent is the share of pixels that changed, 0..100.
	ChangePercent float64
}

// MotionGate decides whether frames are worth sending to the hand detector.
// It differences blurred grayscale frames and stays open for a few frames after
// motion so a hand that stops moving keeps being tracked briefly.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64
	hold      int
	remaining int
	prev      gocv.Mat
	primed    bool
}

// NewMotionGate creates a gate that opens when more than threshold percent of
// pixels change. hold <= 0 selects DefaultHoldFrames.
func NewMotionGate(threshold float64, hold int) *MotionGate {
	if hold <= 0 {
		hold = DefaultHoldFrames
	}
	return &MotionGate{
		threshold: threshold,
		hold:      hold,
		prev:      gocv.NewMat(),
	}
}

// Check compares frame with the previous one. The first frame only primes the
// gate and reports no motion.
func (m *MotionGate) Check(frame *gocv.Mat) MotionResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return MotionResult{Active: m.remaining > 0}
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(BlurKernel, BlurKernel), 0, 0, gocv.BorderDefault)

	if !m.primed || blurred.Rows() != m.prev.Rows() || blurred.Cols() != m.prev.Cols() {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return MotionResult{Active: m.remaining > 0}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)
	gocv.Threshold(diff, &diff, PixelDiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0
	blurred.CopyTo(&m.prev)

	moving := changed > m.threshold
	active := moving || m.remaining > 0
	if moving {
		m.remaining = m.hold
	} else if m.remaining > 0 {
		m.remaining--
	}

	return MotionResult{
		Moving:        moving,
		Active:        active,
		ChangePercent: changed,
	}
}

// SetThreshold changes the motion threshold. Non-positive values are ignored.
func (m *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	m.threshold = threshold
	m.mu.Unlock()
}

// Reset forgets the baseline frame and any pending hold.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = false
	m.remaining = 0
}

// Close releases the baseline frame.
func (m *MotionGate) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
	m.remaining = 0
}
