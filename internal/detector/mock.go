package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// newFixture returns a right hand with every landmark at the frame centre.
func newFixture() HandLandmarks {
	h := HandLandmarks{Handedness: HandRight, Score: 0.95}
	for i := range h.Points {
		h.Points[i] = Point3D{X: 0.5, Y: 0.5}
	}
	return h
}

// FistLandmarks returns an upright right hand with every finger curled and the
// thumb tucked against the index knuckle.
func FistLandmarks() HandLandmarks {
	h := newFixture()
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.9}

	h.Points[ThumbCMC] = Point3D{X: 0.45, Y: 0.8}
	h.Points[ThumbMCP] = Point3D{X: 0.42, Y: 0.75}
	h.Points[ThumbIP] = Point3D{X: 0.40, Y: 0.72}
	h.Points[ThumbTip] = Point3D{X: 0.38, Y: 0.7}

	curl := func(mcp int, x, baseY float64) {
		h.Points[mcp] = Point3D{X: x, Y: baseY}
		h.Points[mcp+1] = Point3D{X: x, Y: baseY - 0.05}
		h.Points[mcp+2] = Point3D{X: x, Y: baseY}
		h.Points[mcp+3] = Point3D{X: x, Y: baseY + 0.05}
	}
	curl(IndexMCP, 0.4, 0.6)
	curl(MiddleMCP, 0.5, 0.6)
	curl(RingMCP, 0.6, 0.6)
	curl(PinkyMCP, 0.7, 0.65)

	return h
}

// extend straightens the finger whose MCP is at index mcp so the tip points up.
func extend(h *HandLandmarks, mcp int) {
	base := h.Points[mcp]
	h.Points[mcp+1] = Point3D{X: base.X, Y: base.Y - 0.2}
	h.Points[mcp+2] = Point3D{X: base.X, Y: base.Y - 0.3}
	h.Points[mcp+3] = Point3D{X: base.X, Y: base.Y - 0.4}
}

// extendThumb swings the thumb tip away from the index knuckle.
func extendThumb(h *HandLandmarks) {
	h.Points[ThumbIP] = Point3D{X: 0.2, Y: 0.5}
	h.Points[ThumbTip] = Point3D{X: 0.1, Y: 0.4}
}

// OpenHandLandmarks returns a hand with all five fingers extended.
func OpenHandLandmarks() HandLandmarks {
	h := FistLandmarks()
	h.Points[ThumbMCP] = Point3D{X: 0.35, Y: 0.7}
	h.Points[ThumbIP] = Point3D{X: 0.25, Y: 0.6}
	h.Points[ThumbTip] = Point3D{X: 0.15, Y: 0.5}
	for _, mcp := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		extend(&h, mcp)
	}
	return h
}

// ThumbsUpLandmarks returns a fist with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	h := FistLandmarks()
	extendThumb(&h)
	return h
}

// PointLandmarks returns a fist with only the index finger extended.
func PointLandmarks() HandLandmarks {
	h := FistLandmarks()
	extend(&h, IndexMCP)
	return h
}

// PeaceLandmarks returns a hand with index and middle fingers extended.
func PeaceLandmarks() HandLandmarks {
	h := PointLandmarks()
	extend(&h, MiddleMCP)
	return h
}

// PeaceWithThumbLandmarks returns a peace sign where the thumb is also out.
func PeaceWithThumbLandmarks() HandLandmarks {
	h := PeaceLandmarks()
	extendThumb(&h)
	return h
}

// AmbiguousLandmarks returns a hand with index, middle and ring extended,
// which matches no known gesture.
func AmbiguousLandmarks() HandLandmarks {
	h := PeaceLandmarks()
	extend(&h, RingMCP)
	return h
}
