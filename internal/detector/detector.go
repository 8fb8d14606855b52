package detector

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Backend names accepted by New.
const (
	BackendMediaPipe = "mediapipe"
	BackendRemote    = "remote"
	BackendMock      = "mock"
)

// Config holds configuration options for hand detection.
type Config struct {
	// Backend selects the implementation: "mediapipe", "remote" or "mock".
	Backend string

	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// RemoteURL is the endpoint frames are posted to by the remote backend.
	RemoteURL string

	// RemoteTimeout bounds a single remote detection request.
	RemoteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendMediaPipe,
		MaxHands:      2,
		MinConfidence: 0.5,
		RemoteTimeout: 2 * time.Second,
	}
}

// New returns the Detector selected by config.Backend.
func New(config Config) (Detector, error) {
	switch config.Backend {
	case BackendMediaPipe, "":
		return NewMediaPipeDetector(config)
	case BackendRemote:
		return NewRemoteDetector(config)
	case BackendMock:
		return NewMockDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", config.Backend)
	}
}

// filterHands drops hands below the confidence threshold and caps the count.
func filterHands(hands []HandLandmarks, config Config) []HandLandmarks {
	result := hands[:0]
	for _, h := range hands {
		if h.Score < config.MinConfidence {
			continue
		}
		result = append(result, h)
		if config.MaxHands > 0 && len(result) >= config.MaxHands {
			break
		}
	}
	return result
}
