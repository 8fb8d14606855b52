package detector

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"gocv.io/x/gocv"
)

// RemoteDetector posts JPEG frames to an external hand-landmark service and
// decodes the same {"hands": [...]} payload the MediaPipe worker emits.
type RemoteDetector struct {
	config Config
	client *resty.Client
}

// NewRemoteDetector creates a detector that calls config.RemoteURL.
func NewRemoteDetector(config Config) (*RemoteDetector, error) {
	if config.RemoteURL == "" {
		return nil, errors.New("remote detector URL is required")
	}

	client := resty.New().
		SetTimeout(config.RemoteTimeout).
		SetRetryCount(1).
		SetHeader("Accept", "application/json")

	return &RemoteDetector{config: config, client: client}, nil
}

// Detect encodes the frame and sends it to the remote service.
func (d *RemoteDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return d.DetectJPEG(buf.GetBytes())
}

// DetectJPEG sends an already-encoded JPEG image to the remote service.
func (d *RemoteDetector) DetectJPEG(data []byte) ([]HandLandmarks, error) {
	var response jsonResponse
	resp, err := d.client.R().
		SetHeader("Content-Type", "image/jpeg").
		SetQueryParam("max_hands", fmt.Sprint(d.config.MaxHands)).
		SetBody(data).
		SetResult(&response).
		Post(d.config.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("remote detect: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("remote detect: status %d: %s", resp.StatusCode(), resp.String())
	}

	return filterHands(convertHands(response.Hands), d.config), nil
}

// Close releases idle connections held by the HTTP client.
func (d *RemoteDetector) Close() error {
	d.client.GetClient().CloseIdleConnections()
	return nil
}
