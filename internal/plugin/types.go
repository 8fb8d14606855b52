// Package plugin runs external programs in reaction to stable gestures.
package plugin

import (
	"encoding/json"
	"slices"
)

// AnyGesture in a manifest's gestures list subscribes to every gesture.
const AnyGesture = "*"

// Manifest is the plugin.json file at the root of a plugin directory.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	// Gestures lists the gesture names the plugin reacts to.
	Gestures []string `json:"gestures"`
	// Config is passed through to the plugin on every request.
	Config       json.RawMessage `json:"config,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is written to the plugin's stdin when a gesture becomes stable.
type Request struct {
	Gesture    string          `json:"gesture"`
	Previous   string          `json:"previous,omitempty"`
	Confidence float64         `json:"confidence"`
	Handedness string          `json:"handedness,omitempty"`
	Session    string          `json:"session,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribed to gesture.
func (p *Plugin) Handles(gesture string) bool {
	return slices.Contains(p.Manifest.Gestures, gesture) || slices.Contains(p.Manifest.Gestures, AnyGesture)
}
