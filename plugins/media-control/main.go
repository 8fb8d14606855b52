// Package main provides a media control plugin for macOS.
// It maps stable gestures to volume and media keys via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Request is the stable gesture change sent by mudra.
type Request struct {
	Gesture    string          `json:"gesture"`
	Previous   string          `json:"previous"`
	Confidence float64         `json:"confidence"`
	Handedness string          `json:"handedness"`
	Session    string          `json:"session"`
	Config     json.RawMessage `json:"config"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config maps gesture names to action names.
type Config struct {
	Mappings map[string]string `json:"mappings"`
	// DryRun reports the chosen action without pressing any key.
	DryRun bool `json:"dryRun"`
}

var defaultMappings = map[string]string{
	"open_hand": "media-play-pause",
	"fist":      "volume-mute",
	"thumbs_up": "volume-up",
	"point":     "media-next",
	"peace":     "media-prev",
}

var actionScripts = map[string]string{
	"volume-up":        `set volume output volume ((output volume of (get volume settings)) + 10)`,
	"volume-down":      `set volume output volume ((output volume of (get volume settings)) - 10)`,
	"volume-mute":      `set volume output muted (not (output muted of (get volume settings)))`,
	"media-play-pause": "tell application \"System Events\"\n\tkey code 100\nend tell",
	"media-next":       "tell application \"System Events\"\n\tkey code 101\nend tell",
	"media-prev":       "tell application \"System Events\"\n\tkey code 98\nend tell",
}

func main() {
	json.NewEncoder(os.Stdout).Encode(handle(os.Stdin, runAppleScript))
}

// handle decodes one request from r and runs the mapped action with run.
func handle(r io.Reader, run func(script string) error) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return errorResponse(fmt.Sprintf("failed to decode request: %v", err))
	}

	cfg, err := parseConfig(req.Config)
	if err != nil {
		return errorResponse(err.Error())
	}

	action, err := resolveAction(cfg, req.Gesture)
	if err != nil {
		return errorResponse(err.Error())
	}

	if !cfg.DryRun {
		if err := run(actionScripts[action]); err != nil {
			return errorResponse(fmt.Sprintf("action %s failed: %v", action, err))
		}
	}

	data, _ := json.Marshal(map[string]any{"action": action, "dryRun": cfg.DryRun})
	return Response{Success: true, Data: data}
}

func parseConfig(raw json.RawMessage) (Config, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config: %w", err)
		}
	}
	if len(cfg.Mappings) == 0 {
		cfg.Mappings = defaultMappings
	}
	return cfg, nil
}

// resolveAction returns the action mapped to gesture.
func resolveAction(cfg Config, gesture string) (string, error) {
	action, ok := cfg.Mappings[gesture]
	if !ok {
		return "", fmt.Errorf("no action mapped to gesture %q", gesture)
	}
	if _, ok := actionScripts[action]; !ok {
		return "", fmt.Errorf("unknown action: %s", action)
	}
	return action, nil
}

func errorResponse(msg string) Response {
	return Response{Success: false, Error: msg}
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
