package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.Gesture.StabilityThreshold)
	assert.Equal(t, "mediapipe", cfg.Detector.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Gesture.SessionIdleTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
httpAddr: ":9090"
camera:
  enabled: false
  deviceID: 2
detector:
  backend: remote
  remoteURL: http://localhost:7000/detect
  remoteTimeout: 750ms
gesture:
  stabilityThreshold: 5
  sessionIdleTimeout: 30s
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.False(t, cfg.Camera.Enabled)
	assert.Equal(t, 2, cfg.Camera.DeviceID)
	assert.Equal(t, 640, cfg.Camera.Width, "unset fields keep defaults")
	assert.Equal(t, "remote", cfg.Detector.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Detector.RemoteTimeout)
	assert.Equal(t, 5, cfg.Gesture.StabilityThreshold)
	assert.Equal(t, 30*time.Second, cfg.Gesture.SessionIdleTimeout)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "httpAddr: \":9090\"\n")
	t.Setenv("MUDRA_HTTP_ADDR", ":7070")
	t.Setenv("MUDRA_STABILITY_THRESHOLD", "4")
	t.Setenv("MUDRA_DETECTOR", "mock")
	t.Setenv("MUDRA_TRAY", "1")
	t.Setenv("MUDRA_SESSION_IDLE_TIMEOUT", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 4, cfg.Gesture.StabilityThreshold)
	assert.Equal(t, "mock", cfg.Detector.Backend)
	assert.True(t, cfg.TrayEnabled)
	assert.Equal(t, 90*time.Second, cfg.Gesture.SessionIdleTimeout)
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("MUDRA_STABILITY_THRESHOLD", "three")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Gesture.StabilityThreshold)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "gesture: [not, a, map]\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.HTTPAddr = "" }},
		{"zero threshold", func(c *Config) { c.Gesture.StabilityThreshold = 0 }},
		{"zero idle timeout", func(c *Config) { c.Gesture.SessionIdleTimeout = 0 }},
		{"remote without url", func(c *Config) { c.Detector.Backend = "remote" }},
		{"unknown backend", func(c *Config) { c.Detector.Backend = "onnx" }},
		{"confidence out of range", func(c *Config) { c.Detector.MinConfidence = 1.5 }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDBPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/tmp/mudra"
	assert.Equal(t, filepath.Join("/tmp/mudra", "mudra.db"), cfg.DBPath())
}
