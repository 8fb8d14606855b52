// Package config loads mudra's configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	HTTPAddr  string `yaml:"httpAddr"`
	DataDir   string `yaml:"dataDir"`
	StaticDir string `yaml:"staticDir"`
	PluginDir string `yaml:"pluginDir"`

	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Log      LogConfig      `yaml:"log"`

	MetricsEnabled bool          `yaml:"metricsEnabled"`
	TrayEnabled    bool          `yaml:"trayEnabled"`
	PluginTimeout  time.Duration `yaml:"pluginTimeout"`
}

type CameraConfig struct {
	Enabled         bool    `yaml:"enabled"`
	DeviceID        int     `yaml:"deviceID"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	MotionThreshold float64 `yaml:"motionThreshold"` // percent of changed pixels
}

type DetectorConfig struct {
	Backend       string        `yaml:"backend"` // mediapipe, remote, mock
	MaxHands      int           `yaml:"maxHands"`
	MinConfidence float64       `yaml:"minConfidence"`
	RemoteURL     string        `yaml:"remoteURL"`
	RemoteTimeout time.Duration `yaml:"remoteTimeout"`
}

type GestureConfig struct {
	StabilityThreshold int           `yaml:"stabilityThreshold"`
	SessionIdleTimeout time.Duration `yaml:"sessionIdleTimeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:  ":8080",
		DataDir:   defaultDataDir(),
		PluginDir: filepath.Join(defaultDataDir(), "plugins"),
		Camera: CameraConfig{
			Enabled:         true,
			DeviceID:        0,
			Width:           640,
			Height:          480,
			MotionThreshold: 1.0,
		},
		Detector: DetectorConfig{
			Backend:       "mediapipe",
			MaxHands:      2,
			MinConfidence: 0.5,
			RemoteTimeout: 2 * time.Second,
		},
		Gesture: GestureConfig{
			StabilityThreshold: 3,
			SessionIdleTimeout: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		MetricsEnabled: true,
		PluginTimeout:  5 * time.Second,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// Load reads the YAML file at path over the defaults, then applies a .env file
// from the working directory if present, then MUDRA_* environment variables.
// A missing file is not an error; an empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("MUDRA_HTTP_ADDR", c.HTTPAddr)
	c.DataDir = getEnv("MUDRA_DATA_DIR", c.DataDir)
	c.StaticDir = getEnv("MUDRA_STATIC_DIR", c.StaticDir)
	c.PluginDir = getEnv("MUDRA_PLUGIN_DIR", c.PluginDir)

	c.Camera.Enabled = getEnvBool("MUDRA_CAMERA_ENABLED", c.Camera.Enabled)
	c.Camera.DeviceID = getEnvInt("MUDRA_CAMERA_ID", c.Camera.DeviceID)
	c.Camera.MotionThreshold = getEnvFloat("MUDRA_MOTION_THRESHOLD", c.Camera.MotionThreshold)

	c.Detector.Backend = getEnv("MUDRA_DETECTOR", c.Detector.Backend)
	c.Detector.RemoteURL = getEnv("MUDRA_DETECTOR_URL", c.Detector.RemoteURL)
	c.Detector.RemoteTimeout = getEnvDuration("MUDRA_DETECTOR_TIMEOUT", c.Detector.RemoteTimeout)

	c.Gesture.StabilityThreshold = getEnvInt("MUDRA_STABILITY_THRESHOLD", c.Gesture.StabilityThreshold)
	c.Gesture.SessionIdleTimeout = getEnvDuration("MUDRA_SESSION_IDLE_TIMEOUT", c.Gesture.SessionIdleTimeout)

	c.Log.Level = getEnv("MUDRA_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("MUDRA_LOG_FORMAT", c.Log.Format)

	c.MetricsEnabled = getEnvBool("MUDRA_METRICS", c.MetricsEnabled)
	c.TrayEnabled = getEnvBool("MUDRA_TRAY", c.TrayEnabled)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("httpAddr is required")
	}
	if c.Gesture.StabilityThreshold < 1 {
		return fmt.Errorf("gesture.stabilityThreshold must be >= 1, got %d", c.Gesture.StabilityThreshold)
	}
	if c.Gesture.SessionIdleTimeout <= 0 {
		return errors.New("gesture.sessionIdleTimeout must be positive")
	}
	switch c.Detector.Backend {
	case "mediapipe", "mock":
	case "remote":
		if c.Detector.RemoteURL == "" {
			return errors.New("detector.remoteURL is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown detector backend %q", c.Detector.Backend)
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return fmt.Errorf("detector.minConfidence must be within [0,1], got %v", c.Detector.MinConfidence)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// DBPath is the SQLite database location inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1"
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
