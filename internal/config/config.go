// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/unmute/internal/detector"
	"github.com/ayusman/unmute/internal/geometry"
	"github.com/ayusman/unmute/internal/hold"
	"github.com/ayusman/unmute/internal/session"
	"github.com/ayusman/unmute/internal/sign"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config represents the application configuration.
type Config struct {
	// Server settings
	Server struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`

	// Store settings
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	// Plugin settings
	Plugins struct {
		Dir     string        `yaml:"dir"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"plugins"`

	// Detector settings for the landmark service used by /api/detect
	Detector struct {
		Enabled       bool    `yaml:"enabled"`
		ScriptPath    string  `yaml:"script_path"`
		MaxHands      int     `yaml:"max_hands"`
		MinConfidence float64 `yaml:"min_confidence"`
		IdleTimeout   int     `yaml:"idle_timeout_sec"`
	} `yaml:"detector"`

	// Hold timings
	Hold struct {
		Sentence time.Duration `yaml:"sentence"`
		Trigger  time.Duration `yaml:"trigger"`
		Cooldown time.Duration `yaml:"cooldown"`
	} `yaml:"hold"`

	// Thresholds per coordinate space
	Thresholds geometry.Profile `yaml:"thresholds"`
}

// DataDir returns ~/.unmute, or ".unmute" when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".unmute"
	}
	return filepath.Join(home, ".unmute")
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	dir := DataDir()

	cfg.Server.Addr = ":8080"
	cfg.Server.StaticDir = ""

	cfg.Store.Path = filepath.Join(dir, "unmute.db")

	cfg.Plugins.Dir = filepath.Join(dir, "plugins")
	cfg.Plugins.Timeout = 5 * time.Second

	cfg.Detector.Enabled = true
	cfg.Detector.MaxHands = 2
	cfg.Detector.MinConfidence = 0.5
	cfg.Detector.IdleTimeout = 30

	cfg.Hold.Sentence = hold.DefaultSentenceHold
	cfg.Hold.Trigger = hold.DefaultTriggerHold
	cfg.Hold.Cooldown = hold.DefaultCooldown

	cfg.Thresholds = geometry.DefaultProfile()

	return cfg
}

// Load loads configuration from file. Keys missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations.
// Priority: explicit path > ~/.unmute/config.yaml > defaults.
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	userConfigPath := filepath.Join(DataDir(), "config.yaml")
	if _, err := os.Stat(userConfigPath); err == nil {
		return Load(userConfigPath)
	}

	return DefaultConfig(), nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate rejects non-positive timings and thresholds.
func (c *Config) Validate() error {
	durations := map[string]time.Duration{
		"hold.sentence":   c.Hold.Sentence,
		"hold.trigger":    c.Hold.Trigger,
		"hold.cooldown":   c.Hold.Cooldown,
		"plugins.timeout": c.Plugins.Timeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}

	if err := validateThresholds("thresholds.image", c.Thresholds.Image); err != nil {
		return err
	}
	return validateThresholds("thresholds.world", c.Thresholds.World)
}

func validateThresholds(prefix string, t geometry.Thresholds) error {
	values := []struct {
		name string
		v    float64
	}{
		{"extension_ratio", t.ExtensionRatio},
		{"segment_ratio", t.SegmentRatio},
		{"thumb_extension_ratio", t.ThumbExtensionRatio},
		{"thumb_curl_ratio", t.ThumbCurlRatio},
		{"curl_ratio.index", t.CurlRatio.Index},
		{"curl_ratio.middle", t.CurlRatio.Middle},
		{"curl_ratio.ring", t.CurlRatio.Ring},
		{"curl_ratio.pinky", t.CurlRatio.Pinky},
		{"fingers_close_max", t.FingersCloseMax},
		{"flat_depth_max", t.FlatDepthMax},
		{"touch_max", t.TouchMax},
		{"c_gap_max", t.CGapMax},
		{"x_raise_ratio", t.XRaiseRatio},
		{"l_angle_min", t.LAngleMin},
		{"g_angle_max", t.GAngleMax},
		{"simple_margin", t.SimpleMargin},
	}
	for _, v := range values {
		if v.v <= 0 {
			return fmt.Errorf("%w: %s.%s must be positive, got %v", ErrInvalid, prefix, v.name, v.v)
		}
	}
	return nil
}

// Session returns the session timings.
func (c *Config) Session() session.Config {
	return session.Config{
		SentenceHold: c.Hold.Sentence,
		TriggerHold:  c.Hold.Trigger,
		Cooldown:     c.Hold.Cooldown,
	}
}

// SignOptions returns classifier options using the configured thresholds and
// the default rule lists.
func (c *Config) SignOptions() sign.Options {
	opts := sign.DefaultOptions()
	opts.Thresholds = c.Thresholds
	return opts
}

// DetectorConfig returns the landmark service settings.
func (c *Config) DetectorConfig() detector.Config {
	dc := detector.DefaultConfig()
	dc.ScriptPath = c.Detector.ScriptPath
	if c.Detector.MaxHands > 0 {
		dc.MaxHands = c.Detector.MaxHands
	}
	if c.Detector.MinConfidence > 0 {
		dc.MinConfidence = c.Detector.MinConfidence
	}
	if c.Detector.IdleTimeout > 0 {
		dc.IdleTimeoutSec = c.Detector.IdleTimeout
	}
	return dc
}
