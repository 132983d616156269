// Package config loads picture-in-picture settings from YAML.
//
// Every field has a default; a file only needs the fields it overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	Screen           Screen           `yaml:"screen"`
	PictureInPicture PictureInPicture `yaml:"pictureInPicture"`
	Frames           Frames           `yaml:"frames"`
	Network          Network          `yaml:"network"`
}

// Screen describes the display driving the self-healing tick.
type Screen struct {
	// RefreshRate is the display refresh rate in Hz.
	RefreshRate float64 `yaml:"refreshRate"`
}

// RefreshInterval returns one refresh period.
func (s Screen) RefreshInterval() time.Duration {
	if s.RefreshRate <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / s.RefreshRate)
}

// PictureInPicture holds window policy.
type PictureInPicture struct {
	CanStartPictureInPictureAutomaticallyFromInline bool `yaml:"canStartPictureInPictureAutomaticallyFromInline"`

	PreferredContentSize Size `yaml:"preferredContentSize"`

	// ForegroundStopDelay is how long the application must stay in the
	// foreground before the window is stopped.
	ForegroundStopDelay time.Duration `yaml:"foregroundStopDelay"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Frames holds the frame pipeline thresholds.
type Frames struct {
	ResizeThreshold float64 `yaml:"resizeThreshold"`
	SkipThreshold   float64 `yaml:"skipThreshold"`
}

// Network configures reachability probing. An empty STUNServer disables
// probing.
type Network struct {
	STUNServer    string        `yaml:"stunServer"`
	ProbeInterval time.Duration `yaml:"probeInterval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Screen: Screen{RefreshRate: 60},
		PictureInPicture: PictureInPicture{
			CanStartPictureInPictureAutomaticallyFromInline: true,
			PreferredContentSize: Size{Width: 640, Height: 480},
			ForegroundStopDelay:  250 * time.Millisecond,
		},
		Frames: Frames{
			ResizeThreshold: 1,
			SkipThreshold:   15,
		},
		Network: Network{
			ProbeInterval: 5 * time.Second,
		},
	}
}

// Load reads path over the defaults. A missing or empty file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.WithFields(logrus.Fields{
				"function": "Load",
				"path":     path,
			}).Debug("Config file not found, using defaults")
			return &cfg, nil
		}
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			logrus.WithFields(logrus.Fields{
				"function": "Load",
				"path":     path,
			}).Warn("Config file is empty, using defaults")
			return &cfg, nil
		}
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Screen.RefreshRate <= 0:
		return fmt.Errorf("%w: screen.refreshRate must be positive", ErrInvalidConfig)
	case c.PictureInPicture.PreferredContentSize.Width < 0 || c.PictureInPicture.PreferredContentSize.Height < 0:
		return fmt.Errorf("%w: pictureInPicture.preferredContentSize must not be negative", ErrInvalidConfig)
	case c.PictureInPicture.ForegroundStopDelay < 0:
		return fmt.Errorf("%w: pictureInPicture.foregroundStopDelay must not be negative", ErrInvalidConfig)
	case c.Frames.ResizeThreshold <= 0 || c.Frames.SkipThreshold <= 0:
		return fmt.Errorf("%w: frame thresholds must be positive", ErrInvalidConfig)
	case c.Network.ProbeInterval < 0:
		return fmt.Errorf("%w: network.probeInterval must not be negative", ErrInvalidConfig)
	}
	return nil
}
