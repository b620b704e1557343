// Package config loads simulation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Physics PhysicsConfig `yaml:"physics"`
	Log     LogConfig     `yaml:"log"`
}

type PhysicsConfig struct {
	Timestep   float64   `yaml:"timestep"`
	Iterations int       `yaml:"iterations"`
	Gravity    []float64 `yaml:"gravity"`
	// Damping is the fraction of velocity a body keeps per second.
	Damping float64 `yaml:"damping"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the settings used when a field is absent from the file.
func Default() Config {
	return Config{
		Physics: PhysicsConfig{
			Timestep:   1.0 / 60.0,
			Iterations: 10,
			Gravity:    []float64{0, -9.81},
			Damping:    1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	p := c.Physics
	if !(p.Timestep > 0) || math.IsInf(p.Timestep, 0) {
		return fmt.Errorf("%w: physics.timestep must be positive, got %v", ErrInvalid, p.Timestep)
	}
	if p.Iterations <= 0 {
		return fmt.Errorf("%w: physics.iterations must be positive, got %d", ErrInvalid, p.Iterations)
	}
	if n := len(p.Gravity); n < 2 || n > 3 {
		return fmt.Errorf("%w: physics.gravity needs 2 or 3 components, got %d", ErrInvalid, n)
	}
	if !(p.Damping > 0 && p.Damping <= 1) {
		return fmt.Errorf("%w: physics.damping must be in (0, 1], got %v", ErrInvalid, p.Damping)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// GravityVec pads gravity to three components.
func (p PhysicsConfig) GravityVec() mgl64.Vec3 {
	var g mgl64.Vec3
	copy(g[:], p.Gravity)
	return g
}

// Build creates the process logger.
func (l LogConfig) Build() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	cfg := zap.Config{
		Level:            level,
		Development:      l.Development,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	if l.Development {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}
