// Package config loads planner settings from a YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable holding the config file path
const EnvConfigPath = "MPS_CONFIG"

// Config holds planner configuration
type Config struct {
	Feasibility FeasibilityConfig `yaml:"feasibility"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
}

// FeasibilityConfig controls BOM expansion
type FeasibilityConfig struct {
	// MaxDepth is the deepest BOM level expanded; deeper nodes are unconstrained leaves
	MaxDepth int `yaml:"max_depth"`
}

// ScheduleConfig controls lead-time fallbacks and task classification
type ScheduleConfig struct {
	DefaultProductionRate float64 `yaml:"default_production_rate"`
	DefaultDeliveryDays   int     `yaml:"default_delivery_days"`
	BufferDays            int     `yaml:"buffer_days"`
	OvershootCriticalDays int     `yaml:"overshoot_critical_days"`
	PlanQuantity          float64 `yaml:"plan_quantity"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Format string `yaml:"format"` // text, json or svg
	Color  string `yaml:"color"`  // auto, always or never
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Feasibility: FeasibilityConfig{MaxDepth: 5},
		Schedule: ScheduleConfig{
			DefaultProductionRate: 1000,
			DefaultDeliveryDays:   15,
			BufferDays:            3,
			OvershootCriticalDays: 7,
			PlanQuantity:          1,
		},
		Output: OutputConfig{Format: "text", Color: "auto"},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// Load reads a YAML file over the defaults.
// An empty path or a missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnvironment loads .env files, then the config file (path, else $MPS_CONFIG),
// then applies MPS_* environment overrides and validates the result.
func FromEnvironment(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from MPS_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"MPS_MAX_DEPTH", &c.Feasibility.MaxDepth},
		{"MPS_DEFAULT_DELIVERY_DAYS", &c.Schedule.DefaultDeliveryDays},
		{"MPS_BUFFER_DAYS", &c.Schedule.BufferDays},
		{"MPS_OVERSHOOT_CRITICAL_DAYS", &c.Schedule.OvershootCriticalDays},
	}
	for _, v := range ints {
		raw, ok := lookup(v.key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"MPS_DEFAULT_PRODUCTION_RATE", &c.Schedule.DefaultProductionRate},
		{"MPS_PLAN_QUANTITY", &c.Schedule.PlanQuantity},
	}
	for _, v := range floats {
		raw, ok := lookup(v.key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dst = f
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"MPS_OUTPUT_FORMAT", &c.Output.Format},
		{"MPS_OUTPUT_COLOR", &c.Output.Color},
		{"MPS_LOG_LEVEL", &c.Log.Level},
		{"MPS_LOG_FORMAT", &c.Log.Format},
	}
	for _, v := range strs {
		if raw, ok := lookup(v.key); ok && strings.TrimSpace(raw) != "" {
			*v.dst = strings.ToLower(strings.TrimSpace(raw))
		}
	}
	return nil
}

// Validate rejects settings the planner cannot run with
func (c *Config) Validate() error {
	if c.Feasibility.MaxDepth <= 0 {
		return fmt.Errorf("feasibility.max_depth must be positive, got %d", c.Feasibility.MaxDepth)
	}
	if c.Schedule.DefaultProductionRate <= 0 {
		return fmt.Errorf("schedule.default_production_rate must be positive, got %g", c.Schedule.DefaultProductionRate)
	}
	if c.Schedule.DefaultDeliveryDays < 0 {
		return fmt.Errorf("schedule.default_delivery_days cannot be negative, got %d", c.Schedule.DefaultDeliveryDays)
	}
	if c.Schedule.BufferDays < 0 {
		return fmt.Errorf("schedule.buffer_days cannot be negative, got %d", c.Schedule.BufferDays)
	}
	if c.Schedule.OvershootCriticalDays < 0 {
		return fmt.Errorf("schedule.overshoot_critical_days cannot be negative, got %d", c.Schedule.OvershootCriticalDays)
	}
	if c.Schedule.PlanQuantity <= 0 {
		return fmt.Errorf("schedule.plan_quantity must be positive, got %g", c.Schedule.PlanQuantity)
	}
	switch c.Output.Format {
	case "text", "json", "svg":
	default:
		return fmt.Errorf("invalid output.format: %s (expected: text, json, or svg)", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid output.color: %s (expected: auto, always, or never)", c.Output.Color)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format: %s (expected: text or json)", c.Log.Format)
	}
	return nil
}

// NewLogger builds the structured logger described by the log settings
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level: %s (expected: debug, info, warn, or error)", s)
	}
	return level, nil
}
