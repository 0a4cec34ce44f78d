package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"image-effect-desktop/internal/logger"
)

const (
	BackendBild    = "bild"
	BackendOpenCV  = "opencv"
	BackendImagick = "imagick"

	DefaultAutoInterval    = 3 * time.Second
	DefaultMonitorInterval = 30 * time.Second
	DefaultWindowWidth     = 1200
	DefaultWindowHeight    = 700
)

// Environment keys
const (
	EnvBackend         = "EFFECTS_BACKEND"
	EnvAutoInterval    = "EFFECTS_AUTO_INTERVAL"
	EnvLogLevel        = "EFFECTS_LOG_LEVEL"
	EnvJSONLogs        = "EFFECTS_JSON_LOGS"
	EnvSeed            = "EFFECTS_SEED"
	EnvWindowWidth     = "EFFECTS_WINDOW_WIDTH"
	EnvWindowHeight    = "EFFECTS_WINDOW_HEIGHT"
	EnvMonitorInterval = "EFFECTS_MONITOR_INTERVAL"
)

type Config struct {
	Backend         string
	AutoInterval    time.Duration
	LogLevel        logger.LogLevel
	JSONLogs        bool
	Seed            int64
	HasSeed         bool
	WindowWidth     float32
	WindowHeight    float32
	MonitorInterval time.Duration
}

func Default() Config {
	return Config{
		Backend:         BackendBild,
		AutoInterval:    DefaultAutoInterval,
		LogLevel:        logger.InfoLevel,
		WindowWidth:     DefaultWindowWidth,
		WindowHeight:    DefaultWindowHeight,
		MonitorInterval: DefaultMonitorInterval,
	}
}

// LoadDotEnv reads the given .env files into the process environment. A
// missing file is not an error; variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ","), err)
	}
	return nil
}

// FromEnv builds a Config from defaults overridden by the environment
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvBackend); ok && v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := lookup(EnvAutoInterval); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvAutoInterval, err)
		}
		cfg.AutoInterval = d
	}

	if v, ok := lookup(EnvLogLevel); ok {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if v, ok := lookup(EnvJSONLogs); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvJSONLogs, err)
		}
		cfg.JSONLogs = b
	}

	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = seed
		cfg.HasSeed = true
	}

	if v, ok := lookup(EnvWindowWidth); ok && v != "" {
		w, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvWindowWidth, err)
		}
		cfg.WindowWidth = float32(w)
	}

	if v, ok := lookup(EnvWindowHeight); ok && v != "" {
		h, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvWindowHeight, err)
		}
		cfg.WindowHeight = float32(h)
	}

	if v, ok := lookup(EnvMonitorInterval); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvMonitorInterval, err)
		}
		cfg.MonitorInterval = d
	}

	return cfg, cfg.Validate()
}

// parseDuration accepts Go durations ("3s") and bare milliseconds ("3000")
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendBild, BackendOpenCV, BackendImagick:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendBild, BackendOpenCV, BackendImagick)
	}
	if c.AutoInterval <= 0 {
		return fmt.Errorf("auto interval must be positive, got %s", c.AutoInterval)
	}
	if c.MonitorInterval < 0 {
		return fmt.Errorf("monitor interval must not be negative, got %s", c.MonitorInterval)
	}
	if c.WindowWidth < 400 || c.WindowHeight < 300 {
		return fmt.Errorf("window size %.0fx%.0f is below the 400x300 minimum", c.WindowWidth, c.WindowHeight)
	}
	return nil
}
