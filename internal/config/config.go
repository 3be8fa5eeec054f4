package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactive.yaml"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler format.
	DefaultLogFormat = "text"

	// DefaultMaxRunsPerFlush is the default flush budget.
	DefaultMaxRunsPerFlush = 1000

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "reactive"
)

// Scheduler modes.
const (
	// SchedulerSync runs notified effects inline.
	SchedulerSync = "sync"

	// SchedulerBatch queues notified effects and flushes once per turn.
	SchedulerBatch = "batch"
)

// Config represents the complete reactive.yaml configuration.
type Config struct {
	// Log contains logger configuration.
	Log LogConfig `yaml:"log"`

	// Scheduler contains scheduler configuration.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Debug contains engine debug logging switches.
	Debug DebugConfig `yaml:"debug"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

// SchedulerConfig contains scheduler settings.
type SchedulerConfig struct {
	// Mode is sync or batch.
	Mode string `yaml:"mode,omitempty"`

	// MaxRunsPerFlush caps effect runs per loop turn in batch mode.
	// Zero means unlimited.
	MaxRunsPerFlush int `yaml:"maxRunsPerFlush,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	// Enabled registers the engine collectors.
	Enabled bool `yaml:"enabled,omitempty"`

	// Namespace is the Prometheus namespace.
	Namespace string `yaml:"namespace,omitempty"`
}

// DebugConfig mirrors reactive.DebugConfig.
type DebugConfig struct {
	LogEffectRuns bool `yaml:"logEffectRuns,omitempty"`
	LogTriggers   bool `yaml:"logTriggers,omitempty"`
	LogTracks     bool `yaml:"logTracks,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Scheduler: SchedulerConfig{
			Mode:            SchedulerBatch,
			MaxRunsPerFlush: DefaultMaxRunsPerFlush,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reactive.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault is Load, falling back to New when the file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R041").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or omit --config to use defaults")
		}
		return nil, errors.New("R041").Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R040").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("R040").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R041").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Scheduler.Mode == "" {
		c.Scheduler.Mode = SchedulerBatch
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Scheduler.Mode = strings.ToLower(c.Scheduler.Mode)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("R040").
			WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Scheduler.Mode {
	case SchedulerSync, SchedulerBatch:
	default:
		return errors.New("R040").
			WithDetailf("scheduler.mode must be sync or batch, got %q", c.Scheduler.Mode)
	}
	if c.Scheduler.MaxRunsPerFlush < 0 {
		return errors.New("R040").
			WithDetail("scheduler.maxRunsPerFlush must not be negative")
	}
	return nil
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("R040").
			WithDetailf("log.level must be debug, info, warn or error, got %q", level)
	}
}

// NewLogger builds the logger described by the log section, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Batched reports whether the scheduler mode is batch.
func (c *Config) Batched() bool {
	return c.Scheduler.Mode == SchedulerBatch
}
