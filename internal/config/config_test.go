package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Scheduler.Mode != SchedulerBatch {
		t.Errorf("Scheduler.Mode = %q, want %q", cfg.Scheduler.Mode, SchedulerBatch)
	}
	if cfg.Scheduler.MaxRunsPerFlush != DefaultMaxRunsPerFlush {
		t.Errorf("MaxRunsPerFlush = %d", cfg.Scheduler.MaxRunsPerFlush)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing file
	_, err := Load(tmpDir)
	var re *rerrors.ReactiveError
	if !errors.As(err, &re) || re.Code != "R041" {
		t.Fatalf("Load missing = %v, want R041", err)
	}

	configYAML := `log:
  level: DEBUG
  format: json
scheduler:
  mode: sync
  maxRunsPerFlush: 50
metrics:
  enabled: true
debug:
  logTriggers: true
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Batched() {
		t.Error("scheduler should be sync")
	}
	if cfg.Scheduler.MaxRunsPerFlush != 50 {
		t.Errorf("MaxRunsPerFlush = %d, want 50", cfg.Scheduler.MaxRunsPerFlush)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if !cfg.Debug.LogTriggers || cfg.Debug.LogTracks {
		t.Errorf("Debug = %+v", cfg.Debug)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if cfg.Scheduler.Mode != SchedulerBatch || cfg.Path() != "" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"malformed":  "log: [",
		"bad level":  "log:\n  level: loud\n",
		"bad format": "log:\n  format: xml\n",
		"bad mode":   "scheduler:\n  mode: eager\n",
		"bad budget": "scheduler:\n  maxRunsPerFlush: -1\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadFile(path)
			var re *rerrors.ReactiveError
			if !errors.As(err, &re) || re.Code != "R040" {
				t.Errorf("LoadFile = %v, want R040", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := New()
	cfg.Scheduler.Mode = SchedulerSync
	cfg.Debug.LogTracks = true

	if err := cfg.Save(); err == nil {
		t.Error("Save without a path should fail")
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Scheduler.Mode != SchedulerSync || !loaded.Debug.LogTracks {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
	if err := loaded.Save(); err != nil {
		t.Errorf("Save: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warn record, got %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
	if lvl, _ := ParseLevel("Warning"); lvl.String() != "WARN" {
		t.Errorf("ParseLevel(Warning) = %v", lvl)
	}
}
