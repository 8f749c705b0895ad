package mitigate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadServiceConfig(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
listen: ":8080"
catalogPath: "catalog.json"
sortBeforeDiff: true
reportTTL: "5m"
logLevel: "debug"
`)
	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected listen :8080, got %s", cfg.Listen)
	}
	if !cfg.SortBeforeDiff {
		t.Fatalf("expected sortBeforeDiff true")
	}
	if cfg.ReportTTLDuration() != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", cfg.ReportTTLDuration())
	}
	// Unset keys keep their defaults.
	if cfg.OutputDir != "outputs" {
		t.Fatalf("expected default output dir, got %s", cfg.OutputDir)
	}
}

func TestLoadServiceConfigMissingFile(t *testing.T) {
	if _, err := LoadServiceConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestServiceConfigValidate(t *testing.T) {
	cfg := DefaultServiceConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}

	bad := DefaultServiceConfig()
	bad.Listen = ""
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for empty listen address")
	}

	bad = DefaultServiceConfig()
	bad.ReportTTL = "soon"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for invalid ttl")
	}

	bad = DefaultServiceConfig()
	bad.LogLevel = "loud"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for invalid log level")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := &ServiceConfig{
		Listen:    ":3000",
		LogDir:    filepath.Join(base, "logs"),
		OutputDir: filepath.Join(base, "outputs"),
		DataDir:   filepath.Join(base, "data"),
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, dir := range []string{cfg.LogDir, cfg.OutputDir, cfg.DataDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, got %v %v", dir, info, err)
		}
	}
}
