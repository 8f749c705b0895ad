package mitigate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServiceConfig is the YAML configuration for the serving layer and CLI.
// The engine itself is configured only through its catalog and Options.
type ServiceConfig struct {
	Listen         string `yaml:"listen"`
	CatalogPath    string `yaml:"catalogPath"`
	SortBeforeDiff bool   `yaml:"sortBeforeDiff"`
	LogLevel       string `yaml:"logLevel"`
	LogDir         string `yaml:"logDir"`
	OutputDir      string `yaml:"outputDir"`
	DataDir        string `yaml:"dataDir"`
	ReportTTL      string `yaml:"reportTTL"`
	WebhookURL     string `yaml:"webhookURL"`
}

// DefaultServiceConfig returns the configuration used when no file is
// supplied.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Listen:    ":3000",
		LogLevel:  "info",
		LogDir:    "logs",
		OutputDir: "outputs",
		DataDir:   "data",
		ReportTTL: "15m",
	}
}

// LoadServiceConfig reads a YAML config file over the defaults.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := DefaultServiceConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for values the server cannot start with.
func (c *ServiceConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Listen == "" {
		return fmt.Errorf("config has empty listen address")
	}
	if c.ReportTTL != "" {
		if _, err := time.ParseDuration(c.ReportTTL); err != nil {
			return fmt.Errorf("config has invalid reportTTL %q: %w", c.ReportTTL, err)
		}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config has invalid logLevel %q", c.LogLevel)
	}
	return nil
}

// ReportTTLDuration returns the parsed report TTL, falling back to the
// ledger default on an empty value. Validate catches malformed values.
func (c *ServiceConfig) ReportTTLDuration() time.Duration {
	if c.ReportTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ReportTTL)
	if err != nil {
		return 0
	}
	return d
}

// EnsureDirectories creates the working directories the service expects.
func (c *ServiceConfig) EnsureDirectories() error {
	for _, dir := range []string{c.LogDir, c.OutputDir, c.DataDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
