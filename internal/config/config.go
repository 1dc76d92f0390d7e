package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dirName        = ".tada"
	configFileName = "config.yaml"

	DefaultServer      = "http://localhost:8000"
	defaultTimeout     = "10s"
	defaultAnimation   = "500ms"
	defaultDeleteDelay = "500ms"
)

// Config is the client configuration, read from ~/.tada/config.yaml.
type Config struct {
	// Base URL of the todo server.
	Server string `yaml:"server"`
	// Per-request timeout.
	Timeout string `yaml:"timeout"`
	// How long a newly appended row stays highlighted.
	Animation string `yaml:"animation"`
	// Delay between a confirmed delete and the row leaving the list.
	DeleteDelay string `yaml:"delete_delay"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // relative paths resolve against the config dir
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:      DefaultServer,
		Timeout:     defaultTimeout,
		Animation:   defaultAnimation,
		DeleteDelay: defaultDeleteDelay,
		Logging: LoggingConfig{
			Level: "info",
			File:  "tada.log",
		},
	}
}

// Dir returns the client state directory: $TADA_HOME, else ~/.tada.
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("TADA_HOME")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// DefaultPath returns the config file location inside Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the YAML file at path. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("TADA_SERVER")); v != "" {
		c.Server = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that every duration parses and the server URL is set.
func (c *Config) Validate() error {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	if c.Server == "" {
		return fmt.Errorf("config: server is empty")
	}
	for name, v := range map[string]string{
		"timeout":      c.Timeout,
		"animation":    c.Animation,
		"delete_delay": c.DeleteDelay,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration { return mustDuration(c.Timeout, defaultTimeout) }
func (c *Config) AnimationDuration() time.Duration {
	return mustDuration(c.Animation, defaultAnimation)
}
func (c *Config) DeleteDelayDuration() time.Duration {
	return mustDuration(c.DeleteDelay, defaultDeleteDelay)
}

// LogPath resolves the log file against dir. Empty means "no file".
func (c *Config) LogPath(dir string) string {
	f := strings.TrimSpace(c.Logging.File)
	if f == "" || filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(dir, f)
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

func mustDuration(s, fallback string) time.Duration {
	if strings.TrimSpace(s) == "" {
		s = fallback
	}
	d, err := parseDuration(s)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
