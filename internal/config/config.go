// Package config loads thumb-studio settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"thumb-studio/internal/assets"
	"thumb-studio/internal/fonts"
	"thumb-studio/internal/transform"
)

// Environment overrides.
const (
	EnvExportDir    = "THUMB_EXPORT_DIR"
	EnvAssetTimeout = "THUMB_ASSET_TIMEOUT"
	EnvLogLevel     = "THUMB_LOG_LEVEL"
	EnvMetricsAddr  = "THUMB_METRICS_ADDR"
)

// Config is the top-level configuration.
type Config struct {
	ExportDir       string            `yaml:"export_dir"`
	ViewportPadding float64           `yaml:"viewport_padding"`
	AssetTimeout    time.Duration     `yaml:"asset_timeout"`
	FontTimeout     time.Duration     `yaml:"font_timeout"`
	LogLevel        string            `yaml:"log_level"` // debug | info | warn | error
	MetricsAddr     string            `yaml:"metrics_addr"`
	Fonts           map[string]string `yaml:"fonts"` // font token -> TTF/OTF path
}

// DefaultPath returns ~/.config/thumb-studio/config.yaml, or "" when the
// user config dir is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "thumb-studio", "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the YAML file at path (a missing file is not an error), loads
// a .env file from the working directory if present, and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvExportDir); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv(EnvAssetTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAssetTimeout, err)
		}
		c.AssetTimeout = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ExportDir == "" {
		c.ExportDir = defaultExportDir()
	}
	if c.ViewportPadding <= 0 {
		c.ViewportPadding = transform.DefaultPadding
	}
	if c.AssetTimeout <= 0 {
		c.AssetTimeout = assets.DefaultTimeout
	}
	if c.FontTimeout <= 0 {
		c.FontTimeout = fonts.DefaultReadyTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Level returns the configured slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	pictures := filepath.Join(home, "Pictures")
	if info, err := os.Stat(pictures); err == nil && info.IsDir() {
		return pictures
	}
	return home
}
