// Package config loads settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Prediction service
	APIURL         string
	RequestTimeout time.Duration

	// Reference server
	ServerPort string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Initial console state
	Params      peak.Parameters
	Temperature float64
	AutoSync    bool
}

// fileConfig mirrors the YAML layout. Pointers distinguish absent keys.
type fileConfig struct {
	APIURL         string           `yaml:"api_url"`
	RequestTimeout string           `yaml:"request_timeout"`
	ServerPort     string           `yaml:"server_port"`
	LogFile        string           `yaml:"log_file"`
	LogLevel       string           `yaml:"log_level"`
	Peak           *peak.Parameters `yaml:"peak"`
	Temperature    *float64         `yaml:"temperature"`
	AutoSync       *bool            `yaml:"auto_sync"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		RequestTimeout: 10 * time.Second,
		ServerPort:     "8000",
		LogFile:        "/tmp/xrdthermo.log",
		LogLevel:       slog.LevelInfo,
		Params:         peak.Parameters{Position: 25.64, Width: 0.22, Height: 270},
		Temperature:    25,
	}
}

// Load reads configuration from environment variables on top of the defaults.
func Load() Config {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile layers defaults, the YAML file at path and then the environment.
// An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := applyYAML(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyYAML(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.APIURL != "" {
		cfg.APIURL = fc.APIURL
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if fc.ServerPort != "" {
		cfg.ServerPort = fc.ServerPort
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	if fc.Peak != nil {
		cfg.Params = *fc.Peak
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.AutoSync != nil {
		cfg.AutoSync = *fc.AutoSync
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIURL = getEnv("XRD_API_URL", cfg.APIURL)
	cfg.ServerPort = getEnv("XRD_SERVER_PORT", getEnv("PORT", cfg.ServerPort))
	cfg.LogFile = getEnv("XRD_LOG_FILE", cfg.LogFile)

	if v := os.Getenv("XRD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv("XRD_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("XRD_AUTO_SYNC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoSync = b
		}
	}
}

// Validate reports settings the console cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("api url is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
