// Package config loads settings from an optional YAML file and environment
// variables. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/vocabreader/pkg/lang"
)

// Config holds the configuration of the vocabreader tools.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Pages    lang.PageSizes `yaml:"pages"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds storage configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// IngestConfig controls the article import pipeline.
type IngestConfig struct {
	Workers       int           `yaml:"workers"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// FetchConfig controls web page downloads.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	CheckRobots  bool          `yaml:"check_robots"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "vocabreader.db"},
		Ingest: IngestConfig{
			Workers:       4,
			BatchSize:     20,
			FlushInterval: 100 * time.Millisecond,
		},
		Pages: lang.DefaultPageSizes,
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "vocabreader/" + lang.Version(),
			MaxBodyBytes: 10 << 20,
			CheckRobots:  true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a YAML file over the defaults, then applies environment
// variables.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the tools cannot run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.Pages.Small <= 0 || c.Pages.Medium <= 0 || c.Pages.Large <= 0 {
		return fmt.Errorf("page sizes must be positive, got %+v", c.Pages)
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest workers must be positive, got %d", c.Ingest.Workers)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.Path = GetStringEnv("VOCAB_DB_PATH", c.Database.Path)

	c.Ingest.Workers = GetIntEnv("VOCAB_INGEST_WORKERS", c.Ingest.Workers)
	c.Ingest.BatchSize = GetIntEnv("VOCAB_INGEST_BATCH_SIZE", c.Ingest.BatchSize)
	c.Ingest.FlushInterval = GetDurationEnv("VOCAB_INGEST_FLUSH_INTERVAL", c.Ingest.FlushInterval)

	c.Pages.Small = GetIntEnv("VOCAB_PAGE_SIZE_SMALL", c.Pages.Small)
	c.Pages.Medium = GetIntEnv("VOCAB_PAGE_SIZE_MEDIUM", c.Pages.Medium)
	c.Pages.Large = GetIntEnv("VOCAB_PAGE_SIZE_LARGE", c.Pages.Large)

	c.Fetch.Timeout = GetDurationEnv("VOCAB_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.UserAgent = GetStringEnv("VOCAB_FETCH_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.MaxBodyBytes = int64(GetIntEnv("VOCAB_FETCH_MAX_BODY_BYTES", int(c.Fetch.MaxBodyBytes)))
	c.Fetch.CheckRobots = GetBoolEnv("VOCAB_FETCH_CHECK_ROBOTS", c.Fetch.CheckRobots)

	c.Log.Level = GetStringEnv("VOCAB_LOG_LEVEL", c.Log.Level)
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
