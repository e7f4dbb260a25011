package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxHTMLBytes is the largest HTML document accepted for conversion.
const DefaultMaxHTMLBytes = 2 << 20

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Beefree    BeefreeConfig    `yaml:"beefree"`
	Conversion ConversionConfig `yaml:"conversion"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// BeefreeConfig holds Beefree HTML Importer API configuration
type BeefreeConfig struct {
	APIToken       string `yaml:"api_token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c BeefreeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConversionConfig controls the import pipeline.
type ConversionConfig struct {
	MaxHTMLBytes   int     `yaml:"max_html_bytes"`
	MergeTagFormat string  `yaml:"merge_tag_format"` // liquid, handlebars or mustache
	PreserveHTML   *bool   `yaml:"preserve_html"`    // keep source HTML on the record (default true)
	ProvenanceKey  string  `yaml:"provenance_key"`   // top-level key injected into Bee JSON
	Workers        int     `yaml:"workers"`          // batch worker pool size
	RatePerSecond  float64 `yaml:"rate_per_second"`  // batch outbound call rate, 0 = unlimited
}

// KeepSourceHTML reports whether imported HTML is stored alongside the JSON.
func (c ConversionConfig) KeepSourceHTML() bool {
	return c.PreserveHTML == nil || *c.PreserveHTML
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis settings used for import locks. Empty Addr disables
// Redis and falls back to PostgreSQL advisory locks.
type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// LockTTL returns the import lock TTL as a duration
func (c RedisConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LoggingConfig holds structured logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Beefree.BaseURL == "" {
		cfg.Beefree.BaseURL = "https://api.getbee.io/v1"
	}
	if cfg.Beefree.TimeoutSeconds == 0 {
		cfg.Beefree.TimeoutSeconds = 30
	}
	if cfg.Conversion.MaxHTMLBytes == 0 {
		cfg.Conversion.MaxHTMLBytes = DefaultMaxHTMLBytes
	}
	if cfg.Conversion.MergeTagFormat == "" {
		cfg.Conversion.MergeTagFormat = "liquid"
	}
	if cfg.Conversion.ProvenanceKey == "" {
		cfg.Conversion.ProvenanceKey = "provenance"
	}
	if cfg.Conversion.Workers == 0 {
		cfg.Conversion.Workers = 4
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Redis.LockTTLSeconds == 0 {
		cfg.Redis.LockTTLSeconds = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
// A missing config file is not an error: defaults plus env apply.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
		applyDefaults(cfg)
	} else if err != nil {
		return nil, err
	}

	if token := os.Getenv("BEEFREE_API_TOKEN"); token != "" {
		cfg.Beefree.APIToken = token
	}
	if baseURL := os.Getenv("BEEFREE_BASE_URL"); baseURL != "" {
		cfg.Beefree.BaseURL = baseURL
	}
	if v := os.Getenv("BEEFREE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Beefree.TimeoutSeconds = n
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
