// Package config loads the governance core's startup configuration:
// environment variables (via envdecode), an optional .env file, and an
// optional YAML override file, in that precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the thin admin HTTP surface (IngestStatement,
// ApproveForTraining, LineageOf, etc. exposed over chi).
type ServerConfig struct {
	Host string `json:"host" yaml:"host" env:"SERVER_HOST"`
	Port int    `json:"port" yaml:"port" env:"SERVER_PORT"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level" env:"LOG_LEVEL"`
	Format     string `json:"format" yaml:"format" env:"LOG_FORMAT"`
	Output     string `json:"output" yaml:"output" env:"LOG_OUTPUT"`
	FilePrefix string `json:"file_prefix" yaml:"file_prefix" env:"LOG_FILE_PREFIX"`
}

// FetchConfig controls the rate-limited fetcher (C1), per spec §6.
type FetchConfig struct {
	IdentificationHeader string        `json:"identification_header" yaml:"identification_header" env:"FETCH_IDENTIFICATION_HEADER"`
	RateLimitPerSecond   float64       `json:"rate_limit_per_second" yaml:"rate_limit_per_second" env:"FETCH_RATE_LIMIT_PER_SECOND"`
	MaxRetries           int           `json:"max_retries" yaml:"max_retries" env:"FETCH_MAX_RETRIES"`
	BackoffMinDelay      time.Duration `json:"backoff_min_delay" yaml:"backoff_min_delay" env:"FETCH_BACKOFF_MIN_DELAY"`
	BackoffMaxDelay      time.Duration `json:"backoff_max_delay" yaml:"backoff_max_delay" env:"FETCH_BACKOFF_MAX_DELAY"`
	PerAttemptTimeout    time.Duration `json:"per_attempt_timeout" yaml:"per_attempt_timeout" env:"FETCH_PER_ATTEMPT_TIMEOUT"`
}

// TokenizationConfig controls the PII tokenizer (C4).
type TokenizationConfig struct {
	Secret       string `json:"-" yaml:"-" env:"TOKENIZATION_SECRET"`
	DefaultLevel string `json:"default_level" yaml:"default_level" env:"TOKENIZATION_DEFAULT_LEVEL"`
}

// RetentionConfig maps an audit event type to its retention duration
// (spec §6). Keys are event-type strings; values are Go duration strings
// ("8760h" for a year) so the table is editable without recompiling.
type RetentionConfig struct {
	Default string            `json:"default" yaml:"default"`
	Table   map[string]string `json:"table" yaml:"table"`
}

// EmbeddingConfig points the contradiction detector (C10) at its external
// embedding provider; the core never computes embeddings itself.
type EmbeddingConfig struct {
	Provider string `json:"provider" yaml:"provider" env:"EMBEDDING_PROVIDER"`
	Endpoint string `json:"endpoint" yaml:"endpoint" env:"EMBEDDING_ENDPOINT"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server       ServerConfig        `json:"server" yaml:"server"`
	Logging      LoggingConfig       `json:"logging" yaml:"logging"`
	Fetch        FetchConfig         `json:"fetch" yaml:"fetch"`
	Tokenization TokenizationConfig  `json:"tokenization" yaml:"tokenization"`
	Retention    RetentionConfig     `json:"retention" yaml:"retention"`
	Embedding    EmbeddingConfig     `json:"embedding" yaml:"embedding"`
}

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			FilePrefix: "governance",
		},
		Fetch: FetchConfig{
			RateLimitPerSecond: 10,
			MaxRetries:         3,
			BackoffMinDelay:    2 * time.Second,
			BackoffMaxDelay:    10 * time.Second,
			PerAttemptTimeout:  30 * time.Second,
		},
		Tokenization: TokenizationConfig{DefaultLevel: "FULL"},
		Retention:    DefaultRetentionTable(),
		Embedding:    EmbeddingConfig{},
	}
}

// DefaultRetentionTable returns the retention floors from spec §6.
func DefaultRetentionTable() RetentionConfig {
	return RetentionConfig{
		Default: "61320h", // 7 years
		Table: map[string]string{
			"LOGIN_SUCCESS":          "8760h",  // 1y
			"LOGIN_FAILURE":         "17520h", // 2y
			"SECURITY_ALERT":        "17520h",
			"UNAUTHORIZED_ACCESS":   "17520h",
			"PRIVILEGE_ESCALATION":  "17520h",
			"DATA_CREATE":           "61320h", // 7y
			"DATA_UPDATE":           "61320h",
			"DATA_DELETE":           "61320h",
			"TRANSACTION":           "61320h",
			"RECORD_CREATED":        "61320h",
			"RECORD_STATE_CHANGED":  "61320h",
		},
	}
}

// Load loads configuration from environment variables, an optional .env
// file, and an optional YAML file named by CONFIG_FILE (or
// configs/config.yaml if CONFIG_FILE is unset).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate enforces spec §6's rate-limiter contract: violating the 10req/s
// ceiling or an empty identification header is a startup configuration
// error, not a runtime one.
func (c *Config) Validate() error {
	if c.Fetch.RateLimitPerSecond <= 0 || c.Fetch.RateLimitPerSecond > 10 {
		return fmt.Errorf("fetch.rate_limit_per_second must be in (0, 10], got %v", c.Fetch.RateLimitPerSecond)
	}
	if strings.TrimSpace(c.Fetch.IdentificationHeader) == "" {
		return fmt.Errorf("fetch.identification_header is required")
	}
	if strings.TrimSpace(c.Tokenization.Secret) == "" {
		return fmt.Errorf("tokenization.secret is required")
	}
	return nil
}

// RetentionFor returns the configured retention duration for eventType,
// falling back to the table's default.
func (r RetentionConfig) RetentionFor(eventType string) (time.Duration, error) {
	raw, ok := r.Table[eventType]
	if !ok {
		raw = r.Default
	}
	return time.ParseDuration(raw)
}
