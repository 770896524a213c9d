package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
)

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// Config holds all configuration for the application.
// Precedence: environment > config file > defaults.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Events    EventsConfig    `koanf:"events"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	LogLevel  string          `koanf:"log_level" validate:"oneof=debug info warn error"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// DatasetConfig selects where the six dataset tables are read from
type DatasetConfig struct {
	Source      string     `koanf:"source" validate:"oneof=dir s3 http postgres"`
	Dir         string     `koanf:"dir"`
	S3          S3Config   `koanf:"s3"`
	HTTP        HTTPConfig `koanf:"http"`
	PostgresURL string     `koanf:"postgres_url"`
}

type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// HTTPConfig fetches "<table>.csv" (or "<table>.csv.gz") from a base URL
type HTTPConfig struct {
	BaseURL string        `koanf:"base_url"`
	Gzip    bool          `koanf:"gzip"`
	Timeout time.Duration `koanf:"timeout"`
}

// EventsConfig controls publishing of recommendation-served events to Kafka
type EventsConfig struct {
	Enabled bool     `koanf:"enabled"`
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"min=1"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Dataset: DatasetConfig{
			Source: dataset.SourceDir,
			Dir:    "data",
			S3: S3Config{
				Bucket: "datasets",
				UseSSL: true,
			},
			HTTP: HTTPConfig{
				Timeout: 5 * time.Minute,
			},
		},
		Events: EventsConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "recommendations.served",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 100,
			Window:   time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		LogLevel: "info",
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// Load layers defaults, the optional config file and environment variables, then validates
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			return fmt.Errorf("%s: failed %s validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	switch c.Dataset.Source {
	case dataset.SourceDir:
		if c.Dataset.Dir == "" {
			return fmt.Errorf("dataset dir is required for source %q", c.Dataset.Source)
		}
	case dataset.SourceS3:
		if c.Dataset.S3.Endpoint == "" || c.Dataset.S3.Bucket == "" {
			return fmt.Errorf("s3 endpoint and bucket are required for source %q", c.Dataset.Source)
		}
	case dataset.SourceHTTP:
		if c.Dataset.HTTP.BaseURL == "" {
			return fmt.Errorf("dataset base url is required for source %q", c.Dataset.Source)
		}
	case dataset.SourcePostgres:
		if c.Dataset.PostgresURL == "" {
			return fmt.Errorf("postgres url is required for source %q", c.Dataset.Source)
		}
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("at least one kafka broker must be configured when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("kafka topic is required when events are enabled")
		}
	}

	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SourceConfig converts the dataset settings for dataset.OpenReader
func (d DatasetConfig) SourceConfig() dataset.SourceConfig {
	return dataset.SourceConfig{
		Type: d.Source,
		Dir:  d.Dir,
		S3: dataset.S3Config{
			Endpoint:  d.S3.Endpoint,
			AccessKey: d.S3.AccessKey,
			SecretKey: d.S3.SecretKey,
			Bucket:    d.S3.Bucket,
			Prefix:    d.S3.Prefix,
			UseSSL:    d.S3.UseSSL,
		},
		HTTP: dataset.HTTPConfig{
			BaseURL: d.HTTP.BaseURL,
			Gzip:    d.HTTP.Gzip,
			Timeout: d.HTTP.Timeout,
		},
		PostgresURL: d.PostgresURL,
	}
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma separated lists when they come from the environment
var sliceConfigPaths = []string{
	"events.brokers",
	"cors.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":             "server.port",
	"host":             "server.host",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"request_timeout":  "server.request_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"dataset_source": "dataset.source",
	"dataset_dir":    "dataset.dir",
	"s3_endpoint":    "dataset.s3.endpoint",
	"s3_access_key":  "dataset.s3.access_key",
	"s3_secret_key":  "dataset.s3.secret_key",
	"s3_bucket":      "dataset.s3.bucket",
	"s3_prefix":      "dataset.s3.prefix",
	"s3_use_ssl":     "dataset.s3.use_ssl",
	"postgres_url":   "dataset.postgres_url",
	"database_url":   "dataset.postgres_url",
	"dataset_url":    "dataset.http.base_url",
	"dataset_gzip":   "dataset.http.gzip",

	"events_enabled": "events.enabled",
	"kafka_brokers":  "events.brokers",
	"kafka_topic":    "events.topic",

	"rate_limit_enabled":  "rate_limit.enabled",
	"rate_limit_requests": "rate_limit.requests",
	"rate_limit_window":   "rate_limit.window",

	"cors_origins": "cors.allowed_origins",
	"log_level":    "log_level",
}

// envTransformFunc maps environment variable names to config paths.
// Unknown variables map to "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
