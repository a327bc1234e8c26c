package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from environment variables.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Assets  AssetsConfig  `mapstructure:"assets"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	Extract ExtractConfig `mapstructure:"extract"`
	Clamd   ClamdConfig   `mapstructure:"clamd"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port         int   `mapstructure:"port"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// AssetsConfig controls image reference resolution during hydration.
type AssetsConfig struct {
	// Root anchors repo-relative image references. Injected explicitly so
	// resolution never depends on the binary's own location.
	Root             string `mapstructure:"root"`
	FetchTimeoutSecs int    `mapstructure:"fetch_timeout_secs"`
}

// FetchTimeout returns the per-request timeout for remote asset fetches.
func (a AssetsConfig) FetchTimeout() time.Duration {
	return time.Duration(a.FetchTimeoutSecs) * time.Second
}

// RedisConfig contains the connection settings for job state and the task
// queue.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr renders the host:port form the redis and asynq clients expect.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// ExtractConfig configures the LLM field-extraction collaborator.
type ExtractConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	Model        string `mapstructure:"model"`
}

// ClamdConfig configures the optional upload virus scan. An empty address
// disables scanning.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration solely from environment variables (with
// defaults applied first).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.max_body_bytes", 5<<20)
	v.SetDefault("assets.root", ".")
	v.SetDefault("assets.fetch_timeout_secs", 15)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "reports")
	v.SetDefault("extract.model", "gemini-2.5-flash")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                  "API_PORT",
		"api.max_body_bytes":        "API_MAX_BODY_BYTES",
		"assets.root":               "ASSETS_ROOT",
		"assets.fetch_timeout_secs": "ASSETS_FETCH_TIMEOUT_SECS",
		"redis.host":                "REDIS_HOST",
		"redis.port":                "REDIS_PORT",
		"minio.endpoint":            "MINIO_ENDPOINT",
		"minio.access_key_id":       "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":   "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":             "MINIO_USE_SSL",
		"minio.bucket":              "MINIO_BUCKET",
		"minio.public_base_url":     "MINIO_PUBLIC_BASE_URL",
		"extract.gemini_api_key":    "GEMINI_API_KEY",
		"extract.model":             "GEMINI_MODEL",
		"clamd.addr":                "CLAMD_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.MaxBodyBytes <= 0 {
		return errors.New("api max body bytes must be positive")
	}
	if cfg.Assets.Root == "" {
		return errors.New("assets root is required")
	}
	if cfg.Assets.FetchTimeoutSecs <= 0 {
		return errors.New("assets fetch timeout must be positive")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	return nil
}
