package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Secrets can also be
// injected through GARAGELOG_* environment variables, which win over the file.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL string `yaml:"databaseURL"`

	// Auth is enabled when both fields are set.
	TokenSecret          string `yaml:"tokenSecret"`
	OperatorPasswordHash string `yaml:"operatorPasswordHash"`
	SessionTTL           string `yaml:"sessionTTL"`

	// Write rate limiting is enabled when redisAddr is set.
	RedisAddr               string `yaml:"redisAddr"`
	RedisPassword           string `yaml:"redisPassword"`
	WriteRateLimitPerMinute int    `yaml:"writeRateLimitPerMinute"`

	// Document storage: MinIO when an endpoint is set, otherwise a local
	// directory. Both empty disables document endpoints.
	StorageDir     string `yaml:"storageDir"`
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	// Event publishing is enabled when amqpURL is set.
	AMQPURL        string `yaml:"amqpURL"`
	EventsExchange string `yaml:"eventsExchange"`

	TrustedProxyCIDRs []string `yaml:"trustedProxyCidrs"`
	MaxUploadBytes    int64    `yaml:"maxUploadBytes"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.EventsExchange == "" {
		cfg.EventsExchange = "garagelog.events"
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = "garagelog-documents"
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("GARAGELOG_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("GARAGELOG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GARAGELOG_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("GARAGELOG_TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv("GARAGELOG_OPERATOR_PASSWORD_HASH"); v != "" {
		cfg.OperatorPasswordHash = v
	}
	if v := os.Getenv("GARAGELOG_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("GARAGELOG_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("GARAGELOG_AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("GARAGELOG_MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("GARAGELOG_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("GARAGELOG_MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("GARAGELOG_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
}

// ParseSessionTTL parses the configured session lifetime, defaulting to
// 24h when unset.
func ParseSessionTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse session TTL: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("session TTL must be positive")
	}
	return d, nil
}
