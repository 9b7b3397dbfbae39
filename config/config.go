package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config stores the application configuration.
// Values come from defaults, then an optional YAML file, then the environment.
type Config struct {
	Port      string `yaml:"port"`
	DataDir   string `yaml:"data_dir"`  // one JSON document per collection
	AudioDir  string `yaml:"audio_dir"` // local audio backend: <id>.<ext>
	WebAppDir string `yaml:"web_dir"`   // built browser UI
	JWTSecret string `yaml:"jwt_secret"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	MaxUploadSize      int64    `yaml:"max_upload_size"` // bytes
	AudioFormats       []string `yaml:"audio_formats"`
	HistoryLimit       int      `yaml:"history_limit"` // per user
	RecommendationSize int      `yaml:"recommendation_size"`
	AuthRateLimit      int      `yaml:"auth_rate_limit"` // requests per minute per client
	TrustProxy         bool     `yaml:"trust_proxy"`     // take the client address from X-Forwarded-For

	// Redis document cache, disabled when RedisAddr is empty
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	// MinIO audio backend, used instead of AudioDir when MinioEndpoint is set
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:               "3000",
		DataDir:            "data",
		AudioDir:           filepath.Join("uploads", "audio"),
		WebAppDir:          "build",
		JWTSecret:          "musicflow-dev-secret",
		LogLevel:           "info",
		MaxUploadSize:      100 << 20,
		AudioFormats:       []string{"mp3", "wav", "flac", "aac", "ogg"},
		HistoryLimit:       1000,
		RecommendationSize: 10,
		AuthRateLimit:      20,
		CacheTTL:           10 * time.Minute,
		MinioBucket:        "musicflow",
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it, a path that cannot be read or parsed is an error.
func Load(path string) (*Config, error) {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.AudioDir = getEnv("AUDIO_DIR", c.AudioDir)
	c.WebAppDir = getEnv("WEB_DIR", c.WebAppDir)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", c.MaxUploadSize)
	c.HistoryLimit = getEnvInt("HISTORY_LIMIT", c.HistoryLimit)
	c.RecommendationSize = getEnvInt("RECOMMENDATION_SIZE", c.RecommendationSize)
	c.AuthRateLimit = getEnvInt("AUTH_RATE_LIMIT", c.AuthRateLimit)
	c.TrustProxy = getEnvBool("TRUST_PROXY", c.TrustProxy)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.MinioEndpoint = getEnv("MINIO_ENDPOINT", c.MinioEndpoint)
	c.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", c.MinioAccessKey)
	c.MinioSecretKey = getEnv("MINIO_SECRET_KEY", c.MinioSecretKey)
	c.MinioBucket = getEnv("MINIO_BUCKET", c.MinioBucket)
	c.MinioUseSSL = getEnvBool("MINIO_USE_SSL", c.MinioUseSSL)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret must be set")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadSize)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
