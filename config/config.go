package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Knowledge base
	DataPath string
	TopK     int

	// OpenAI-compatible provider
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	EmbeddingModel     string
	EmbeddingBatchSize int
	ChatModel          string
	ChatTemperature    float64

	// Vector store: "memory" or "pgvector"
	VectorStore string

	// Database configuration (pgvector store)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (embedding cache, rate limiting)
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	RedisURL          string
	EmbeddingCacheTTL time.Duration
	RateLimitPerHour  int

	// S3 data source
	AWSRegion  string
	S3Endpoint string

	// Warnings collected while loading; not fatal.
	Warnings []string
}

// RedisEnabled reports whether any Redis connection settings were provided
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATA_PATH", "./recipes.csv")
	v.SetDefault("TOP_K", 3)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("EMBEDDING_BATCH_SIZE", 32)
	v.SetDefault("CHAT_MODEL", "gpt-3.5-turbo")
	v.SetDefault("CHAT_TEMPERATURE", 0.3)
	v.SetDefault("VECTOR_STORE", "memory")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EMBEDDING_CACHE_TTL", "168h")
	v.SetDefault("RATE_LIMIT_PER_HOUR", 0)
}

// LoadConfig builds the configuration from defaults, an optional config file,
// environment variables and Docker secrets, in increasing order of precedence
// for everything except secrets, which only fill values left empty.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(configDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		ServerPort:         v.GetString("SERVER_PORT"),
		ServerHost:         v.GetString("SERVER_HOST"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DataPath:           v.GetString("DATA_PATH"),
		TopK:               v.GetInt("TOP_K"),
		OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:      strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
		EmbeddingModel:     v.GetString("EMBEDDING_MODEL"),
		EmbeddingBatchSize: v.GetInt("EMBEDDING_BATCH_SIZE"),
		ChatModel:          v.GetString("CHAT_MODEL"),
		ChatTemperature:    v.GetFloat64("CHAT_TEMPERATURE"),
		VectorStore:        strings.ToLower(v.GetString("VECTOR_STORE")),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSL_MODE"),
		RedisHost:          v.GetString("REDIS_HOST"),
		RedisPort:          v.GetString("REDIS_PORT"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RedisURL:           v.GetString("REDIS_URL"),
		EmbeddingCacheTTL:  v.GetDuration("EMBEDDING_CACHE_TTL"),
		RateLimitPerHour:   v.GetInt("RATE_LIMIT_PER_HOUR"),
		AWSRegion:          v.GetString("AWS_REGION"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
	}

	// CI runs only on environment variables; everywhere else Docker secrets
	// back-fill credentials that were not set directly.
	if env != CI {
		loadSecrets(cfg)
	}
	if cfg.OpenAIAPIKey == "" {
		if keyFile := v.GetString("OPENAI_API_KEY_FILE"); keyFile != "" {
			key, err := os.ReadFile(keyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read API key file: %w", err)
			}
			cfg.OpenAIAPIKey = strings.TrimSpace(string(key))
		}
	}

	warnings, err := ValidateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.Warnings = warnings
	for _, w := range warnings {
		log.Printf("Warning: %s", w)
	}

	return cfg, nil
}

// loadSecrets fills empty credentials from Docker secrets
func loadSecrets(cfg *Config) {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = readSecret(name)
		}
	}
	fill(&cfg.OpenAIAPIKey, "openai_api_key")
	fill(&cfg.DBUser, "db_user")
	fill(&cfg.DBPassword, "db_password")
	fill(&cfg.RedisPassword, "redis_password")
	fill(&cfg.RedisURL, "redis_url")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "./config"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
