package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "\n")
}

var vectorStores = map[string]bool{
	"memory":   true,
	"pgvector": true,
}

// ValidateConfig checks the configuration. Malformed values are errors;
// a missing provider credential is only a warning because the server can
// still start and report itself not ready.
func ValidateConfig(cfg *Config) ([]string, error) {
	var (
		errs     ValidationErrors
		warnings []string
	)

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}
	if strings.TrimSpace(cfg.DataPath) == "" {
		errs = append(errs, ValidationError{Field: "DATA_PATH", Message: "must not be empty"})
	}
	if cfg.TopK <= 0 {
		errs = append(errs, ValidationError{Field: "TOP_K", Message: "must be positive"})
	}
	if cfg.EmbeddingBatchSize <= 0 {
		errs = append(errs, ValidationError{Field: "EMBEDDING_BATCH_SIZE", Message: "must be positive"})
	}
	if cfg.ChatTemperature < 0 || cfg.ChatTemperature > 2 {
		errs = append(errs, ValidationError{Field: "CHAT_TEMPERATURE", Message: "must be between 0 and 2"})
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_HOUR", Message: "must not be negative"})
	}
	if !vectorStores[cfg.VectorStore] {
		errs = append(errs, ValidationError{Field: "VECTOR_STORE", Message: fmt.Sprintf("unknown vector store %q", cfg.VectorStore)})
	}
	if cfg.VectorStore == "pgvector" {
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{Field: "DB_HOST", Message: "required when VECTOR_STORE=pgvector"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{Field: "DB_NAME", Message: "required when VECTOR_STORE=pgvector"})
		}
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: fmt.Sprintf("origin %q must start with http:// or https://", origin)})
		}
	}
	if strings.HasPrefix(cfg.DataPath, "s3://") && cfg.AWSRegion == "" {
		warnings = append(warnings, "AWS_REGION is not set; the S3 data source will rely on the shared AWS config")
	}

	if cfg.OpenAIAPIKey == "" {
		warnings = append(warnings, "OPENAI_API_KEY not found in environment variables.")
	}

	if len(errs) > 0 {
		return warnings, errs
	}
	return warnings, nil
}
