package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and secrets lookups at empty temp dirs
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_API_KEY_FILE", "SERVER_PORT", "DATA_PATH", "TOP_K",
		"VECTOR_STORE", "DB_HOST", "DB_NAME", "REDIS_URL", "REDIS_HOST", "CHAT_TEMPERATURE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.ServerPort)
	assert.Equal(t, "./recipes.csv", cfg.DataPath)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.ChatModel)
	assert.InDelta(t, 0.3, cfg.ChatTemperature, 1e-9)
	assert.Equal(t, "memory", cfg.VectorStore)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 168*time.Hour, cfg.EmbeddingCacheTTL)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigMissingKeyIsWarning(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Contains(t, cfg.Warnings, "OPENAI_API_KEY not found in environment variables.")
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("TOP_K", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://frontend:5173")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, []string{"http://localhost:5173", "http://frontend:5173"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadConfigFromSecrets(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openai_api_key"), []byte("sk-secret\n"), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.OpenAIAPIKey)
}

func TestLoadConfigSecretsIgnoredInCI(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CI", "true")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openai_api_key"), []byte("sk-secret"), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoadConfigFromKeyFile(t *testing.T) {
	dir := isolate(t)
	keyFile := filepath.Join(dir, "key.txt")
	require.NoError(t, os.WriteFile(keyFile, []byte("  sk-file  "), 0o600))
	t.Setenv("OPENAI_API_KEY_FILE", keyFile)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.OpenAIAPIKey)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := isolate(t)
	content := "server_port: \"9090\"\ndata_path: ./data/korean.csv\nchat_model: gpt-4o-mini\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "./data/korean.csv", cfg.DataPath)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:         "5001",
			DataPath:           "./recipes.csv",
			TopK:               3,
			EmbeddingBatchSize: 32,
			ChatTemperature:    0.3,
			VectorStore:        "memory",
			OpenAIAPIKey:       "sk-test",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.ServerPort = "http" }, "SERVER_PORT"},
		{"zero top k", func(c *Config) { c.TopK = 0 }, "TOP_K"},
		{"unknown store", func(c *Config) { c.VectorStore = "chroma" }, "VECTOR_STORE"},
		{"pgvector without host", func(c *Config) { c.VectorStore = "pgvector"; c.DBName = "hansik" }, "DB_HOST"},
		{"temperature out of range", func(c *Config) { c.ChatTemperature = 3 }, "CHAT_TEMPERATURE"},
		{"origin without scheme", func(c *Config) { c.CORSAllowedOrigins = []string{"localhost:5173"} }, "CORS_ALLOWED_ORIGINS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			_, err := ValidateConfig(cfg)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		warnings, err := ValidateConfig(valid())
		assert.NoError(t, err)
		assert.Empty(t, warnings)
	})
}
