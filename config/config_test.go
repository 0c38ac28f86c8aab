package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"CI", "ENV", "CONFIG_FILE", "PORT", "SERVER_PORT", "STORE_DRIVER", "MONGODB_URI",
		"JWT_SECRET", "JWT_EXPIRES_IN", "REDIS_URL", "REDIS_HOST", "CORS_ORIGINS",
		"RATE_LIMIT_RECIPES", "DB_PASSWORD",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("SECRETS_DIR", t.TempDir())
}

func TestLoadConfigWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, defaultDevJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(50<<20), cfg.MaxBodyBytes)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_RECIPES", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.RateLimit.RecipeCreateLimit)
	assert.Contains(t, cfg.PostgresDSN(), "dbname=healthy_cookbook")
}

func TestLoadConfigFileAndSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server_port: "7000"
store_driver: sqlite
sqlite_path: /tmp/cookbook.db
rate_limit:
  rating_limit: 5
  rating_window: 10m
`), 0o600))
	secrets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "jwt_secret"), []byte("from-secret\n"), 0o600))

	t.Setenv("CONFIG_FILE", file)
	t.Setenv("SECRETS_DIR", secrets)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.ServerPort)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/cookbook.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.RateLimit.RatingLimit)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.RatingWindow)
	assert.Equal(t, 20, cfg.RateLimit.RecipeCreateLimit)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestLoadConfigProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "short")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")

	t.Setenv("JWT_SECRET", "a-very-long-production-secret-value-123")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Environment.IsProduction())
}

func TestValidateConfigRejectsUnknownDriver(t *testing.T) {
	cfg := defaults(Development)
	cfg.StoreDriver = "cassandra"

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}
