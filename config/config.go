package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

const defaultDevJWTSecret = "dev-secret-change-me"

// RateLimitConfig holds the per-user write limits. A zero limit disables it.
type RateLimitConfig struct {
	RecipeCreateLimit  int           `yaml:"recipe_create_limit"`
	RecipeCreateWindow time.Duration `yaml:"recipe_create_window"`
	RatingLimit        int           `yaml:"rating_limit"`
	RatingWindow       time.Duration `yaml:"rating_window"`
}

// Config holds all configuration for the application
type Config struct {
	Environment Environment `yaml:"-"`
	LogLevel    string      `yaml:"log_level"`

	// Server configuration
	ServerPort   string   `yaml:"server_port"`
	ServerHost   string   `yaml:"server_host"`
	CORSOrigins  []string `yaml:"cors_origins"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`

	// StoreDriver selects the persistence backend: mongo, postgres, sqlite or memory.
	StoreDriver string `yaml:"store_driver"`

	// MongoDB configuration
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// SQL database configuration
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"-"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`
	SQLitePath string `yaml:"sqlite_path"`

	// Redis configuration. Redis is optional; without it caching and rate
	// limiting are disabled.
	RedisURL      string `yaml:"redis_url"`
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`

	// JWT configuration
	JWTSecret string        `yaml:"-"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// S3 image storage. Empty bucket keeps images inline.
	S3Bucket        string `yaml:"s3_bucket"`
	AWSRegion       string `yaml:"aws_region"`
	S3PublicBaseURL string `yaml:"s3_public_base_url"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// LoadConfig creates a new Config instance from defaults, an optional YAML
// file, environment variables and Docker secrets, in that order.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := defaults(env)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	// CI passes secrets as environment variables only
	if env != CI {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults(env Environment) *Config {
	cfg := &Config{
		Environment:   env,
		LogLevel:      "info",
		ServerPort:    "5000",
		ServerHost:    "0.0.0.0",
		CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		MaxBodyBytes:  50 << 20,
		StoreDriver:   StoreMongo,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "healthy_cookbook",
		DBHost:        "localhost",
		DBPort:        "5432",
		DBUser:        "postgres",
		DBName:        "healthy_cookbook",
		DBSSLMode:     "disable",
		SQLitePath:    "healthy_cookbook.db",
		TokenTTL:      24 * time.Hour,
		AWSRegion:     "us-east-1",
		RateLimit: RateLimitConfig{
			RecipeCreateLimit:  20,
			RecipeCreateWindow: time.Hour,
			RatingLimit:        60,
			RatingWindow:       time.Hour,
		},
	}
	if env == Development || env == Test {
		cfg.LogLevel = "debug"
		cfg.JWTSecret = defaultDevJWTSecret
	}
	return cfg
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadEnv overrides cfg with every environment variable that is set.
func loadEnv(cfg *Config) error {
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.ServerPort, "PORT")
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.MongoURI, "MONGODB_URI")
	setString(&cfg.MongoDatabase, "MONGODB_DATABASE")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"REDIS_DB", &cfg.RedisDB},
		{"RATE_LIMIT_RECIPES", &cfg.RateLimit.RecipeCreateLimit},
		{"RATE_LIMIT_RATINGS", &cfg.RateLimit.RatingLimit},
	} {
		if v := os.Getenv(f.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", f.name, err)
			}
			*f.dst = n
		}
	}

	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_BODY_BYTES must be an integer: %w", err)
		}
		cfg.MaxBodyBytes = n
	}

	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN must be a duration: %w", err)
		}
		cfg.TokenTTL = d
	}

	return nil
}

// loadSecrets overrides sensitive values with Docker secrets when present.
func loadSecrets(cfg *Config) {
	for name, dst := range map[string]*string{
		"jwt_secret":     &cfg.JWTSecret,
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
		"mongo_uri":      &cfg.MongoURI,
	} {
		if v := readSecret(name); v != "" {
			*dst = v
		}
	}
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

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether any Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
