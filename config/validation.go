package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const minProductionSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}
	if cfg.TokenTTL < time.Minute {
		errs = append(errs, ValidationError{"JWT_EXPIRES_IN", "must be at least one minute"})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, ValidationError{"MAX_BODY_BYTES", "must be positive"})
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errs = append(errs, ValidationError{"MONGODB_URI", "is required for the mongo store"})
		}
		if cfg.MongoDatabase == "" {
			errs = append(errs, ValidationError{"MONGODB_DATABASE", "is required for the mongo store"})
		}
	case StorePostgres:
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "is required for the postgres store"})
			}
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for the sqlite store"})
		}
	case StoreMemory:
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{"STORE_DRIVER", "memory store is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"STORE_DRIVER", fmt.Sprintf("unknown store driver %q", cfg.StoreDriver)})
	}

	if cfg.Environment == Production {
		if cfg.JWTSecret == defaultDevJWTSecret || len(cfg.JWTSecret) < minProductionSecretLength {
			errs = append(errs, ValidationError{"jwt_secret", fmt.Sprintf("must be a non-default secret of at least %d characters", minProductionSecretLength)})
		}
		if cfg.StoreDriver == StorePostgres && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", "secret is required"})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
}
