package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/gormstore"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/memory"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/mongostore"
)

// OpenStore connects to the configured backend and returns its repositories.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := NewMongoDatabase(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return mongostore.NewStore(db), nil
	case config.StorePostgres, config.StoreSQLite:
		db, err := NewGormDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return gormstore.NewStore(db), nil
	case config.StoreMemory:
		log.Warn("Using in-memory store, data will not survive a restart")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// NewGormDB opens the SQL backend. PostgreSQL goes through lib/pq.
func NewGormDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		log.Info("Opening SQLite database", zap.String("path", cfg.SQLitePath))
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		// Log connection target (without password)
		log.Info("Connecting to PostgreSQL",
			zap.String("host", cfg.DBHost),
			zap.String("port", cfg.DBPort),
			zap.String("user", cfg.DBUser),
		)
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        cfg.PostgresDSN(),
		})
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}

	// Set connection pool settings
	if cfg.StoreDriver == config.StoreSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("Successfully connected to database", zap.String("driver", db.Dialector.Name()))
	return db, nil
}

// NewMongoDatabase connects to MongoDB and returns the configured database.
func NewMongoDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("Successfully connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return client.Database(cfg.MongoDatabase), nil
}
