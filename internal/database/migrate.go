package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/gormstore"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/mongostore"
)

// RunMigrations prepares the configured backend: tables for SQL stores,
// indexes for MongoDB. The memory store needs nothing.
func RunMigrations(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	switch cfg.StoreDriver {
	case config.StorePostgres, config.StoreSQLite:
		db, err := NewGormDB(cfg, log)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		log.Info("Running GORM auto-migration", zap.String("driver", db.Dialector.Name()))
		if err := gormstore.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	case config.StoreMongo:
		db, err := NewMongoDatabase(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer db.Client().Disconnect(ctx)

		log.Info("Creating MongoDB indexes", zap.String("database", db.Name()))
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	case config.StoreMemory:
		log.Info("Memory store needs no migration")
	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return nil
}
