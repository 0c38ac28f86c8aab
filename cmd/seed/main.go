package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/database"
	"github.com/pageza/healthy-cookbook/backend/internal/logger"
	"github.com/pageza/healthy-cookbook/backend/internal/seed"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture to load instead of the built-in data set")
	keep := flag.Bool("keep", false, "Do not wipe existing data first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	fixture, err := loadFixture(*fixturePath)
	if err != nil {
		zlog.Fatal("Failed to load fixture", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.RunMigrations(ctx, cfg, zlog); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}
	store, err := database.OpenStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open store", zap.Error(err))
	}
	if store.Close != nil {
		defer store.Close(ctx)
	}

	seeder := seed.New(store, zlog)
	if !*keep {
		if err := seeder.Wipe(ctx); err != nil {
			zlog.Fatal("Failed to clear data", zap.Error(err))
		}
	}
	if _, err := seeder.Run(ctx, fixture); err != nil {
		zlog.Fatal("Seeding failed", zap.Error(err))
	}

	fmt.Println("Sample accounts:")
	fmt.Printf("  Admin: %s / %s\n", fixture.Admin.Email, fixture.Admin.Password)
	for i, u := range fixture.Users {
		fmt.Printf("  User %d: %s / %s\n", i+1, u.Email, u.Password)
	}
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.ParseFixture(data)
}
