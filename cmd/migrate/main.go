package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/database"
	"github.com/pageza/healthy-cookbook/backend/internal/logger"
)

func main() {
	// Parse command line flags
	driver := flag.String("driver", "", "Override STORE_DRIVER (mongo, postgres, sqlite)")
	timeout := flag.Duration("timeout", time.Minute, "Give up after this long")
	bucketPolicy := flag.Bool("bucket-policy", false, "Also make recipe images in S3_BUCKET publicly readable")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *driver != "" {
		cfg.StoreDriver = *driver
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := database.RunMigrations(ctx, cfg, zlog); err != nil {
		zlog.Fatal("Migration failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	zlog.Info("Migrations applied", zap.String("driver", cfg.StoreDriver))

	if !*bucketPolicy {
		return
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		zlog.Fatal("Failed to configure S3", zap.Error(err))
	}
	if s3cfg == nil {
		zlog.Fatal("S3_BUCKET is not set")
	}
	if err := s3cfg.SetupBucketPolicy(ctx); err != nil {
		zlog.Fatal("Failed to apply bucket policy", zap.String("bucket", s3cfg.BucketName), zap.Error(err))
	}
	zlog.Info("Bucket policy applied", zap.String("bucket", s3cfg.BucketName))
}
