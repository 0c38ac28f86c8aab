package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/api"
	"github.com/pageza/healthy-cookbook/backend/internal/cache"
	"github.com/pageza/healthy-cookbook/backend/internal/database"
	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/router"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	router *gin.Engine
	http   *http.Server
	store  *repository.Store
	redis  *redis.Client
}

// Deps are the connected backends a server is built from. Redis and
// Objects are optional.
type Deps struct {
	Store   *repository.Store
	Redis   *redis.Client
	Objects service.ObjectStore
}

// New connects every backend named by cfg and builds the server.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	store, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	deps := Deps{Store: store}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg, log)
		if err != nil {
			// caching and rate limiting are optional
			log.Warn("Redis unavailable, continuing without cache and rate limits", zap.Error(err))
		} else {
			deps.Redis = client
		}
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		if store.Close != nil {
			store.Close(ctx)
		}
		return nil, err
	}
	if s3cfg != nil {
		deps.Objects = service.NewS3Store(s3cfg)
		log.Info("Recipe images stored in S3", zap.String("bucket", s3cfg.BucketName))
	}

	return NewWithDeps(cfg, log, deps), nil
}

// NewWithDeps wires services and routes over already connected backends.
func NewWithDeps(cfg *config.Config, log *zap.Logger, deps Deps) *Server {
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	categories := service.NewCategoryService(deps.Store, cache.New(deps.Redis, log), log)
	recipes := service.NewRecipeService(deps.Store, categories, service.NewImageService(deps.Objects, log), log)
	users := service.NewUserService(deps.Store, recipes, log)
	auth := service.NewAuthService(deps.Store, tokens, users, log)

	svc := api.Services{
		Auth:       auth,
		Recipes:    recipes,
		Categories: categories,
		Users:      users,
		Ping:       deps.Store.Ping,
	}
	if deps.Redis != nil {
		svc.RecipeLimiter = middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RateLimit)
		svc.RatingLimiter = middleware.NewRatingRateLimiter(deps.Redis, cfg.RateLimit)
	}

	return &Server{
		cfg:    cfg,
		log:    log,
		router: router.SetupRouter(cfg, log, svc),
		store:  deps.Store,
		redis:  deps.Redis,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Server listening", zap.String("addr", s.cfg.Address()), zap.String("store", s.cfg.StoreDriver))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.store != nil && s.store.Close != nil {
		if err := s.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	return errors.Join(errs...)
}
