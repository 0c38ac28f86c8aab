package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/api"
	"github.com/pageza/healthy-cookbook/backend/internal/metrics"
	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
)

// SetupRouter configures the middleware chain and the application routes
func SetupRouter(cfg *config.Config, log *zap.Logger, svc api.Services) *gin.Engine {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(),
		middleware.HTTPMetrics(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)
	router.NoRoute(middleware.NotFound())

	// API routes
	api.SetupAPI(router, svc)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}
