package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
)

type HealthHandler struct {
	ping    func(ctx context.Context) error
	started time.Time
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping, started: time.Now()}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			middleware.AbortWithError(c, apperrors.Internal("Database unavailable", err).WithStatus(http.StatusServiceUnavailable))
			return
		}
	}
	respond(c, http.StatusOK, gin.H{
		"status": "OK",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
