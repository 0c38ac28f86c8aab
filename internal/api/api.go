// Package api exposes the cookbook over HTTP with gin.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

// Services is everything the handlers need.
type Services struct {
	Auth       *service.AuthService
	Recipes    *service.RecipeService
	Categories *service.CategoryService
	Users      *service.UserService

	// Ping checks the store; nil means always healthy.
	Ping func(ctx context.Context) error

	// Optional write limiters; nil disables limiting.
	RecipeLimiter *middleware.RateLimiter
	RatingLimiter *middleware.RateLimiter
}

// SetupAPI registers every route under /api.
func SetupAPI(router *gin.Engine, svc Services) {
	api := router.Group("/api")
	{
		NewHealthHandler(svc.Ping).RegisterRoutes(api)
		NewAuthHandler(svc.Auth).RegisterRoutes(api)
		NewRecipeHandler(svc.Recipes, svc.Auth, svc.RecipeLimiter, svc.RatingLimiter).RegisterRoutes(api)
		NewCategoryHandler(svc.Categories, svc.Auth).RegisterRoutes(api)
		NewUserHandler(svc.Users, svc.Auth).RegisterRoutes(api)
	}
}

func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.RateLimitMiddleware()
}
