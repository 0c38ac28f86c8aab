package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	authService   *service.AuthService
	createLimiter *middleware.RateLimiter
	ratingLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService *service.RecipeService, authService *service.AuthService, createLimiter, ratingLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		authService:   authService,
		createLimiter: createLimiter,
		ratingLimiter: ratingLimiter,
	}
}

// RegisterRoutes registers the static paths before /:id so they are not
// captured as ids.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/featured", h.FeaturedRecipes)
		recipes.GET("/popular", h.PopularRecipes)
		recipes.GET("/user", auth, h.MyRecipes)
		recipes.GET("/favorites", auth, h.FavoriteRecipes)

		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", auth, limit(h.createLimiter), h.CreateRecipe)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)

		recipes.POST("/:id/ratings", auth, limit(h.ratingLimiter), h.RateRecipe)

		recipes.GET("/:id/favorite", auth, h.IsFavorite)
		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
	}
}

// RatingRequest is the rating payload.
type RatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p := newQueryParser(c)
	q := service.RecipeQuery{
		PageRequest: service.PageRequest{
			Page:  p.Int("page", "Page must be a positive integer"),
			Limit: p.Int("limit", "Limit must be between 1 and 50"),
		},
		Category:    strings.TrimSpace(c.Query("category")),
		Difficulty:  strings.TrimSpace(c.Query("difficulty")),
		MaxTime:     p.Int("maxTime", "Max time must be a positive integer"),
		MinRating:   p.Float("minRating", "Min rating must be between 0 and 5"),
		DietaryTags: p.List("dietaryTags"),
		Search:      c.Query("search"),
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
	}
	if err := p.Err(); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	page, err := h.recipeService.List(c.Request.Context(), q, viewer(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": page.Recipes, "pagination": page.Pagination})
}

func (h *RecipeHandler) FeaturedRecipes(c *gin.Context) {
	recipes, err := h.recipeService.Featured(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) PopularRecipes(c *gin.Context) {
	recipes, err := h.recipeService.Popular(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) MyRecipes(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	recipes, err := h.recipeService.Mine(c.Request.Context(), user)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) FavoriteRecipes(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	recipes, err := h.recipeService.Favorites(c.Request.Context(), user)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.Get(c.Request.Context(), c.Param("id"), viewer(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	var req service.RecipeInput
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), user, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusCreated, "Recipe created successfully", gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	var req service.RecipeInput
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Recipe updated successfully", gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	if err := h.recipeService.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Recipe deleted successfully", nil)
}

func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	var req RatingRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.recipeService.Rate(c.Request.Context(), user, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	msg := "Rating added successfully"
	if res.Updated {
		msg = "Rating updated successfully"
	}
	message(c, http.StatusOK, msg, gin.H{"averageRating": res.AverageRating, "totalRatings": res.TotalRatings})
}

func (h *RecipeHandler) IsFavorite(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	fav, err := h.recipeService.IsFavorite(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"isFavorite": fav})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	changed, err := h.recipeService.AddFavorite(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	msg := "Recipe added to favorites"
	if !changed {
		msg = "Recipe is already in favorites"
	}
	message(c, http.StatusOK, msg, gin.H{"isFavorite": true})
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	changed, err := h.recipeService.RemoveFavorite(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	msg := "Recipe removed from favorites"
	if !changed {
		msg = "Recipe is not in favorites"
	}
	message(c, http.StatusOK, msg, gin.H{"isFavorite": false})
}
