package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	authService     *service.AuthService
}

func NewCategoryHandler(categoryService *service.CategoryService, authService *service.AuthService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, authService: authService}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)

		admin := categories.Group("")
		admin.Use(middleware.AuthMiddleware(h.authService), middleware.RequireAdmin())
		admin.POST("", h.CreateCategory)
		admin.PUT("/:id", h.UpdateCategory)
		admin.PATCH("/:id/toggle-active", h.ToggleActive)
		admin.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListActive(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusCreated, "Category created successfully", gin.H{"category": category})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Category updated successfully", gin.H{"category": category})
}

func (h *CategoryHandler) ToggleActive(c *gin.Context) {
	category, err := h.categoryService.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	state := "deactivated"
	if category.IsActive {
		state = "activated"
	}
	message(c, http.StatusOK, fmt.Sprintf("Category %s successfully", state), gin.H{"category": category})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Category deleted successfully", nil)
}
