package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// RegisterRoutes registers /users/profile before /users/:user. The :user
// segment is a username on public routes and a user id on admin routes; gin
// requires one wildcard name per path position.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	admin := middleware.RequireAdmin()

	users := router.Group("/users")
	{
		users.GET("/profile", auth, h.GetProfile)
		users.GET("", auth, admin, h.ListUsers)

		users.GET("/:user", h.GetUser)
		users.GET("/:user/recipes", h.GetUserRecipes)
		users.GET("/:user/favorites", h.GetUserFavorites)

		users.PATCH("/:user/role", auth, admin, h.SetRole)
		users.PATCH("/:user/toggle-active", auth, admin, h.ToggleActive)
		users.DELETE("/:user", auth, admin, h.DeleteUser)
	}
}

// RoleRequest is the admin role change payload.
type RoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	respond(c, http.StatusOK, gin.H{"user": accountView(user)})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	profile, err := h.userService.Profile(c.Request.Context(), c.Param("user"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": profile})
}

func (h *UserHandler) GetUserRecipes(c *gin.Context) {
	p := newQueryParser(c)
	page := service.PageRequest{
		Page:  p.Int("page", "Page must be a positive integer"),
		Limit: p.Int("limit", "Limit must be between 1 and 50"),
	}
	if err := p.Err(); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	res, err := h.userService.Recipes(c.Request.Context(), c.Param("user"), page)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": res.Recipes, "pagination": res.Pagination})
}

func (h *UserHandler) GetUserFavorites(c *gin.Context) {
	recipes, err := h.userService.Favorites(c.Request.Context(), c.Param("user"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipes": recipes})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	p := newQueryParser(c)
	q := service.UserQuery{
		PageRequest: service.PageRequest{
			Page:  p.Int("page", "Page must be a positive integer"),
			Limit: p.Int("limit", "Limit must be between 1 and 50"),
		},
		Search: strings.TrimSpace(c.Query("search")),
		Role:   strings.TrimSpace(c.Query("role")),
	}
	if err := p.Err(); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	res, err := h.userService.List(c.Request.Context(), q)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"users": res.Users, "pagination": res.Pagination})
}

func (h *UserHandler) SetRole(c *gin.Context) {
	admin := mustUser(c)
	if admin == nil {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.SetRole(c.Request.Context(), admin, c.Param("user"), req.Role)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "User role updated successfully", gin.H{"user": user})
}

func (h *UserHandler) ToggleActive(c *gin.Context) {
	admin := mustUser(c)
	if admin == nil {
		return
	}
	user, err := h.userService.ToggleActive(c.Request.Context(), admin, c.Param("user"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}
	message(c, http.StatusOK, fmt.Sprintf("User %s successfully", state), gin.H{"user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	admin := mustUser(c)
	if admin == nil {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), admin, c.Param("user")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "User and all associated data deleted successfully", nil)
}
