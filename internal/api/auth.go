package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(h.authService))
		protected.GET("/me", h.Me)
		protected.PUT("/profile", h.UpdateProfile)
		protected.PUT("/change-password", h.ChangePassword)
		protected.DELETE("/account", h.DeleteAccount)
		protected.POST("/logout", h.Logout)
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the change-password payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// account is the signed-in user's own view.
type account struct {
	*models.User
	FullName string `json:"fullName"`
}

func accountView(u *models.User) account {
	return account{User: u, FullName: u.FullName()}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": res.Token, "user": accountView(res.User)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": res.Token, "user": accountView(res.User)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	respond(c, http.StatusOK, gin.H{"user": accountView(user)})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	var req service.ProfileInput
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user, req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Profile updated successfully", gin.H{"user": accountView(updated)})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	if err := h.authService.DeleteAccount(c.Request.Context(), user); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	message(c, http.StatusOK, "Account deleted successfully", nil)
}

// Logout is an acknowledgement; tokens are stateless.
func (h *AuthHandler) Logout(c *gin.Context) {
	message(c, http.StatusOK, "Logged out successfully", nil)
}
