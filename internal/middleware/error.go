package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

const loggerKey = "logger"

// AbortWithError writes err as the uniform JSON error body. Internal errors
// are logged and reported with their safe message only.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	status := appErr.HTTPStatus()

	if status >= http.StatusInternalServerError {
		Logger(c).Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Message: appErr.Message,
		Details: appErr.Fields,
	})
}

// Recovery converts panics into a 500 with the uniform body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		Logger(c).Error("Panic recovered", zap.Any("panic", recovered), zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "Internal Server Error",
			Message: "Internal Server Error",
		})
	})
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithError(c, apperrors.NotFound("Route not found"))
	}
}
