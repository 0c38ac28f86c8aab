package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/middleware"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

// respond writes a success body: {"success": true, ...body}.
func respond(c *gin.Context, status int, body gin.H) {
	out := gin.H{"success": true}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// bindJSON decodes the request body or aborts with 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("Invalid request body", apperrors.FieldError{
			Field: "body", Message: err.Error(),
		}))
		return false
	}
	return true
}

// mustUser returns the authenticated user. Routes using it sit behind
// AuthMiddleware.
func mustUser(c *gin.Context) *models.User {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Authentication("No token, authorization denied"))
		return nil
	}
	return u
}

func viewer(c *gin.Context) *models.User {
	u, _ := middleware.CurrentUser(c)
	return u
}

// queryParser collects query string conversion failures as field errors.
type queryParser struct {
	c      *gin.Context
	fields []apperrors.FieldError
}

func newQueryParser(c *gin.Context) *queryParser {
	return &queryParser{c: c}
}

func (p *queryParser) Int(name, message string) int {
	v := strings.TrimSpace(p.c.Query(name))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fields = append(p.fields, apperrors.FieldError{Field: name, Message: message})
		return 0
	}
	return n
}

func (p *queryParser) Float(name, message string) float64 {
	v := strings.TrimSpace(p.c.Query(name))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fields = append(p.fields, apperrors.FieldError{Field: name, Message: message})
		return 0
	}
	return f
}

// List splits a comma separated value, dropping blanks.
func (p *queryParser) List(name string) []string {
	var out []string
	for _, part := range strings.Split(p.c.Query(name), ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p *queryParser) Err() error {
	if len(p.fields) == 0 {
		return nil
	}
	return apperrors.Validation("Validation failed", p.fields...)
}

func message(c *gin.Context, status int, msg string, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["message"] = msg
	respond(c, status, body)
}
