// Package service holds the application operations behind the HTTP handlers.
package service

import (
	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

const (
	DefaultPageLimit     = 12
	MaxPageLimit         = 50
	DefaultUserPageLimit = 20
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize(defaultLimit int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

func newPagination(p PageRequest, total int64) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}

func invalidID(field, message string) error {
	return apperrors.Validation("Validation failed", apperrors.FieldError{Field: field, Message: message})
}
