package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/cache"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

const (
	activeCategoriesKey = "categories:active"
	categoryCacheTTL    = 10 * time.Minute
)

// CategoryInput carries create and update fields. Nil means unchanged.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"isActive"`
}

func (in CategoryInput) apply(c *models.Category) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

type CategoryService struct {
	store *repository.Store
	cache *cache.Cache
	log   *zap.Logger
}

func NewCategoryService(store *repository.Store, c *cache.Cache, log *zap.Logger) *CategoryService {
	return &CategoryService{store: store, cache: c, log: log}
}

// ListActive returns active categories sorted by name.
func (s *CategoryService) ListActive(ctx context.Context) ([]*models.Category, error) {
	var cached []*models.Category
	if err := s.cache.Get(ctx, activeCategoriesKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("Category cache read failed", zap.Error(err))
	}

	categories, err := s.store.Categories.List(ctx, true)
	if err != nil {
		return nil, apperrors.Internal("Failed to get categories", err)
	}
	if err := s.cache.Set(ctx, activeCategoriesKey, categories, categoryCacheTTL); err != nil {
		s.log.Warn("Category cache write failed", zap.Error(err))
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	if !models.IsValidID(id) {
		return nil, invalidID("id", "Category ID must be valid")
	}
	c, err := s.store.Categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Category not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to get category", err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	c := &models.Category{IsActive: true}
	in.apply(c)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, c.Name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.store.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Category already exists")
		}
		return nil, apperrors.Internal("Failed to create category", err)
	}
	s.invalidate(ctx)
	s.log.Info("Category created", zap.String("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if err := s.ensureUniqueName(ctx, c.Name, c.ID); err != nil {
			return nil, err
		}
	}

	c.UpdatedAt = time.Now().UTC()
	if err := s.store.Categories.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Category name already exists")
		}
		return nil, apperrors.Internal("Failed to update category", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// ToggleActive flips the active flag.
func (s *CategoryService) ToggleActive(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = !c.IsActive
	c.UpdatedAt = time.Now().UTC()
	if err := s.store.Categories.Update(ctx, c); err != nil {
		return nil, apperrors.Internal("Failed to toggle category status", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// Delete removes a category that no published recipe references. The
// count is refreshed first so a stale zero cannot orphan recipes.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.recount(ctx, c.ID)
	if err != nil {
		return apperrors.Internal("Failed to delete category", err)
	}
	if count > 0 {
		return apperrors.Conflict("Cannot delete category with existing recipes. Please move or delete all recipes first.")
	}
	if err := s.store.Categories.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Category not found")
		}
		return apperrors.Internal("Failed to delete category", err)
	}
	s.invalidate(ctx)
	s.log.Info("Category deleted", zap.String("category_id", c.ID))
	return nil
}

// RecountRecipes refreshes recipeCount for each category. Failures are
// logged; counts are best effort.
func (s *CategoryService) RecountRecipes(ctx context.Context, ids ...string) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.recount(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Failed to recount category recipes", zap.String("category_id", id), zap.Error(err))
		}
	}
	if len(seen) > 0 {
		s.invalidate(ctx)
	}
}

func (s *CategoryService) recount(ctx context.Context, id string) (int64, error) {
	count, err := s.store.Recipes.CountPublishedInCategory(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.store.Categories.SetRecipeCount(ctx, id, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, name, exceptID string) error {
	existing, err := s.store.Categories.FindByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.Internal("Failed to check category name", err)
	case existing.ID != exceptID:
		if exceptID == "" {
			return apperrors.Conflict("Category already exists")
		}
		return apperrors.Conflict("Category name already exists")
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, activeCategoriesKey)
}
