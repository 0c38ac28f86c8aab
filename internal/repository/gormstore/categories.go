package gormstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = models.NewID()
	}
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return notFoundIfNone(r.db.WithContext(ctx).Model(category).Select("*").Updates(category))
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id))
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []*models.Category
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *categoryRepository) SetRecipeCount(ctx context.Context, id string, count int64) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).UpdateColumn("recipe_count", count)
	return notFoundIfNone(res)
}
