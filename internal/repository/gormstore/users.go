package gormstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = models.NewID()
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return notFoundIfNone(r.db.WithContext(ctx).Model(user).Select("*").Updates(user))
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return notFoundIfNone(r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id))
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]*models.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Role != "" {
			db = db.Where("role = ?", filter.Role)
		}
		if filter.Search != "" {
			like := containsPattern(strings.ToLower(filter.Search))
			db = db.Where(`(LOWER(username) LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`, like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var users []*models.User
	q := r.db.WithContext(ctx).Scopes(scope).Order("created_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

func (r *userRepository) PullFavorites(ctx context.Context, recipeIDs ...string) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cond := tx.Where("favorite_recipes LIKE ?", jsonContains(recipeIDs[0]))
		for _, id := range recipeIDs[1:] {
			cond = cond.Or("favorite_recipes LIKE ?", jsonContains(id))
		}

		var users []*models.User
		if err := tx.Where(cond).Find(&users).Error; err != nil {
			return err
		}
		for _, u := range users {
			for _, id := range recipeIDs {
				u.RemoveFavorite(id)
			}
			if err := tx.Model(u).Select("favorite_recipes").Updates(u).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
