package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []*models.User `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// UserQuery filters the admin listing.
type UserQuery struct {
	PageRequest
	Search string
	Role   string
}

type UserService struct {
	store   *repository.Store
	recipes *RecipeService
	log     *zap.Logger
}

func NewUserService(store *repository.Store, recipes *RecipeService, log *zap.Logger) *UserService {
	return &UserService{store: store, recipes: recipes, log: log}
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if !models.IsValidID(id) {
		return nil, invalidID("id", "User ID must be valid")
	}
	u, err := s.store.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to get user", err)
	}
	return u, nil
}

func (s *UserService) byUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.Users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to get user profile", err)
	}
	return u, nil
}

// Profile returns the public view of a user.
func (s *UserService) Profile(ctx context.Context, username string) (*models.PublicProfile, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// Recipes pages through a user's published recipes.
func (s *UserService) Recipes(ctx context.Context, username string, p PageRequest) (*RecipePage, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.recipes.ByAuthor(ctx, u.ID, p)
}

// Favorites lists a user's favorite recipes as the public sees them.
func (s *UserService) Favorites(ctx context.Context, username string) ([]*models.RecipeView, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.recipes.FavoritesSeenBy(ctx, u, nil)
}

// List is the admin listing, newest first.
func (s *UserService) List(ctx context.Context, q UserQuery) (*UserPage, error) {
	page := q.PageRequest.normalize(DefaultUserPageLimit)
	users, total, err := s.store.Users.List(ctx, repository.UserFilter{
		Search: q.Search,
		Role:   q.Role,
		Offset: page.offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to get users", err)
	}
	return &UserPage{Users: users, Pagination: newPagination(page, total)}, nil
}

// SetRole changes another user's role.
func (s *UserService) SetRole(ctx context.Context, admin *models.User, id, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperrors.Validation("Validation failed", apperrors.FieldError{
			Field: "role", Message: "Role must be either user or admin",
		})
	}
	if id == admin.ID {
		return nil, apperrors.Validation("Cannot change your own role")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, u); err != nil {
		return nil, apperrors.Internal("Failed to update user role", err)
	}
	s.log.Info("User role changed", zap.String("user_id", u.ID), zap.String("role", role), zap.String("by", admin.ID))
	return u, nil
}

// ToggleActive activates or deactivates another user.
func (s *UserService) ToggleActive(ctx context.Context, admin *models.User, id string) (*models.User, error) {
	if id == admin.ID {
		return nil, apperrors.Validation("Cannot deactivate your own account")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, u); err != nil {
		return nil, apperrors.Internal("Failed to toggle user status", err)
	}
	s.log.Info("User status changed", zap.String("user_id", u.ID), zap.Bool("active", u.IsActive), zap.String("by", admin.ID))
	return u, nil
}

// Delete removes another user and their data.
func (s *UserService) Delete(ctx context.Context, admin *models.User, id string) error {
	if id == admin.ID {
		return apperrors.Validation("Cannot delete your own account")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteCascade(ctx, u)
}

// deleteCascade removes the user's recipes, prunes them from every
// favorites list, recounts categories and finally removes the user.
func (s *UserService) deleteCascade(ctx context.Context, u *models.User) error {
	if err := s.recipes.DeleteByAuthor(ctx, u.ID); err != nil {
		return apperrors.Internal("Failed to delete user", err)
	}
	if err := s.store.Users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal("Failed to delete user", err)
	}
	s.log.Info("User deleted", zap.String("user_id", u.ID))
	return nil
}
