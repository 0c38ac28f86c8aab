// Package repository declares the persistence contracts shared by the
// document, SQL and in-memory stores.
package repository

import (
	"context"
	"errors"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Sort fields accepted by recipe listings.
const (
	SortCreatedAt     = "createdAt"
	SortAverageRating = "averageRating"
	SortViews         = "views"
	SortTotalTime     = "totalTime"
	SortHealthScore   = "healthScore"
)

var SortFields = []string{SortCreatedAt, SortAverageRating, SortViews, SortTotalTime, SortHealthScore}

// SortKey is one ordering term.
type SortKey struct {
	Field string
	Desc  bool
}

// RecipeFilter selects recipes. Zero values mean "no constraint".
type RecipeFilter struct {
	Category    string
	Author      string
	Difficulty  string
	MaxTime     int
	MinRating   float64
	DietaryTags []string // any of
	Search      string
	IDs         []string

	PublishedOnly bool
	FeaturedOnly  bool

	Sort   []SortKey
	Offset int
	Limit  int
}

// UserFilter selects users for the admin listing.
type UserFilter struct {
	Search string
	Role   string
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	// PullFavorites removes the recipe ids from every user's favorites.
	PullFavorites(ctx context.Context, recipeIDs ...string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Category, error)
	SetRecipeCount(ctx context.Context, id string, count int64) error
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Recipe, error)
	// Find returns one page of matches and the total match count. Ratings
	// are not loaded.
	Find(ctx context.Context, filter RecipeFilter) ([]*models.Recipe, int64, error)
	IncrementViews(ctx context.Context, id string) error
	CountPublishedInCategory(ctx context.Context, categoryID string) (int64, error)
	FindIDsByAuthor(ctx context.Context, authorID string) ([]string, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Recipes    RecipeRepository

	// Ping checks connectivity. Nil for stores that are always up.
	Ping func(ctx context.Context) error
	// Close releases connections. Nil when nothing needs closing.
	Close func(ctx context.Context) error
}
