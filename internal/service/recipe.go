package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/metrics"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

const (
	featuredLimit = 6
	popularLimit  = 10
	popularRating = 4
)

// RecipeInput carries recipe fields from a create or update request. Nil
// fields are left unchanged.
type RecipeInput struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Image        *string              `json:"image"`
	ImageAltText *string              `json:"imageAltText"`
	Category     *string              `json:"category"`
	Ingredients  []models.Ingredient  `json:"ingredients"`
	Instructions []models.Instruction `json:"instructions"`
	Nutrition    *models.Nutrition    `json:"nutrition"`
	Servings     *int                 `json:"servings"`
	PrepTime     *int                 `json:"prepTime"`
	CookTime     *int                 `json:"cookTime"`
	Difficulty   *string              `json:"difficulty"`
	DietaryTags  []string             `json:"dietaryTags"`
	IsPublished  *bool                `json:"isPublished"`
	IsFeatured   *bool                `json:"isFeatured"`
}

func (in *RecipeInput) apply(r *models.Recipe, byAdmin bool) {
	setString(&r.Title, in.Title)
	setString(&r.Description, in.Description)
	if in.Image != nil && *in.Image != r.Image {
		r.Image = *in.Image
		r.ImagePublicID = ""
	}
	setString(&r.ImageAltText, in.ImageAltText)
	setString(&r.Category, in.Category)
	if in.Ingredients != nil {
		r.Ingredients = in.Ingredients
	}
	if in.Instructions != nil {
		r.Instructions = in.Instructions
	}
	if in.Nutrition != nil {
		r.Nutrition = in.Nutrition
	}
	setInt(&r.Servings, in.Servings)
	setInt(&r.PrepTime, in.PrepTime)
	setInt(&r.CookTime, in.CookTime)
	setString(&r.Difficulty, in.Difficulty)
	if in.DietaryTags != nil {
		r.DietaryTags = in.DietaryTags
	}
	if in.IsPublished != nil {
		r.IsPublished = *in.IsPublished
	}
	if in.IsFeatured != nil && byAdmin {
		r.IsFeatured = *in.IsFeatured
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// RecipeQuery is a listing request over published recipes.
type RecipeQuery struct {
	PageRequest
	Category    string
	Difficulty  string
	MaxTime     int
	MinRating   float64
	DietaryTags []string
	Search      string
	SortBy      string
	SortOrder   string
}

func (q RecipeQuery) validate() error {
	var fields []apperrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperrors.FieldError{Field: field, Message: msg})
	}
	if q.Page < 0 {
		add("page", "Page must be a positive integer")
	}
	if q.Limit < 0 || q.Limit > MaxPageLimit {
		add("limit", "Limit must be between 1 and 50")
	}
	if q.Category != "" && !models.IsValidID(q.Category) {
		add("category", "Category must be a valid ID")
	}
	switch q.Difficulty {
	case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		add("difficulty", "Difficulty must be easy, medium, or hard")
	}
	if q.MaxTime < 0 {
		add("maxTime", "Max time must be a positive integer")
	}
	if q.MinRating < 0 || q.MinRating > 5 {
		add("minRating", "Min rating must be between 0 and 5")
	}
	if q.SortBy != "" && !repository.IsSortField(q.SortBy) {
		add("sortBy", "Invalid sort field")
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		add("sortOrder", "Sort order must be asc or desc")
	}
	if len(fields) == 0 {
		return nil
	}
	return apperrors.Validation("Validation failed", fields...)
}

// RecipePage is one page of recipe views.
type RecipePage struct {
	Recipes    []*models.RecipeView `json:"recipes"`
	Pagination Pagination           `json:"pagination"`
}

// RatingResult reports the recipe's rating summary after a rating write.
type RatingResult struct {
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
	Updated       bool    `json:"-"`
}

type RecipeService struct {
	store      *repository.Store
	categories *CategoryService
	images     *ImageService
	log        *zap.Logger
}

func NewRecipeService(store *repository.Store, categories *CategoryService, images *ImageService, log *zap.Logger) *RecipeService {
	return &RecipeService{store: store, categories: categories, images: images, log: log}
}

// List returns a filtered, sorted page of published recipes.
func (s *RecipeService) List(ctx context.Context, q RecipeQuery, viewer *models.User) (*RecipePage, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	page := q.PageRequest.normalize(DefaultPageLimit)

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = repository.SortCreatedAt
	}
	filter := repository.RecipeFilter{
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		MaxTime:       q.MaxTime,
		MinRating:     q.MinRating,
		DietaryTags:   q.DietaryTags,
		Search:        strings.TrimSpace(q.Search),
		PublishedOnly: true,
		Sort:          []repository.SortKey{{Field: sortBy, Desc: q.SortOrder != "asc"}},
		Offset:        page.offset(),
		Limit:         page.Limit,
	}

	recipes, total, err := s.store.Recipes.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to get recipes", err)
	}
	views, err := s.views(ctx, recipes, viewer, false)
	if err != nil {
		return nil, err
	}
	return &RecipePage{Recipes: views, Pagination: newPagination(page, total)}, nil
}

// Featured returns up to six published, featured recipes by rating.
func (s *RecipeService) Featured(ctx context.Context) ([]*models.RecipeView, error) {
	return s.find(ctx, "Failed to get featured recipes", repository.RecipeFilter{
		PublishedOnly: true,
		FeaturedOnly:  true,
		Sort:          []repository.SortKey{{Field: repository.SortAverageRating, Desc: true}},
		Limit:         featuredLimit,
	}, nil)
}

// Popular returns well-rated published recipes, most viewed first.
func (s *RecipeService) Popular(ctx context.Context) ([]*models.RecipeView, error) {
	return s.find(ctx, "Failed to get popular recipes", repository.RecipeFilter{
		PublishedOnly: true,
		MinRating:     popularRating,
		Sort: []repository.SortKey{
			{Field: repository.SortViews, Desc: true},
			{Field: repository.SortAverageRating, Desc: true},
		},
		Limit: popularLimit,
	}, nil)
}

// Mine returns every recipe the user authored, drafts included.
func (s *RecipeService) Mine(ctx context.Context, user *models.User) ([]*models.RecipeView, error) {
	return s.find(ctx, "Failed to fetch your recipes", repository.RecipeFilter{
		Author: user.ID,
		Sort:   []repository.SortKey{{Field: repository.SortCreatedAt, Desc: true}},
	}, user)
}

// Favorites returns the recipes on the user's own favorites list.
func (s *RecipeService) Favorites(ctx context.Context, user *models.User) ([]*models.RecipeView, error) {
	return s.FavoritesSeenBy(ctx, user, user)
}

// FavoritesSeenBy returns user's favorites as viewer may see them: drafts
// are dropped unless viewer wrote them. A nil viewer sees published
// recipes only.
func (s *RecipeService) FavoritesSeenBy(ctx context.Context, user, viewer *models.User) ([]*models.RecipeView, error) {
	if len(user.FavoriteRecipes) == 0 {
		return []*models.RecipeView{}, nil
	}
	recipes, _, err := s.store.Recipes.Find(ctx, repository.RecipeFilter{
		IDs:  user.FavoriteRecipes,
		Sort: []repository.SortKey{{Field: repository.SortCreatedAt, Desc: true}},
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to get favorite recipes", err)
	}
	visible := recipes[:0]
	for _, r := range recipes {
		if visibleTo(r, viewer) {
			visible = append(visible, r)
		}
	}
	return s.views(ctx, visible, user, false)
}

func visibleTo(r *models.Recipe, viewer *models.User) bool {
	return r.IsPublished || (viewer != nil && viewer.ID == r.Author)
}

// ByAuthor pages through an author's published recipes.
func (s *RecipeService) ByAuthor(ctx context.Context, authorID string, p PageRequest) (*RecipePage, error) {
	page := p.normalize(DefaultPageLimit)
	recipes, total, err := s.store.Recipes.Find(ctx, repository.RecipeFilter{
		Author:        authorID,
		PublishedOnly: true,
		Sort:          []repository.SortKey{{Field: repository.SortCreatedAt, Desc: true}},
		Offset:        page.offset(),
		Limit:         page.Limit,
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to get user recipes", err)
	}
	views, err := s.views(ctx, recipes, nil, false)
	if err != nil {
		return nil, err
	}
	return &RecipePage{Recipes: views, Pagination: newPagination(page, total)}, nil
}

func (s *RecipeService) find(ctx context.Context, failure string, filter repository.RecipeFilter, viewer *models.User) ([]*models.RecipeView, error) {
	recipes, _, err := s.store.Recipes.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(failure, err)
	}
	return s.views(ctx, recipes, viewer, false)
}

// Get returns one recipe and counts the view. Drafts are visible only to
// their author.
func (s *RecipeService) Get(ctx context.Context, id string, viewer *models.User) (*models.RecipeView, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(r, viewer) {
		return nil, apperrors.NotFound("Recipe not found")
	}

	if err := s.store.Recipes.IncrementViews(ctx, r.ID); err != nil {
		s.log.Warn("Failed to increment recipe views", zap.String("recipe_id", r.ID), zap.Error(err))
	} else {
		r.Views++
	}

	views, err := s.views(ctx, []*models.Recipe{r}, viewer, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Create stores a new recipe authored by author.
func (s *RecipeService) Create(ctx context.Context, author *models.User, in RecipeInput) (*models.RecipeView, error) {
	if in.Category == nil || !models.IsValidID(*in.Category) {
		return nil, invalidID("category", "Category must be a valid ID")
	}
	if err := s.requireCategory(ctx, *in.Category); err != nil {
		return nil, err
	}

	r := &models.Recipe{
		ID:          models.NewID(),
		Author:      author.ID,
		IsPublished: true,
	}
	in.apply(r, author.IsAdmin())
	if err := s.prepare(ctx, r, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := s.store.Recipes.Create(ctx, r); err != nil {
		s.images.Remove(ctx, r)
		return nil, apperrors.Internal("Failed to create recipe", err)
	}

	s.trackCreated(ctx, author.ID, r.ID)
	s.categories.RecountRecipes(ctx, r.Category)
	metrics.RecipesCreated.Inc()
	s.log.Info("Recipe created", zap.String("recipe_id", r.ID), zap.String("author_id", author.ID))

	views, err := s.views(ctx, []*models.Recipe{r}, author, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Update applies the owner's edits.
func (s *RecipeService) Update(ctx context.Context, user *models.User, id string, in RecipeInput) (*models.RecipeView, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Author != user.ID {
		return nil, apperrors.Authorization("Not authorized to update this recipe")
	}

	oldCategory, wasPublished, oldImageKey := r.Category, r.IsPublished, r.ImagePublicID
	if in.Category != nil && *in.Category != oldCategory {
		if !models.IsValidID(*in.Category) {
			return nil, invalidID("category", "Category must be a valid ID")
		}
		if err := s.requireCategory(ctx, *in.Category); err != nil {
			return nil, err
		}
	}

	in.apply(r, user.IsAdmin())
	if err := s.prepare(ctx, r, oldImageKey); err != nil {
		return nil, err
	}

	r.UpdatedAt = time.Now().UTC()
	if err := s.store.Recipes.Update(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Recipe not found")
		}
		return nil, apperrors.Internal("Failed to update recipe", err)
	}

	if r.Category != oldCategory || r.IsPublished != wasPublished {
		s.categories.RecountRecipes(ctx, oldCategory, r.Category)
	}

	views, err := s.views(ctx, []*models.Recipe{r}, user, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Delete removes the owner's recipe and everything that points at it.
func (s *RecipeService) Delete(ctx context.Context, user *models.User, id string) error {
	r, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if r.Author != user.ID {
		return apperrors.Authorization("Not authorized to delete this recipe")
	}

	if err := s.store.Recipes.Delete(ctx, r.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Recipe not found")
		}
		return apperrors.Internal("Failed to delete recipe", err)
	}

	s.untrackCreated(ctx, r.Author, r.ID)
	if err := s.store.Users.PullFavorites(ctx, r.ID); err != nil {
		s.log.Warn("Failed to remove recipe from favorites", zap.String("recipe_id", r.ID), zap.Error(err))
	}
	s.images.Remove(ctx, r)
	s.categories.RecountRecipes(ctx, r.Category)
	metrics.RecipesDeleted.Inc()
	s.log.Info("Recipe deleted", zap.String("recipe_id", r.ID), zap.String("author_id", r.Author))
	return nil
}

// DeleteByAuthor removes every recipe an author owns, as part of deleting
// the account.
func (s *RecipeService) DeleteByAuthor(ctx context.Context, authorID string) error {
	ids, err := s.store.Recipes.FindIDsByAuthor(ctx, authorID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	categories := make([]string, 0, len(ids))
	for _, id := range ids {
		r, err := s.store.Recipes.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.store.Recipes.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		s.images.Remove(ctx, r)
		categories = append(categories, r.Category)
		metrics.RecipesDeleted.Inc()
	}

	if err := s.store.Users.PullFavorites(ctx, ids...); err != nil {
		return err
	}
	s.categories.RecountRecipes(ctx, categories...)
	return nil
}

// Rate records the user's rating, replacing an earlier one.
func (s *RecipeService) Rate(ctx context.Context, user *models.User, id string, value int, comment string) (*RatingResult, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(r, user) {
		return nil, apperrors.NotFound("Recipe not found")
	}

	updated, err := r.UpsertRating(user.ID, value, strings.TrimSpace(comment))
	if err != nil {
		return nil, err
	}
	r.Recompute()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.Recipes.Update(ctx, r); err != nil {
		return nil, apperrors.Internal("Failed to add rating", err)
	}

	result := "created"
	if updated {
		result = "updated"
	}
	metrics.RatingsTotal.WithLabelValues(result).Inc()
	return &RatingResult{AverageRating: r.AverageRating, TotalRatings: r.TotalRatings, Updated: updated}, nil
}

// IsFavorite reports whether the recipe is on the user's favorites list.
func (s *RecipeService) IsFavorite(ctx context.Context, user *models.User, id string) (bool, error) {
	if !models.IsValidID(id) {
		return false, invalidID("id", "Recipe ID must be valid")
	}
	return user.HasFavorite(id), nil
}

// AddFavorite puts the recipe on the user's favorites list. It reports
// whether the list changed.
func (s *RecipeService) AddFavorite(ctx context.Context, user *models.User, id string) (bool, error) {
	return s.toggleFavorite(ctx, user, id, true, user.AddFavorite, "Failed to add to favorites")
}

// RemoveFavorite takes the recipe off the user's favorites list.
func (s *RecipeService) RemoveFavorite(ctx context.Context, user *models.User, id string) (bool, error) {
	return s.toggleFavorite(ctx, user, id, false, user.RemoveFavorite, "Failed to remove from favorites")
}

func (s *RecipeService) toggleFavorite(ctx context.Context, user *models.User, id string, adding bool, change func(string) bool, failure string) (bool, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	// a recipe unpublished after it was favorited can still be removed
	if adding && !visibleTo(r, user) {
		return false, apperrors.NotFound("Recipe not found")
	}
	if !change(id) {
		return false, nil
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.store.Users.Update(ctx, user); err != nil {
		return false, apperrors.Internal(failure, err)
	}
	return true, nil
}

func (s *RecipeService) load(ctx context.Context, id string) (*models.Recipe, error) {
	if !models.IsValidID(id) {
		return nil, invalidID("id", "Recipe ID must be valid")
	}
	r, err := s.store.Recipes.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Recipe not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to get recipe", err)
	}
	return r, nil
}

func (s *RecipeService) requireCategory(ctx context.Context, id string) error {
	_, err := s.store.Categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.Validation("Invalid category", apperrors.FieldError{Field: "category", Message: "Category does not exist"})
	}
	if err != nil {
		return apperrors.Internal("Failed to check category", err)
	}
	return nil
}

// prepare normalizes, derives, validates and stores the image, in that order.
func (s *RecipeService) prepare(ctx context.Context, r *models.Recipe, previousImageKey string) error {
	r.Normalize()
	r.Recompute()
	if err := r.Validate(); err != nil {
		return err
	}
	return s.images.Attach(ctx, r, previousImageKey)
}

func (s *RecipeService) trackCreated(ctx context.Context, userID, recipeID string) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err == nil {
		u.AddCreated(recipeID)
		err = s.store.Users.Update(ctx, u)
	}
	if err != nil {
		s.log.Warn("Failed to record created recipe", zap.String("user_id", userID), zap.String("recipe_id", recipeID), zap.Error(err))
	}
}

func (s *RecipeService) untrackCreated(ctx context.Context, userID, recipeID string) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err == nil {
		u.RemoveCreated(recipeID)
		err = s.store.Users.Update(ctx, u)
	}
	if err != nil {
		s.log.Warn("Failed to update created recipes", zap.String("user_id", userID), zap.String("recipe_id", recipeID), zap.Error(err))
	}
}

// views resolves category and author references. Ratings are included only
// when withRatings is set.
func (s *RecipeService) views(ctx context.Context, recipes []*models.Recipe, viewer *models.User, withRatings bool) ([]*models.RecipeView, error) {
	categories := make(map[string]*models.CategoryRef)
	authors := make(map[string]*models.UserRef)

	out := make([]*models.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		cat, ok := categories[r.Category]
		if !ok {
			c, err := s.store.Categories.FindByID(ctx, r.Category)
			switch {
			case err == nil:
				cat = c.Ref()
			case errors.Is(err, repository.ErrNotFound):
				cat = &models.CategoryRef{ID: r.Category}
			default:
				return nil, apperrors.Internal("Failed to load recipe category", err)
			}
			categories[r.Category] = cat
		}

		author, ok := authors[r.Author]
		if !ok {
			u, err := s.store.Users.FindByID(ctx, r.Author)
			switch {
			case err == nil:
				author = u.Ref()
			case errors.Is(err, repository.ErrNotFound):
				author = &models.UserRef{ID: r.Author}
			default:
				return nil, apperrors.Internal("Failed to load recipe author", err)
			}
			authors[r.Author] = author
		}

		view := &models.RecipeView{Recipe: r, Category: cat, Author: author}
		if withRatings {
			view.Ratings = r.Ratings
			if view.Ratings == nil {
				view.Ratings = []models.Rating{}
			}
		}
		if viewer != nil {
			fav := viewer.HasFavorite(r.ID)
			view.IsFavorite = &fav
		}
		out = append(out, view)
	}
	return out, nil
}
