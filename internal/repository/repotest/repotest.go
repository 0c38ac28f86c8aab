// Package repotest holds the behaviour every repository.Store must share.
// Each backend's tests call Run with a factory for a fresh, empty store.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) *repository.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("RecipeFind", func(t *testing.T) { testRecipeFind(t, newStore(t)) })
	t.Run("RecipeCounters", func(t *testing.T) { testRecipeCounters(t, newStore(t)) })
}

// NewUser builds a valid user that has not been persisted.
func NewUser(username string) *models.User {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	u.Normalize()
	u.UpdatedAt = u.CreatedAt
	return u
}

// NewRecipe builds a valid published recipe that has not been persisted.
func NewRecipe(title, categoryID, authorID string) *models.Recipe {
	r := &models.Recipe{
		Title:       title,
		Description: "A simple recipe used by the repository tests.",
		Category:    categoryID,
		Author:      authorID,
		Ingredients: []models.Ingredient{{Name: "water", Amount: 1, Unit: "cup"}},
		Instructions: []models.Instruction{
			{StepNumber: 1, Instruction: "Boil the water gently."},
		},
		Servings:    2,
		PrepTime:    5,
		CookTime:    10,
		IsPublished: true,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	r.Normalize()
	r.Recompute()
	r.UpdatedAt = r.CreatedAt
	return r
}

func testUsers(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	repo := store.Users

	anna := NewUser("anna")
	require.NoError(t, repo.Create(ctx, anna))
	require.NotEmpty(t, anna.ID)

	dup := NewUser("anna2")
	dup.Email = anna.Email
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate)

	got, err := repo.FindByEmail(ctx, "ANNA@example.com")
	require.NoError(t, err)
	assert.Equal(t, anna.ID, got.ID)

	got, err = repo.FindByUsername(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, anna.Email, got.Email)

	_, err = repo.FindByID(ctx, models.NewID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	fav1, fav2 := models.NewID(), models.NewID()
	got.AddFavorite(fav1)
	got.AddFavorite(fav2)
	got.Bio = "Cooks soup"
	require.NoError(t, repo.Update(ctx, got))

	ben := NewUser("ben")
	ben.CreatedAt = anna.CreatedAt.Add(time.Second)
	ben.AddFavorite(fav1)
	require.NoError(t, repo.Create(ctx, ben))

	require.NoError(t, repo.PullFavorites(ctx, fav1))

	got, err = repo.FindByID(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cooks soup", got.Bio)
	assert.Equal(t, []string{fav2}, got.FavoriteRecipes)
	got, err = repo.FindByID(ctx, ben.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FavoriteRecipes)

	list, total, err := repo.List(ctx, repository.UserFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, "ben", list[0].Username)

	list, total, err = repo.List(ctx, repository.UserFilter{Search: "ANN"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "anna", list[0].Username)

	require.NoError(t, repo.Delete(ctx, ben.ID))
	assert.ErrorIs(t, repo.Delete(ctx, ben.ID), repository.ErrNotFound)
	missing := NewUser("ghost")
	missing.ID = models.NewID()
	assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
}

func testCategories(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	repo := store.Categories

	soups := &models.Category{Name: "Soups", IsActive: true}
	soups.Normalize()
	desserts := &models.Category{Name: "Desserts", IsActive: true}
	desserts.Normalize()
	hidden := &models.Category{Name: "Archive", IsActive: false}
	hidden.Normalize()
	for _, c := range []*models.Category{soups, desserts, hidden} {
		require.NoError(t, repo.Create(ctx, c))
	}

	assert.ErrorIs(t, repo.Create(ctx, &models.Category{Name: "Soups", Color: models.DefaultCategoryColor}), repository.ErrDuplicate)

	got, err := repo.FindByName(ctx, " soups ")
	require.NoError(t, err)
	assert.Equal(t, soups.ID, got.ID)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Desserts", active[0].Name)
	assert.Equal(t, "Soups", active[1].Name)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.SetRecipeCount(ctx, soups.ID, 7))
	got, err = repo.FindByID(ctx, soups.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.RecipeCount)

	got.Description = "Warm bowls"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByID(ctx, soups.ID)
	require.NoError(t, err)
	assert.Equal(t, "Warm bowls", got.Description)

	require.NoError(t, repo.Delete(ctx, hidden.ID))
	_, err = repo.FindByID(ctx, hidden.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testRecipeFind(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	repo := store.Recipes
	catA, catB := models.NewID(), models.NewID()
	author, other := models.NewID(), models.NewID()
	base := time.Now().UTC().Truncate(time.Second)

	soup := NewRecipe("Lentil Soup", catA, author)
	soup.DietaryTags = []string{"vegan", "gluten-free"}
	soup.Difficulty = models.DifficultyEasy
	soup.CreatedAt = base.Add(-3 * time.Hour)
	require.NoError(t, soup.AddRating(other, 5, "lovely"))
	soup.Recompute()

	stew := NewRecipe("Beef Stew", catA, other)
	stew.DietaryTags = []string{"high-protein"}
	stew.CookTime = 180
	stew.Difficulty = models.DifficultyHard
	stew.CreatedAt = base.Add(-2 * time.Hour)
	stew.Recompute()

	salad := NewRecipe("Green Salad", catB, author)
	salad.DietaryTags = []string{"vegan"}
	salad.IsFeatured = true
	salad.CreatedAt = base.Add(-1 * time.Hour)
	salad.Recompute()

	draft := NewRecipe("Secret Draft", catB, author)
	draft.IsPublished = false
	draft.CreatedAt = base
	draft.Recompute()

	for _, r := range []*models.Recipe{soup, stew, salad, draft} {
		require.NoError(t, repo.Create(ctx, r))
	}

	titles := func(rs []*models.Recipe) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Title
		}
		return out
	}

	all, total, err := repo.Find(ctx, repository.RecipeFilter{PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Green Salad", "Beef Stew", "Lentil Soup"}, titles(all))
	for _, r := range all {
		assert.Empty(t, r.Ratings)
	}

	page, total, err := repo.Find(ctx, repository.RecipeFilter{PublishedOnly: true, Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Beef Stew"}, titles(page))

	cases := []struct {
		name   string
		filter repository.RecipeFilter
		want   []string
	}{
		{"category", repository.RecipeFilter{PublishedOnly: true, Category: catA}, []string{"Beef Stew", "Lentil Soup"}},
		{"difficulty", repository.RecipeFilter{PublishedOnly: true, Difficulty: models.DifficultyHard}, []string{"Beef Stew"}},
		{"max time", repository.RecipeFilter{PublishedOnly: true, MaxTime: 60}, []string{"Green Salad", "Lentil Soup"}},
		{"min rating", repository.RecipeFilter{PublishedOnly: true, MinRating: 4}, []string{"Lentil Soup"}},
		{"any dietary tag", repository.RecipeFilter{PublishedOnly: true, DietaryTags: []string{"gluten-free", "high-protein"}}, []string{"Beef Stew", "Lentil Soup"}},
		{"search", repository.RecipeFilter{PublishedOnly: true, Search: "soup"}, []string{"Lentil Soup"}},
		{"featured", repository.RecipeFilter{PublishedOnly: true, FeaturedOnly: true}, []string{"Green Salad"}},
		{"author incl drafts", repository.RecipeFilter{Author: author}, []string{"Secret Draft", "Green Salad", "Lentil Soup"}},
		{"ids", repository.RecipeFilter{IDs: []string{soup.ID, draft.ID}}, []string{"Secret Draft", "Lentil Soup"}},
		{
			"sort total time asc",
			repository.RecipeFilter{PublishedOnly: true, Sort: []repository.SortKey{{Field: repository.SortTotalTime}}},
			[]string{"Lentil Soup", "Green Salad", "Beef Stew"},
		},
		{
			"sort rating desc",
			repository.RecipeFilter{PublishedOnly: true, Category: catA, Sort: []repository.SortKey{{Field: repository.SortAverageRating, Desc: true}}},
			[]string{"Lentil Soup", "Beef Stew"},
		},
		{
			"sort health desc",
			repository.RecipeFilter{PublishedOnly: true, Sort: []repository.SortKey{{Field: repository.SortHealthScore, Desc: true}, {Field: repository.SortCreatedAt}}},
			[]string{"Lentil Soup", "Beef Stew", "Green Salad"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, total, err := repo.Find(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(got))
			assert.Equal(t, int64(len(tc.want)), total)
		})
	}

	full, err := repo.FindByID(ctx, soup.ID)
	require.NoError(t, err)
	require.Len(t, full.Ratings, 1)
	assert.Equal(t, "lovely", full.Ratings[0].Comment)
	assert.Equal(t, []string{"vegan", "gluten-free"}, full.DietaryTags)
	assert.Equal(t, 5.0, full.AverageRating)
}

func testRecipeCounters(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	repo := store.Recipes
	cat, author := models.NewID(), models.NewID()

	a := NewRecipe("First Dish", cat, author)
	b := NewRecipe("Second Dish", cat, author)
	c := NewRecipe("Hidden Dish", cat, author)
	c.IsPublished = false
	for _, r := range []*models.Recipe{a, b, c} {
		require.NoError(t, repo.Create(ctx, r))
	}

	n, err := repo.CountPublishedInCategory(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.IncrementViews(ctx, a.ID))
	require.NoError(t, repo.IncrementViews(ctx, a.ID))
	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
	assert.ErrorIs(t, repo.IncrementViews(ctx, models.NewID()), repository.ErrNotFound)

	ids, err := repo.FindIDsByAuthor(ctx, author)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID, c.ID}, ids)

	got.IsPublished = false
	require.NoError(t, repo.Update(ctx, got))
	n, err = repo.CountPublishedInCategory(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, b.ID))
	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), repository.ErrNotFound)
}
