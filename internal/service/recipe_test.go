package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

func TestCreateRecipe(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	author := env.register(t, "chef")
	cat := env.category(t, "Breakfast")

	v := env.recipe(t, author, cat.ID, "Overnight Oats", func(in *RecipeInput) {
		in.DietaryTags = []string{"vegan", "gluten-free"}
		in.IsFeatured = ptr(true)
	})

	assert.True(t, models.IsValidID(v.ID))
	assert.Equal(t, author.ID, v.Author.ID)
	assert.Equal(t, "Breakfast", v.Category.Name)
	assert.Equal(t, 15, v.TotalTime)
	assert.Equal(t, 60, v.HealthScore)
	assert.Equal(t, models.DifficultyMedium, v.Difficulty)
	assert.True(t, v.IsPublished)
	assert.False(t, v.IsFeatured, "only admins may feature recipes")
	assert.Equal(t, 1, v.Instructions[0].StepNumber)

	assert.Contains(t, env.reload(t, author.ID).CreatedRecipes, v.ID)
	got, err := env.categories.Get(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RecipeCount)
}

func TestCreateRecipeRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	author := env.register(t, "chef")
	cat := env.category(t, "Dinner")

	_, err := env.recipes.Create(ctx, author, recipeInput(models.NewID(), "Ghost Category"))
	require.Error(t, err)
	assert.Equal(t, "Invalid category", apperrors.As(err).Message)

	in := recipeInput(cat.ID, "Gap")
	in.Instructions = []models.Instruction{
		{StepNumber: 1, Instruction: "Chop everything finely."},
		{StepNumber: 3, Instruction: "Serve immediately please."},
	}
	_, err = env.recipes.Create(ctx, author, in)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	in = recipeInput(cat.ID, "No ingredients")
	in.Ingredients = []models.Ingredient{}
	_, err = env.recipes.Create(ctx, author, in)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUpdateRecipeOwnership(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	other := env.register(t, "other")
	cat := env.category(t, "Lunch")
	v := env.recipe(t, owner, cat.ID, "Club Sandwich")

	_, err := env.recipes.Update(ctx, other, v.ID, RecipeInput{Title: ptr("Hijacked")})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	r, err := env.store.Recipes.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Club Sandwich", r.Title)

	updated, err := env.recipes.Update(ctx, owner, v.ID, RecipeInput{
		Title:       ptr("Better Club Sandwich"),
		CookTime:    ptr(20),
		DietaryTags: []string{"high-protein"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Better Club Sandwich", updated.Title)
	assert.Equal(t, 25, updated.TotalTime)
	assert.Equal(t, 55, updated.HealthScore)
}

func TestUpdateRecipeRecountsCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	from := env.category(t, "Soups")
	to := env.category(t, "Stews")
	v := env.recipe(t, owner, from.ID, "Minestrone")

	_, err := env.recipes.Update(ctx, owner, v.ID, RecipeInput{Category: ptr(to.ID)})
	require.NoError(t, err)

	count := func(id string) int64 {
		c, err := env.categories.Get(ctx, id)
		require.NoError(t, err)
		return c.RecipeCount
	}
	assert.Equal(t, int64(0), count(from.ID))
	assert.Equal(t, int64(1), count(to.ID))

	_, err = env.recipes.Update(ctx, owner, v.ID, RecipeInput{IsPublished: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count(to.ID))
}

func TestDeleteRecipeCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	fan := env.register(t, "fan")
	cat := env.category(t, "Desserts")
	v := env.recipe(t, owner, cat.ID, "Tiramisu")

	_, err := env.recipes.AddFavorite(ctx, fan, v.ID)
	require.NoError(t, err)

	err = env.recipes.Delete(ctx, fan, v.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	require.NoError(t, env.recipes.Delete(ctx, owner, v.ID))

	_, err = env.recipes.Get(ctx, v.ID, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.NotContains(t, env.reload(t, fan.ID).FavoriteRecipes, v.ID)
	assert.NotContains(t, env.reload(t, owner.ID).CreatedRecipes, v.ID)

	require.NoError(t, env.categories.Delete(ctx, cat.ID))
}

func TestGetRecipeVisibilityAndViews(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	cat := env.category(t, "Snacks")
	draft := env.recipe(t, owner, cat.ID, "Secret Snack", func(in *RecipeInput) {
		in.IsPublished = ptr(false)
	})
	public := env.recipe(t, owner, cat.ID, "Trail Mix")

	_, err := env.recipes.Get(ctx, draft.ID, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	_, err = env.recipes.Get(ctx, draft.ID, owner)
	assert.NoError(t, err)

	_, err = env.recipes.Get(ctx, "not-an-id", nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	first, err := env.recipes.Get(ctx, public.ID, nil)
	require.NoError(t, err)
	second, err := env.recipes.Get(ctx, public.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Views+1, second.Views)
	assert.Nil(t, second.IsFavorite)
}

func TestRateRecipe(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	cat := env.category(t, "Mains")
	v := env.recipe(t, owner, cat.ID, "Roast Chicken")

	var raters []*models.User
	for _, name := range []string{"ann", "ben", "cat"} {
		raters = append(raters, env.register(t, name))
	}
	for i, value := range []int{4, 5, 3} {
		res, err := env.recipes.Rate(ctx, raters[i], v.ID, value, "tasty")
		require.NoError(t, err)
		assert.False(t, res.Updated)
	}

	res, err := env.recipes.Rate(ctx, raters[0], v.ID, 1, "")
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 3, res.TotalRatings)
	assert.Equal(t, 3.0, res.AverageRating)

	got, err := env.recipes.Get(ctx, v.ID, nil)
	require.NoError(t, err)
	rating, ok := got.Recipe.RatingBy(raters[0].ID)
	require.True(t, ok)
	assert.Equal(t, "tasty", rating.Comment)
	assert.Len(t, got.Ratings, 3)

	_, err = env.recipes.Rate(ctx, raters[1], v.ID, 6, "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	fan := env.register(t, "fan")
	cat := env.category(t, "Baking")
	v := env.recipe(t, owner, cat.ID, "Sourdough")

	changed, err := env.recipes.AddFavorite(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = env.recipes.AddFavorite(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	fan = env.reload(t, fan.ID)
	assert.Equal(t, []string{v.ID}, fan.FavoriteRecipes)
	is, err := env.recipes.IsFavorite(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.True(t, is)

	favs, err := env.recipes.Favorites(ctx, fan)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.True(t, *favs[0].IsFavorite)

	_, err = env.recipes.AddFavorite(ctx, fan, models.NewID())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	changed, err = env.recipes.RemoveFavorite(ctx, fan, v.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, env.reload(t, fan.ID).FavoriteRecipes)
}

func TestFavoritesHideDrafts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	fan := env.register(t, "fan")
	cat := env.category(t, "Soups")
	draft := env.recipe(t, owner, cat.ID, "Secret Stew", func(in *RecipeInput) {
		in.IsPublished = ptr(false)
	})
	public := env.recipe(t, owner, cat.ID, "Tomato Soup")

	changed, err := env.recipes.AddFavorite(ctx, fan, draft.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.False(t, changed)
	assert.Empty(t, env.reload(t, fan.ID).FavoriteRecipes)

	// the author may keep their own draft on their list
	owner = env.reload(t, owner.ID)
	_, err = env.recipes.AddFavorite(ctx, owner, draft.ID)
	require.NoError(t, err)
	_, err = env.recipes.AddFavorite(ctx, owner, public.ID)
	require.NoError(t, err)
	owner = env.reload(t, owner.ID)

	own, err := env.recipes.Favorites(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	shown, err := env.users.Favorites(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, public.ID, shown[0].ID)

	// unpublishing after the fact hides it and still allows removal
	_, err = env.recipes.AddFavorite(ctx, fan, public.ID)
	require.NoError(t, err)
	_, err = env.recipes.Update(ctx, owner, public.ID, RecipeInput{IsPublished: ptr(false)})
	require.NoError(t, err)
	fan = env.reload(t, fan.ID)
	favs, err := env.recipes.Favorites(ctx, fan)
	require.NoError(t, err)
	assert.Empty(t, favs)
	changed, err = env.recipes.RemoveFavorite(ctx, fan, public.ID)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestListRecipes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := env.register(t, "owner")
	breakfast := env.category(t, "Breakfast")
	dinner := env.category(t, "Dinner")

	env.recipe(t, owner, breakfast.ID, "Pancakes", func(in *RecipeInput) {
		in.Difficulty = ptr(models.DifficultyEasy)
		in.DietaryTags = []string{"vegetarian"}
	})
	env.recipe(t, owner, dinner.ID, "Beef Wellington", func(in *RecipeInput) {
		in.Difficulty = ptr(models.DifficultyHard)
		in.CookTime = ptr(120)
	})
	env.recipe(t, owner, dinner.ID, "Hidden Draft", func(in *RecipeInput) {
		in.IsPublished = ptr(false)
	})

	page, err := env.recipes.List(ctx, RecipeQuery{}, nil)
	require.NoError(t, err)
	assert.Len(t, page.Recipes, 2)
	assert.Equal(t, Pagination{Page: 1, Limit: 12, Total: 2, Pages: 1}, page.Pagination)
	for _, r := range page.Recipes {
		assert.Nil(t, r.Ratings)
	}

	page, err = env.recipes.List(ctx, RecipeQuery{Category: dinner.ID}, nil)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "Beef Wellington", page.Recipes[0].Title)

	page, err = env.recipes.List(ctx, RecipeQuery{MaxTime: 30}, nil)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "Pancakes", page.Recipes[0].Title)

	page, err = env.recipes.List(ctx, RecipeQuery{DietaryTags: []string{"vegan", "vegetarian"}}, nil)
	require.NoError(t, err)
	assert.Len(t, page.Recipes, 1)

	page, err = env.recipes.List(ctx, RecipeQuery{SortBy: "totalTime", SortOrder: "asc", PageRequest: PageRequest{Page: 2, Limit: 1}}, nil)
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "Beef Wellington", page.Recipes[0].Title)
	assert.Equal(t, Pagination{Page: 2, Limit: 1, Total: 2, Pages: 2, HasPrev: true}, page.Pagination)

	_, err = env.recipes.List(ctx, RecipeQuery{SortBy: "title", Difficulty: "extreme"}, nil)
	require.Error(t, err)
	assert.Len(t, apperrors.As(err).Fields, 2)
}

func TestFeaturedPopularAndMine(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	admin := env.admin(t, "admin")
	rater := env.register(t, "rater")
	cat := env.category(t, "Specials")

	featured := env.recipe(t, admin, cat.ID, "Chef Special", func(in *RecipeInput) {
		in.IsFeatured = ptr(true)
	})
	plain := env.recipe(t, admin, cat.ID, "Plain Toast")
	env.recipe(t, admin, cat.ID, "Unfinished", func(in *RecipeInput) {
		in.IsPublished = ptr(false)
	})

	_, err := env.recipes.Rate(ctx, rater, plain.ID, 5, "")
	require.NoError(t, err)
	_, err = env.recipes.Rate(ctx, rater, featured.ID, 3, "")
	require.NoError(t, err)

	list, err := env.recipes.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, featured.ID, list[0].ID)

	list, err = env.recipes.Popular(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, plain.ID, list[0].ID)

	list, err = env.recipes.Mine(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
