package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/memory"
	"github.com/pageza/healthy-cookbook/backend/internal/seed"
	"github.com/pageza/healthy-cookbook/backend/internal/server"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()

	fixture, err := seed.DefaultFixture()
	require.NoError(t, err)
	_, err = seed.New(store, zap.NewNop()).WithHashCost(bcrypt.MinCost).Run(context.Background(), fixture)
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: config.Test,
		StoreDriver: config.StoreMemory,
		JWTSecret:   "client-test-secret",
		TokenTTL:    time.Hour,
	}
	ts := httptest.NewServer(server.NewWithDeps(cfg, zap.NewNop(), server.Deps{Store: store}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func str(s string) *string { return &s }
func num(n int) *int       { return &n }

func TestHealth(t *testing.T) {
	ts := newTestAPI(t)
	status, err := New(ts.URL + "/api").Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", status)
}

func TestLoginAndProfile(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()
	c := New(ts.URL + "/api")

	_, err := c.Me(ctx)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))
	assert.Equal(t, http.StatusUnauthorized, apperrors.As(err).HTTPStatus())

	_, err = c.Login(ctx, "guru@healthycookbook.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).HTTPStatus())
	assert.Equal(t, "Invalid credentials", apperrors.As(err).Message)
	assert.Empty(t, c.Token())

	res, err := c.Login(ctx, "guru@healthycookbook.com", "user123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "healthyguru", res.User.Username)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, me.ID)

	updated, err := c.UpdateProfile(ctx, service.ProfileInput{Bio: str("Plants first.")})
	require.NoError(t, err)
	assert.Equal(t, "Plants first.", updated.Bio)

	pub, err := c.PublicProfile(ctx, "healthyguru")
	require.NoError(t, err)
	assert.Equal(t, "Plants first.", pub.Bio)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())
}

func TestRegisterValidationDetails(t *testing.T) {
	ts := newTestAPI(t)
	c := New(ts.URL + "/api")

	_, err := c.Register(context.Background(), service.RegisterInput{Username: "x", Email: "bad"})
	require.Error(t, err)
	appErr := apperrors.As(err)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.NotEmpty(t, appErr.Fields)
}

func TestRecipeRoundTrip(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()
	c := New(ts.URL + "/api")

	cats, _, err := c.Categories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	_, err = c.Register(ctx, service.RegisterInput{
		Username: "planner", Email: "planner@example.com", Password: "secret1",
		FirstName: "Pat", LastName: "Lane",
	})
	require.NoError(t, err)

	created, err := c.CreateRecipe(ctx, service.RecipeInput{
		Title:       str("Lentil Soup"),
		Description: str("A warming bowl of red lentils."),
		Category:    str(cats[0].ID),
		Ingredients: []models.Ingredient{{Name: "red lentils", Amount: 1, Unit: "cup"}},
		Instructions: []models.Instruction{
			{StepNumber: 1, Instruction: "Simmer lentils with stock until soft."},
		},
		Nutrition: &models.Nutrition{Calories: 310, Fiber: 9},
		Servings:  num(4),
		PrepTime:  num(10),
		CookTime:  num(25),
	})
	require.NoError(t, err)
	assert.Equal(t, 35, created.TotalTime)
	assert.Equal(t, "planner", created.Author.Username)

	got, err := c.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lentil Soup", got.Title)

	updated, err := c.UpdateRecipe(ctx, created.ID, service.RecipeInput{Servings: num(6)})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Servings)

	rated, err := c.RateRecipe(ctx, created.ID, 5, "Lovely")
	require.NoError(t, err)
	assert.Equal(t, 1, rated.TotalRatings)
	assert.Equal(t, 5.0, rated.AverageRating)

	fav, err := c.AddFavorite(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fav)
	fav, err = c.IsFavorite(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	favs, err := c.FavoriteRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, favs.Recipes, 1)

	mine, err := c.MyRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, mine.Recipes, 1)

	fav, err = c.RemoveFavorite(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, fav)

	require.NoError(t, c.DeleteRecipe(ctx, created.ID))
	_, err = c.GetRecipe(ctx, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestListRecipesFilters(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()
	c := New(ts.URL + "/api")

	page, err := c.ListRecipes(ctx, service.RecipeQuery{Search: "quinoa power"})
	require.NoError(t, err)
	require.NotEmpty(t, page.Recipes)
	assert.Equal(t, "Quinoa Power Bowl", page.Recipes[0].Title)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 1, page.Pagination.Page)

	page, err = c.ListRecipes(ctx, service.RecipeQuery{PageRequest: service.PageRequest{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Recipes, 2)
	assert.True(t, page.Pagination.HasNext)

	featured, err := c.FeaturedRecipes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, featured.Recipes)

	byUser, err := c.UserRecipes(ctx, "healthyguru", service.PageRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, byUser.Recipes)
}

func TestListDegradesGracefully(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()
	c := New(ts.URL + "/api")

	page, err := c.ListRecipes(ctx, service.RecipeQuery{Difficulty: "extreme"})
	require.Error(t, err)
	require.NotNil(t, page)
	assert.NotNil(t, page.Recipes)
	assert.Empty(t, page.Recipes)
	assert.NotEmpty(t, page.Message)

	page, err = c.FavoriteRecipes(ctx)
	require.Error(t, err)
	assert.Empty(t, page.Recipes)

	down := New("http://127.0.0.1:1/api", WithHTTPClient(&http.Client{Timeout: time.Second}))
	cats, msg, err := down.Categories(ctx)
	require.Error(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
	assert.Equal(t, "Network error", msg)
}

func TestNonJSONErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL).GetRecipe(context.Background(), "abc")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperrors.As(err).HTTPStatus())
}

func TestCategoryAdministration(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()

	admin := New(ts.URL + "/api")
	res, err := admin.Login(ctx, "admin@healthycookbook.com", "admin123")
	require.NoError(t, err)

	created, err := admin.CreateCategory(ctx, service.CategoryInput{Name: str("Bowls"), Description: str("Grain and veggie bowls")})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	toggled, err := admin.ToggleCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	cats, _, err := New(ts.URL + "/api").Categories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, created.ID, c.ID)
	}

	updated, err := admin.UpdateCategory(ctx, created.ID, service.CategoryInput{Color: str("#123456")})
	require.NoError(t, err)
	assert.Equal(t, "#123456", updated.Color)

	// a stored token restores the session in a fresh client
	restored := New(ts.URL + "/api")
	restored.SetToken(res.Token)
	require.NoError(t, restored.DeleteCategory(ctx, created.ID))

	_, err = admin.GetCategory(ctx, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	guest := New(ts.URL + "/api")
	_, err = guest.CreateCategory(ctx, service.CategoryInput{Name: str("Nope")})
	assert.True(t, apperrors.Is(err, apperrors.KindAuthentication))
}

func TestUserFavoritesArePublic(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()
	c := New(ts.URL + "/api")

	_, err := c.Login(ctx, "chef@healthycookbook.com", "user123")
	require.NoError(t, err)
	featured, err := c.FeaturedRecipes(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, featured.Recipes)
	_, err = c.AddFavorite(ctx, featured.Recipes[0].ID)
	require.NoError(t, err)

	favs, err := New(ts.URL+"/api").UserFavorites(ctx, "fitnesschef")
	require.NoError(t, err)
	require.Len(t, favs.Recipes, 1)
	assert.Equal(t, featured.Recipes[0].ID, favs.Recipes[0].ID)
}
