package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/healthy-cookbook/backend/internal/cache"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/memory"
)

type testEnv struct {
	store      *repository.Store
	tokens     *TokenService
	categories *CategoryService
	recipes    *RecipeService
	users      *UserService
	auth       *AuthService
}

func newTestEnv(t *testing.T, objects ObjectStore) *testEnv {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	tokens := NewTokenService("test-secret", time.Hour)
	categories := NewCategoryService(store, cache.New(nil, log), log)
	recipes := NewRecipeService(store, categories, NewImageService(objects, log), log)
	users := NewUserService(store, recipes, log)
	auth := NewAuthService(store, tokens, users, log).WithHashCost(bcrypt.MinCost)
	return &testEnv{store: store, tokens: tokens, categories: categories, recipes: recipes, users: users, auth: auth}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		FirstName: "Test",
		LastName:  "Cook",
	})
	require.NoError(t, err)
	return e.reload(t, res.User.ID)
}

func (e *testEnv) admin(t *testing.T, username string) *models.User {
	t.Helper()
	u := e.register(t, username)
	u.Role = models.RoleAdmin
	require.NoError(t, e.store.Users.Update(context.Background(), u))
	return u
}

func (e *testEnv) reload(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.store.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := e.categories.Create(context.Background(), CategoryInput{Name: &name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) recipe(t *testing.T, author *models.User, categoryID, title string, mutate ...func(*RecipeInput)) *models.RecipeView {
	t.Helper()
	in := recipeInput(categoryID, title)
	for _, m := range mutate {
		m(&in)
	}
	v, err := e.recipes.Create(context.Background(), author, in)
	require.NoError(t, err)
	return v
}

func recipeInput(categoryID, title string) RecipeInput {
	return RecipeInput{
		Title:       ptr(title),
		Description: ptr("A wholesome dish for the whole family."),
		Category:    ptr(categoryID),
		Ingredients: []models.Ingredient{{Name: "Oats", Amount: 1, Unit: "cup"}},
		Instructions: []models.Instruction{
			{StepNumber: 2, Instruction: "Serve warm with fruit."},
			{StepNumber: 1, Instruction: "Simmer the oats in milk."},
		},
		Servings: ptr(2),
		PrepTime: ptr(5),
		CookTime: ptr(10),
	}
}

func ptr[T any](v T) *T {
	return &v
}
