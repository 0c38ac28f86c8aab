package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
)

// MockRecipeRepository is a mock implementation of repository.RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

var _ repository.RecipeRepository = (*MockRecipeRepository)(nil)

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Find(ctx context.Context, filter repository.RecipeFilter) ([]*models.Recipe, int64, error) {
	args := m.Called(ctx, filter)
	recipes, _ := args.Get(0).([]*models.Recipe)
	return recipes, args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) CountPublishedInCategory(ctx context.Context, categoryID string) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipeRepository) FindIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	args := m.Called(ctx, authorID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}
