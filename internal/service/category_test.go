package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

func TestCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	c := env.category(t, "Vegan Mains")
	assert.Equal(t, models.DefaultCategoryIcon, c.Icon)
	assert.Equal(t, models.DefaultCategoryColor, c.Color)
	assert.True(t, c.IsActive)

	_, err := env.categories.Create(ctx, CategoryInput{Name: ptr("vegan mains")})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	_, err = env.categories.Create(ctx, CategoryInput{Name: ptr("Sides"), Color: ptr("blue")})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	other := env.category(t, "Sides")
	_, err = env.categories.Update(ctx, other.ID, CategoryInput{Name: ptr("VEGAN MAINS")})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	updated, err := env.categories.Update(ctx, c.ID, CategoryInput{Name: ptr("Vegan Mains"), Description: ptr("Plants only")})
	require.NoError(t, err)
	assert.Equal(t, "Plants only", updated.Description)

	toggled, err := env.categories.ToggleActive(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	active, err := env.categories.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, c.ID, active[0].ID)

	require.NoError(t, env.categories.Delete(ctx, other.ID))
	_, err = env.categories.Get(ctx, other.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCategoryDeleteBlockedByRecipes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	author := env.register(t, "author")
	c := env.category(t, "Pasta")
	v := env.recipe(t, author, c.ID, "Carbonara")

	// A stale zero count must not allow deletion.
	require.NoError(t, env.store.Categories.SetRecipeCount(ctx, c.ID, 0))
	err := env.categories.Delete(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	require.NoError(t, env.recipes.Delete(ctx, author, v.ID))
	assert.NoError(t, env.categories.Delete(ctx, c.ID))
}

func TestRecountIgnoresMissingCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.NotPanics(t, func() {
		env.categories.RecountRecipes(context.Background(), "", models.NewID())
	})
}
