package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/repotest"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection to :memory: would see its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repository.Store {
		return NewStore(setupTestDB(t))
	})
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), repository.ErrNotFound)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23505"}), repository.ErrDuplicate)
	assert.ErrorIs(t, translate(errors.New("UNIQUE constraint failed: users.email")), repository.ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestSearchMatchesLikeMetacharactersLiterally(t *testing.T) {
	ctx := context.Background()
	store := NewStore(setupTestDB(t))
	author, category := models.NewID(), models.NewID()

	for _, title := range []string{"50% Whole Wheat Bread", "Five Bean Chili", "Snake_case Salad", "Snakebite Soup"} {
		require.NoError(t, store.Recipes.Create(ctx, repotest.NewRecipe(title, category, author)))
	}

	cases := []struct {
		search string
		want   []string
	}{
		{"50%", []string{"50% Whole Wheat Bread"}},
		{"%", []string{"50% Whole Wheat Bread"}},
		{"e_c", []string{"Snake_case Salad"}},
		{"_", []string{"Snake_case Salad"}},
		{`\`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.search, func(t *testing.T) {
			got, total, err := store.Recipes.Find(ctx, repository.RecipeFilter{Search: tc.search})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), total)
			var titles []string
			for _, r := range got {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tc.want, titles)
		})
	}

	for _, name := range []string{"jo_ann", "joeann"} {
		require.NoError(t, store.Users.Create(ctx, repotest.NewUser(name)))
	}
	users, total, err := store.Users.List(ctx, repository.UserFilter{Search: "o_a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "jo_ann", users[0].Username)
}
