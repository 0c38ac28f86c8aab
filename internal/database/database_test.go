package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/gormstore"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/repotest"
	"github.com/pageza/healthy-cookbook/backend/internal/testdb"
)

func TestOpenSQLiteStore(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: config.StoreSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "cookbook.db"),
	}
	ctx := context.Background()
	log := zap.NewNop()

	require.NoError(t, RunMigrations(ctx, cfg, log))

	store, err := OpenStore(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })
	require.NoError(t, store.Ping(ctx))

	c := &models.Category{Name: "Breakfast", IsActive: true}
	c.Normalize()
	require.NoError(t, store.Categories.Create(ctx, c))

	got, err := store.Categories.FindByName(ctx, "breakfast")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestOpenMemoryStore(t *testing.T) {
	store, err := OpenStore(context.Background(), &config.Config{StoreDriver: config.StoreMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, store.Users)
	assert.Nil(t, store.Ping)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreDriver: "cassandra"}, zap.NewNop())
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	cfg := testdb.StartPostgres(t)
	ctx := context.Background()
	log := zap.NewNop()

	require.NoError(t, RunMigrations(ctx, cfg, log))
	db, err := NewGormDB(cfg, log)
	require.NoError(t, err)

	repotest.Run(t, func(t *testing.T) *repository.Store {
		for _, table := range []string{"recipes", "categories", "users"} {
			require.NoError(t, db.Exec("DELETE FROM "+table).Error)
		}
		return gormstore.NewStore(db)
	})
}
