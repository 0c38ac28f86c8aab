package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/healthy-cookbook/backend/internal/testdb"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDisabledCache(t *testing.T) {
	c := New(nil, nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "k", entry{Name: "x"}, time.Minute))

	var got entry
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestRedisCache(t *testing.T) {
	client := testdb.StartRedis(t)
	c := New(client, nil)
	ctx := context.Background()

	var got entry
	assert.ErrorIs(t, c.Get(ctx, "categories", &got), ErrMiss)

	require.NoError(t, c.Set(ctx, "categories", entry{Name: "Soup", Count: 3}, time.Minute))
	require.NoError(t, c.Get(ctx, "categories", &got))
	assert.Equal(t, entry{Name: "Soup", Count: 3}, got)

	c.Invalidate(ctx, "categories")
	assert.ErrorIs(t, c.Get(ctx, "categories", &got), ErrMiss)
}
