package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/healthy-cookbook/backend/config"
	"github.com/pageza/healthy-cookbook/backend/internal/client"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/memory"
	"github.com/pageza/healthy-cookbook/backend/internal/seed"
	"github.com/pageza/healthy-cookbook/backend/internal/server"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

type cli struct {
	t     *testing.T
	api   string
	state string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	store := memory.NewStore()
	fixture, err := seed.DefaultFixture()
	require.NoError(t, err)
	_, err = seed.New(store, zap.NewNop()).WithHashCost(bcrypt.MinCost).Run(context.Background(), fixture)
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: config.Test,
		StoreDriver: config.StoreMemory,
		JWTSecret:   "cli-test-secret",
		TokenTTL:    time.Hour,
	}
	ts := httptest.NewServer(server.NewWithDeps(cfg, zap.NewNop(), server.Deps{Store: store}).Handler())
	t.Cleanup(ts.Close)

	return &cli{t: t, api: ts.URL + "/api", state: filepath.Join(t.TempDir(), "state.json")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", c.api, "--state", c.state}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) loadState() *client.State {
	c.t.Helper()
	st, err := client.NewLocalStore(c.state).Load()
	require.NoError(c.t, err)
	return st
}

func TestLoginPersistsSession(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = c.run("login", "--email", "guru@healthycookbook.com", "--password", "nope")
	require.Error(t, err)

	out := c.mustRun("login", "--email", "guru@healthycookbook.com", "--password", "user123")
	assert.Contains(t, out, "Signed in as healthyguru")
	assert.True(t, c.loadState().SignedIn())

	out = c.mustRun("whoami")
	assert.Contains(t, out, "guru@healthycookbook.com")

	c.mustRun("logout")
	assert.False(t, c.loadState().SignedIn())
}

func TestRecipesAndFavorites(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("recipes", "list", "--search", "smoothie")
	assert.Contains(t, out, "Green Goddess Smoothie")

	out = c.mustRun("recipes", "list", "--search", "smoothie", "-o", "json")
	var list client.RecipeList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Recipes, 1)
	id := list.Recipes[0].ID

	out = c.mustRun("recipes", "show", id)
	assert.Contains(t, out, "Ingredients:")
	assert.Contains(t, out, "spinach")

	out = c.mustRun("categories", "-o", "yaml")
	assert.Contains(t, out, "name: Breakfast")

	_, err := c.run("favorite", "add", id)
	assert.ErrorIs(t, err, errNotSignedIn)

	c.mustRun("login", "--email", "chef@healthycookbook.com", "--password", "user123")
	c.mustRun("favorite", "add", id)
	assert.True(t, c.loadState().IsFavorite(id))

	out = c.mustRun("recipes", "favorites")
	assert.Contains(t, out, "Green Goddess Smoothie")

	out = c.mustRun("recipes", "rate", id, "4", "-c", "Fresh")
	assert.Contains(t, out, "ratings")

	c.mustRun("favorite", "remove", id)
	assert.False(t, c.loadState().IsFavorite(id))
}

func TestListFailurePrintsServerMessage(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("recipes", "list", "--difficulty", "extreme")
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
}

func TestCreateRecipeFromYAML(t *testing.T) {
	c := newCLI(t)
	api := client.New(c.api)
	cats, _, err := api.Categories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	file := filepath.Join(t.TempDir(), "soup.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
title: Miso Soup
description: Light broth with tofu and seaweed.
category: `+cats[0].ID+`
servings: 2
prepTime: 5
cookTime: 10
ingredients:
  - {name: miso paste, amount: 2, unit: tbsp}
instructions:
  - {stepNumber: 1, instruction: Whisk miso into hot dashi and add tofu.}
nutrition: {calories: 90}
`), 0o600))

	c.mustRun("login", "--email", "guru@healthycookbook.com", "--password", "user123")
	out := c.mustRun("recipes", "create", "-f", file)
	assert.Contains(t, out, "Recipe created successfully: Miso Soup")

	out = c.mustRun("recipes", "mine")
	assert.Contains(t, out, "Miso Soup")
}

func TestMealPlan(t *testing.T) {
	c := newCLI(t)
	list, err := client.New(c.api).ListRecipes(context.Background(), service.RecipeQuery{Search: "quinoa power"})
	require.NoError(t, err)
	require.NotEmpty(t, list.Recipes)
	bowl := list.Recipes[0]

	out := c.mustRun("plan", "add", "monday", "lunch", bowl.ID)
	assert.Contains(t, out, "Monday-lunch")
	c.mustRun("plan", "add", "Friday", "dinner", bowl.ID)

	_, err = c.run("plan", "add", "Someday", "lunch", bowl.ID)
	assert.Error(t, err)

	out = c.mustRun("plan", "show", "-o", "json")
	var view planView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Dates, 7)
	assert.Equal(t, 2*bowl.Nutrition.Calories, view.WeeklyTotal)
	assert.Equal(t, bowl.Nutrition.Calories, view.Daily["Monday"])

	out = c.mustRun("plan", "show")
	assert.Contains(t, out, "Quinoa Power Bowl")
	assert.Contains(t, out, "Weekly total")

	out = c.mustRun("plan", "remove", "Monday", "lunch")
	assert.Contains(t, out, "Removed.")
	out = c.mustRun("plan", "remove", "Monday", "lunch")
	assert.Contains(t, out, "Nothing planned there.")
	assert.Equal(t, bowl.Nutrition.Calories, c.loadState().MealPlan.WeeklyCalories())

	c.mustRun("plan", "clear")
	assert.Empty(t, c.loadState().MealPlan)
}
