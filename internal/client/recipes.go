package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

// RecipeList is the result of every recipe listing. On failure Recipes is
// empty, never nil, and Message carries the server's explanation.
type RecipeList struct {
	Recipes    []models.RecipeView `json:"recipes"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
	Message    string              `json:"-"`
}

type recipeResponse struct {
	Recipe *models.RecipeView `json:"recipe"`
}

func recipeQuery(q service.RecipeQuery) url.Values {
	v := url.Values{}
	setInt := func(key string, n int) {
		if n > 0 {
			v.Set(key, strconv.Itoa(n))
		}
	}
	setInt("page", q.Page)
	setInt("limit", q.Limit)
	setInt("maxTime", q.MaxTime)
	if q.MinRating > 0 {
		v.Set("minRating", strconv.FormatFloat(q.MinRating, 'f', -1, 64))
	}
	if len(q.DietaryTags) > 0 {
		v.Set("dietaryTags", strings.Join(q.DietaryTags, ","))
	}
	for key, s := range map[string]string{
		"category":   q.Category,
		"difficulty": q.Difficulty,
		"search":     q.Search,
		"sortBy":     q.SortBy,
		"sortOrder":  q.SortOrder,
	} {
		if s != "" {
			v.Set(key, s)
		}
	}
	return v
}

func (c *Client) listRecipes(ctx context.Context, path string, query url.Values) (*RecipeList, error) {
	var out RecipeList
	msg, err := c.do(ctx, http.MethodGet, path, query, nil, &out)
	if err != nil {
		return &RecipeList{Recipes: []models.RecipeView{}, Message: Message(err)}, err
	}
	if out.Recipes == nil {
		out.Recipes = []models.RecipeView{}
	}
	out.Message = msg
	return &out, nil
}

func (c *Client) ListRecipes(ctx context.Context, q service.RecipeQuery) (*RecipeList, error) {
	return c.listRecipes(ctx, "/recipes", recipeQuery(q))
}

func (c *Client) FeaturedRecipes(ctx context.Context) (*RecipeList, error) {
	return c.listRecipes(ctx, "/recipes/featured", nil)
}

func (c *Client) PopularRecipes(ctx context.Context) (*RecipeList, error) {
	return c.listRecipes(ctx, "/recipes/popular", nil)
}

// MyRecipes lists the signed-in user's recipes, drafts included.
func (c *Client) MyRecipes(ctx context.Context) (*RecipeList, error) {
	return c.listRecipes(ctx, "/recipes/user", nil)
}

func (c *Client) FavoriteRecipes(ctx context.Context) (*RecipeList, error) {
	return c.listRecipes(ctx, "/recipes/favorites", nil)
}

func (c *Client) GetRecipe(ctx context.Context, id string) (*models.RecipeView, error) {
	var out recipeResponse
	if _, err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

func (c *Client) CreateRecipe(ctx context.Context, in service.RecipeInput) (*models.RecipeView, error) {
	var out recipeResponse
	if _, err := c.do(ctx, http.MethodPost, "/recipes", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id string, in service.RecipeInput) (*models.RecipeView, error) {
	var out recipeResponse
	if _, err := c.do(ctx, http.MethodPut, "/recipes/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// RateRecipe adds or replaces the caller's rating.
func (c *Client) RateRecipe(ctx context.Context, id string, rating int, comment string) (*service.RatingResult, error) {
	body := map[string]interface{}{"rating": rating, "comment": comment}
	var out service.RatingResult
	if _, err := c.do(ctx, http.MethodPost, "/recipes/"+url.PathEscape(id)+"/ratings", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type favoriteResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

func (c *Client) favorite(ctx context.Context, method, id string) (bool, error) {
	var out favoriteResponse
	if _, err := c.do(ctx, method, "/recipes/"+url.PathEscape(id)+"/favorite", nil, nil, &out); err != nil {
		return false, err
	}
	return out.IsFavorite, nil
}

func (c *Client) IsFavorite(ctx context.Context, id string) (bool, error) {
	return c.favorite(ctx, http.MethodGet, id)
}

func (c *Client) AddFavorite(ctx context.Context, id string) (bool, error) {
	return c.favorite(ctx, http.MethodPost, id)
}

func (c *Client) RemoveFavorite(ctx context.Context, id string) (bool, error) {
	return c.favorite(ctx, http.MethodDelete, id)
}
