package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

// Categories lists active categories. On failure the slice is empty and the
// message explains why.
func (c *Client) Categories(ctx context.Context) ([]models.Category, string, error) {
	var out struct {
		Categories []models.Category `json:"categories"`
	}
	msg, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out)
	if err != nil {
		return []models.Category{}, Message(err), err
	}
	if out.Categories == nil {
		out.Categories = []models.Category{}
	}
	return out.Categories, msg, nil
}

type categoryResponse struct {
	Category *models.Category `json:"category"`
}

func (c *Client) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var out categoryResponse
	if _, err := c.do(ctx, http.MethodGet, "/categories/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

func (c *Client) CreateCategory(ctx context.Context, in service.CategoryInput) (*models.Category, error) {
	var out categoryResponse
	if _, err := c.do(ctx, http.MethodPost, "/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in service.CategoryInput) (*models.Category, error) {
	var out categoryResponse
	if _, err := c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

func (c *Client) ToggleCategory(ctx context.Context, id string) (*models.Category, error) {
	var out categoryResponse
	if _, err := c.do(ctx, http.MethodPatch, "/categories/"+url.PathEscape(id)+"/toggle-active", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// Profile is the signed-in user's full profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out userResponse
	if _, err := c.do(ctx, http.MethodGet, "/users/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) PublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	var out struct {
		User *models.PublicProfile `json:"user"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) UserRecipes(ctx context.Context, username string, page service.PageRequest) (*RecipeList, error) {
	v := url.Values{}
	if page.Page > 0 {
		v.Set("page", strconv.Itoa(page.Page))
	}
	if page.Limit > 0 {
		v.Set("limit", strconv.Itoa(page.Limit))
	}
	return c.listRecipes(ctx, "/users/"+url.PathEscape(username)+"/recipes", v)
}

func (c *Client) UserFavorites(ctx context.Context, username string) (*RecipeList, error) {
	return c.listRecipes(ctx, "/users/"+url.PathEscape(username)+"/favorites", nil)
}
