package client

import (
	"context"
	"net/http"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	var out authResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &service.AuthResult{Token: out.Token, User: out.User}, nil
}

// Login keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out authResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &service.AuthResult{Token: out.Token, User: out.User}, nil
}

// Logout tells the server and forgets the token even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.token = ""
	return err
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out userResponse
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in service.ProfileInput) (*models.User, error) {
	var out userResponse
	if _, err := c.do(ctx, http.MethodPut, "/auth/profile", nil, in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	_, err := c.do(ctx, http.MethodPut, "/auth/change-password", nil, body, nil)
	return err
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodDelete, "/auth/account", nil, nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}
