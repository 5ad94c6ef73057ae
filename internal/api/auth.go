package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/roach88/storefront/internal/model"
)

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", req, &out)
	return out, err
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	body := struct {
		AccessToken string `json:"access_token"`
	}{token}
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, "", body, nil)
}

// Signup creates an account and returns its first token.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (model.SignupResponse, error) {
	var out model.SignupResponse
	err := c.do(ctx, http.MethodPost, "/users/signup", nil, "", req, &out)
	return out, err
}

// UpdateUser changes the profile of user id.
func (c *Client) UpdateUser(ctx context.Context, token string, id int64, upd model.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, token, upd, nil)
}
