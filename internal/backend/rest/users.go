package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"github.com/loganlanou/colink-venture/internal/backend"
)

var errMissingToken = errors.New("auth response carried no token")

func (c *Client) Login(ctx context.Context, email, password string) (*backend.AuthResult, error) {
	var result backend.AuthResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/users/login",
		body:     map[string]string{"email": email, "password": password},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("login: %w", errMissingToken)
	}
	return &result, nil
}

// Register flattens metadata into the request body next to the
// credentials.
func (c *Client) Register(ctx context.Context, email, password string, metadata map[string]any) (*backend.AuthResult, error) {
	body := make(map[string]any, len(metadata)+2)
	maps.Copy(body, metadata)
	body["email"] = email
	body["password"] = password

	var result backend.AuthResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/users/register",
		body:     body,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("register: %w", errMissingToken)
	}
	return &result, nil
}

func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*backend.UserRecord, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		method:        http.MethodPut,
		endpoint:      "/users/profile",
		body:          fields,
		authenticated: true,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (c *Client) Profile(ctx context.Context) (*backend.UserRecord, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users/profile", authenticated: true}, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (c *Client) ProfileByID(ctx context.Context, id string) (*backend.UserRecord, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		method:        http.MethodGet,
		endpoint:      "/users/profile/" + url.PathEscape(id),
		authenticated: true,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

func (c *Client) AllUsers(ctx context.Context) ([]backend.UserRecord, error) {
	var users []backend.UserRecord
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/users/getAllUsers"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// decodeUser accepts a bare user record or one wrapped as {"user": ...}.
func decodeUser(raw json.RawMessage) (*backend.UserRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty user response")
	}

	var wrapped struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.User) > 0 && string(wrapped.User) != "null" {
		raw = wrapped.User
	}

	var user backend.UserRecord
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}
