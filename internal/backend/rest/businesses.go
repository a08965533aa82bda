package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/shaping"
)

func (c *Client) ListBusinesses(ctx context.Context) ([]backend.Business, error) {
	return c.businesses(ctx, "/businesses/")
}

func (c *Client) GetBusiness(ctx context.Context, id string) (*backend.Business, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/businesses/" + url.PathEscape(id)}, &raw); err != nil {
		return nil, err
	}

	b, err := shaping.NormalizeBusiness(raw)
	if err != nil {
		return nil, fmt.Errorf("business %s: %w", id, err)
	}
	return &b, nil
}

func (c *Client) CreateBusiness(ctx context.Context, b backend.Business) (*backend.Business, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		method:        http.MethodPost,
		endpoint:      "/businesses/",
		body:          b,
		authenticated: true,
	}, &raw)
	if err != nil {
		return nil, err
	}

	created, err := shaping.NormalizeBusiness(raw)
	if err != nil {
		return nil, fmt.Errorf("created business: %w", err)
	}
	return &created, nil
}

func (c *Client) BusinessCategories(ctx context.Context, accountType string) ([]string, error) {
	var raws []json.RawMessage
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/businesses/categories/" + url.PathEscape(accountType),
	}, &raws)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(raws))
	for _, raw := range raws {
		if name := categoryName(raw); name != "" {
			categories = append(categories, name)
		}
	}
	return categories, nil
}

func (c *Client) BusinessesByCategory(ctx context.Context, accountType, category string) ([]backend.Business, error) {
	return c.businesses(ctx, "/businesses/"+url.PathEscape(accountType)+"/category/"+url.PathEscape(category))
}

func (c *Client) businesses(ctx context.Context, endpoint string) ([]backend.Business, error) {
	var raws []json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: endpoint}, &raws); err != nil {
		return nil, err
	}
	return shaping.NormalizeBusinesses(raws), nil
}

// categoryName reads a category given either as a string or as an object
// with a name.
func categoryName(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.Category
	}
	return ""
}
