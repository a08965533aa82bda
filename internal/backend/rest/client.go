// Package rest implements the backend interfaces against the CoLink REST
// API, reached through the gateway.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/gateway"
)

// Client talks to the REST backend. It is cheap to build; one is made per
// request around a gateway bound to the caller's tab.
type Client struct {
	gw *gateway.Client
}

func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// Backend exposes c as every repository of a backend.Backend.
func (c *Client) Backend() *backend.Backend {
	return &backend.Backend{
		Auth:         c,
		Users:        c,
		Businesses:   c,
		Posts:        c,
		Appointments: c,
		Messages:     c,
		Uploads:      c,
	}
}

var (
	_ backend.AuthProvider          = (*Client)(nil)
	_ backend.UserDirectory         = (*Client)(nil)
	_ backend.BusinessRepository    = (*Client)(nil)
	_ backend.PostRepository        = (*Client)(nil)
	_ backend.AppointmentRepository = (*Client)(nil)
	_ backend.MessageRepository     = (*Client)(nil)
	_ backend.Uploader              = (*Client)(nil)
)

type call struct {
	method        string
	endpoint      string
	body          any
	authenticated bool
}

// do sends a JSON request and decodes the response into out. out may be nil.
func (c *Client) do(ctx context.Context, r call, out any) error {
	opts := gateway.Options{Method: r.method}
	if r.body != nil {
		body, err := gateway.JSONBody(r.body)
		if err != nil {
			return err
		}
		opts.Body = body
	}

	var (
		resp *http.Response
		err  error
	)
	if r.authenticated {
		resp, err = c.gw.AuthenticatedCall(ctx, r.endpoint, opts)
	} else {
		resp, err = c.gw.Call(ctx, r.endpoint, opts)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", gateway.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(unwrap(data), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// unwrap strips a {"data": ...} envelope when the backend uses one. A
// present "data" key wins even when it is null, so an empty listing sent as
// {"data": null} decodes to nothing rather than to the envelope itself.
func unwrap(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return data
	}
	inner, ok := envelope["data"]
	if !ok {
		return data
	}
	return inner
}

func apiError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		if s, ok := payload.Error.(string); ok {
			msg = s
		}
	}
	return &backend.APIError{Status: status, Message: msg}
}
