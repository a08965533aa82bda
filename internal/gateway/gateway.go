package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/loganlanou/colink-venture/internal/clientstore"
)

// DefaultBaseURL is used when API_BASE_URL is not configured.
const DefaultBaseURL = "http://localhost:3000/api"

// ErrTransport wraps every failure to get a response from the backend.
var ErrTransport = errors.New("backend unreachable")

// Options describes one outbound call.
type Options struct {
	Method string
	Body   io.Reader
	Header http.Header
}

// Client prefixes endpoints with the backend base URL and, for
// authenticated calls, attaches the bearer token currently held in the
// tab's storage.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      clientstore.Store
}

// New creates a gateway client. A nil httpClient gets a client with no
// timeout: cancellation comes from ctx only.
func New(baseURL string, httpClient *http.Client, store clientstore.Store) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		store:      store,
	}
}

// WithStore returns a copy of c that reads tokens from store.
func (c *Client) WithStore(store clientstore.Store) *Client {
	clone := *c
	clone.store = store
	return &clone
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call sends a request to the backend. Non-2xx responses are returned as-is;
// the caller owns the status check and closing the body.
func (c *Client) Call(ctx context.Context, endpoint string, opts Options) (*http.Response, error) {
	return c.do(ctx, endpoint, opts, false)
}

// AuthenticatedCall is Call plus an Authorization header. The token is read
// from storage on every call so a rotated token takes effect immediately.
func (c *Client) AuthenticatedCall(ctx context.Context, endpoint string, opts Options) (*http.Response, error) {
	return c.do(ctx, endpoint, opts, true)
}

func (c *Client) do(ctx context.Context, endpoint string, opts Options, authenticated bool) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), opts.Body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated && c.store != nil {
		if token, ok := c.store.Get(clientstore.KeyToken); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, endpoint, err)
	}
	return resp, nil
}

func (c *Client) url(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// JSONBody encodes v for use as Options.Body.
func JSONBody(v any) (io.Reader, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return bytes.NewReader(body), nil
}
