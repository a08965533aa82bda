package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		got.body = string(body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestCall_PrefixesBaseURLAndDefaultsContentType(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	c := New(srv.URL+"/api/", nil, clientstore.NewMemory())

	body, err := JSONBody(map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	resp, err := c.Call(context.Background(), "/users/login", Options{Method: http.MethodPost, Body: body})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/users/login", got.path)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.JSONEq(t, `{"email":"a@b.com"}`, got.body)
	assert.Empty(t, got.header.Get("Authorization"), "plain calls never carry the token")
}

func TestCall_KeepsCallerContentType(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	c := New(srv.URL, nil, nil)

	h := http.Header{}
	h.Set("Content-Type", "multipart/form-data; boundary=x")
	resp, err := c.Call(context.Background(), "uploads", Options{Method: http.MethodPost, Header: h})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "/uploads", got.path)
	assert.Equal(t, "multipart/form-data; boundary=x", got.header.Get("Content-Type"))
}

func TestAuthenticatedCall_ReadsTokenAtCallTime(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	store := clientstore.NewMemory()
	c := New(srv.URL, nil, store)

	store.Set(clientstore.KeyToken, "first")
	resp, err := c.AuthenticatedCall(context.Background(), "/posts", Options{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer first", got.header.Get("Authorization"))

	store.Set(clientstore.KeyToken, "rotated")
	resp, err = c.AuthenticatedCall(context.Background(), "/posts", Options{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer rotated", got.header.Get("Authorization"), "rotation must apply without rebuilding the client")
}

func TestAuthenticatedCall_NoTokenNoHeader(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK)
	c := New(srv.URL, nil, clientstore.NewMemory())

	resp, err := c.AuthenticatedCall(context.Background(), "/posts", Options{})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, got.header.Get("Authorization"))
}

func TestCall_NonSuccessIsNotAnError(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnauthorized)
	c := New(srv.URL, nil, nil)

	resp, err := c.Call(context.Background(), "/users/login", Options{Method: http.MethodPost})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, nil, nil)
	_, err := c.Call(context.Background(), "/users/login", Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestWithStore_DoesNotMutateOriginal(t *testing.T) {
	a := clientstore.NewMemory()
	b := clientstore.NewMemory()
	base := New("", nil, a)
	clone := base.WithStore(b)

	assert.Same(t, a, base.store)
	assert.Same(t, b, clone.store)
	assert.Equal(t, DefaultBaseURL, clone.BaseURL())
}
