package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loganlanou/colink-venture/internal/clientstore"
)

func TestNewBackendClientHasNoDeadline(t *testing.T) {
	svc, err := New(clientstore.NewMemoryTabs(), testConfig("http://127.0.0.1:0"))
	require.NoError(t, err)

	require.NotNil(t, svc.httpClient)
	assert.Zero(t, svc.httpClient.Timeout, "backend calls are bounded by the request context only")
	assert.NotNil(t, svc.gateway)
}

func TestWithHTTPClientReplacesDefault(t *testing.T) {
	client := &http.Client{Timeout: time.Second}

	svc, err := New(clientstore.NewMemoryTabs(), testConfig("http://127.0.0.1:0"), WithHTTPClient(client))
	require.NoError(t, err)

	assert.Same(t, client, svc.httpClient)
}
