package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loganlanou/colink-venture/internal/gateway"
	"github.com/loganlanou/colink-venture/internal/jobs"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("TAB_IDLE_TTL", "")
	t.Setenv("UPLOAD_MAX_SIZE", "")
	t.Setenv("TAB_COOKIE_FALLBACK", "")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, gateway.DefaultBaseURL, config.API.BaseURL)
	assert.Equal(t, DataBackendREST, config.Data.Backend)
	assert.Equal(t, jobs.DefaultTabIdleTTL, config.Session.TabIdleTTL)
	assert.Equal(t, int64(defaultUploadMaxSize), config.Upload.MaxSize)
	assert.Equal(t, "/dashboard", config.Session.LandingPath)
	assert.Equal(t, "admin@colink.com", config.Session.AdminEmail)
	assert.False(t, config.Session.TabCookieFallback)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("API_BASE_URL", "https://api.colink.test")
	t.Setenv("TAB_IDLE_TTL", "2h")
	t.Setenv("UPLOAD_MAX_SIZE", "1024")
	t.Setenv("ADMIN_EMAIL", "root@colink.test")
	t.Setenv("TAB_COOKIE_FALLBACK", "true")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "staging", config.Environment)
	assert.Equal(t, "https://api.colink.test", config.API.BaseURL)
	assert.Equal(t, 2*time.Hour, config.Session.TabIdleTTL)
	assert.Equal(t, int64(1024), config.Upload.MaxSize)
	assert.Equal(t, "root@colink.test", config.Session.AdminEmail)
	assert.True(t, config.Session.TabCookieFallback)
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TAB_IDLE_TTL", "soon")
	t.Setenv("UPLOAD_MAX_SIZE", "-5")
	t.Setenv("TAB_COOKIE_FALLBACK", "maybe")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, jobs.DefaultTabIdleTTL, config.Session.TabIdleTTL)
	assert.Equal(t, int64(defaultUploadMaxSize), config.Upload.MaxSize)
	assert.False(t, config.Session.TabCookieFallback)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"rest backend", func(c *Config) {}, false},
		{"postgres without url", func(c *Config) { c.Data.Backend = DataBackendPostgres }, true},
		{"postgres with url", func(c *Config) {
			c.Data.Backend = DataBackendPostgres
			c.Data.DatabaseURL = "postgres://localhost/colink"
		}, false},
		{"unknown backend", func(c *Config) { c.Data.Backend = "mongo" }, true},
		{"production default secret", func(c *Config) {
			c.Environment = "production"
			c.Session.Secret = defaultSessionSecret
		}, true},
		{"production real secret", func(c *Config) { c.Environment = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig("http://api.test")
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
