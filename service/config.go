package service

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/loganlanou/colink-venture/internal/gateway"
	"github.com/loganlanou/colink-venture/internal/guard"
	"github.com/loganlanou/colink-venture/internal/jobs"
	"github.com/loganlanou/colink-venture/internal/session"
)

const (
	DataBackendREST     = "rest"
	DataBackendPostgres = "postgres"

	defaultSessionSecret = "development-secret"
	defaultUploadMaxSize = 5 << 20 // 5MB
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string

	API struct {
		BaseURL string
	}

	Session struct {
		Secret      string
		LandingPath string
		AdminEmail  string
		TabIdleTTL  time.Duration

		// TabCookieFallback lets header-less clients keep a tab in a
		// cookie shared by the whole browser.
		TabCookieFallback bool
	}

	Data struct {
		Backend     string
		DatabaseURL string
	}

	Upload struct {
		MaxSize int64
	}
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/colink.db"),
	}

	config.API.BaseURL = getEnv("API_BASE_URL", gateway.DefaultBaseURL)

	config.Session.Secret = getEnv("SESSION_SECRET", defaultSessionSecret)
	config.Session.LandingPath = getEnv("LANDING_PATH", session.DefaultLandingPath)
	config.Session.AdminEmail = getEnv("ADMIN_EMAIL", guard.DefaultAdminEmail)

	ttl := getEnv("TAB_IDLE_TTL", jobs.DefaultTabIdleTTL.String())
	if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
		config.Session.TabIdleTTL = d
	} else {
		slog.Warn("invalid TAB_IDLE_TTL, using default", "value", ttl, "default", jobs.DefaultTabIdleTTL)
		config.Session.TabIdleTTL = jobs.DefaultTabIdleTTL
	}

	fallback := getEnv("TAB_COOKIE_FALLBACK", "false")
	if v, err := strconv.ParseBool(fallback); err == nil {
		config.Session.TabCookieFallback = v
	} else {
		slog.Warn("invalid TAB_COOKIE_FALLBACK, leaving it off", "value", fallback)
	}

	config.Data.Backend = getEnv("DATA_BACKEND", DataBackendREST)
	config.Data.DatabaseURL = getEnv("DATABASE_URL", "")

	maxSize := getEnv("UPLOAD_MAX_SIZE", strconv.Itoa(defaultUploadMaxSize))
	if size, err := strconv.ParseInt(maxSize, 10, 64); err == nil && size > 0 {
		config.Upload.MaxSize = size
	} else {
		config.Upload.MaxSize = defaultUploadMaxSize
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Data.Backend {
	case DataBackendREST:
	case DataBackendPostgres:
		if c.Data.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.Data.Backend)
	}

	if c.IsProduction() && c.Session.Secret == defaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
