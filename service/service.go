package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/backend/rest"
	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/loganlanou/colink-venture/internal/dashboard"
	"github.com/loganlanou/colink-venture/internal/gateway"
	"github.com/loganlanou/colink-venture/internal/guard"
	"github.com/loganlanou/colink-venture/internal/middleware"
	"github.com/loganlanou/colink-venture/internal/notify"
	"github.com/loganlanou/colink-venture/internal/session"
	"github.com/loganlanou/colink-venture/internal/tab"
)

// Listings serves businesses and posts from somewhere other than the REST
// backend.
type Listings interface {
	backend.BusinessRepository
	backend.PostRepository
}

type Service struct {
	tabs       clientstore.Tabs
	tabManager *tab.Manager
	httpClient *http.Client
	gateway    *gateway.Client
	listings   Listings
	guard      guard.Guard
	menus      *dashboard.Menus
	config     *Config
}

type Option func(*Service)

// WithListings routes business and post reads and writes to l.
func WithListings(l Listings) Option {
	return func(s *Service) { s.listings = l }
}

// WithHTTPClient sets the client used to reach the REST backend.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.httpClient = client }
}

func New(tabs clientstore.Tabs, config *Config, opts ...Option) (*Service, error) {
	menus, err := dashboard.DefaultMenus()
	if err != nil {
		return nil, fmt.Errorf("failed to load menus: %w", err)
	}

	var tabOpts []tab.Option
	if config.Session.TabCookieFallback {
		tabOpts = append(tabOpts, tab.WithCookieFallback())
	}

	s := &Service{
		tabs:       tabs,
		tabManager: tab.NewManager(config.Session.Secret, config.IsProduction(), tabOpts...),
		// Backend calls end with the request context; the client adds no
		// deadline of its own.
		httpClient: &http.Client{},
		guard:      guard.New(config.Session.AdminEmail),
		menus:      menus,
		config:     config,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gateway = gateway.New(config.API.BaseURL, s.httpClient, nil)
	return s, nil
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)

	g := e.Group("", middleware.Tab(s.tabManager, s.tabs))

	// Public pages
	for _, p := range publicPages {
		g.GET(p.path, s.page(p))
	}

	// Protected pages
	for _, p := range s.protectedPages() {
		g.GET(p.path, s.page(p))
	}

	// Session actions
	auth := g.Group("/auth")
	auth.POST("/login", s.handleSignIn)
	auth.POST("/register", s.handleSignUp)
	auth.POST("/logout", s.handleSignOut)
	auth.PUT("/profile", s.handleUpdateProfile)

	g.POST("/onboarding/complete", s.handleCompleteOnboarding)
	g.POST("/navigation/skip", s.handleSkipNavigation)

	// Content actions
	g.POST("/businesses", s.handleCreateBusiness)
	g.POST("/posts", s.handleCreatePost)
	g.DELETE("/posts/:id", s.handleDeletePost)
	g.POST("/appointments", s.handleCreateAppointment)
	g.PUT("/appointments/:id/status", s.handleUpdateAppointmentStatus)
	g.POST("/chats/message", s.handleSendMessage)
	g.POST("/uploads", s.handleUpload)
}

// versioner is implemented by tab storage backed by a migrated database.
type versioner interface {
	Version() (int64, error)
}

func (s *Service) handleHealth(c echo.Context) error {
	status := http.StatusOK
	body := map[string]any{
		"status":      "healthy",
		"environment": s.config.Environment,
		"backend":     s.config.Data.Backend,
	}

	if v, ok := s.tabs.(versioner); ok {
		version, err := v.Version()
		if err != nil {
			slog.Error("health check: storage version", "error", err)
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unavailable"
		} else {
			body["database"] = "connected"
			body["schemaVersion"] = version
		}
	}

	return c.JSON(status, body)
}

// request is the per-request wiring around one tab's storage.
type request struct {
	ctx     context.Context
	store   clientstore.Store
	flash   *notify.Flash
	session *session.Controller
	backend *backend.Backend

	// redirect is the last navigation the controller asked for.
	redirect string
}

func (s *Service) newRequest(c echo.Context) (*request, error) {
	store, ok := middleware.GetStore(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Session storage unavailable")
	}

	r := &request{
		ctx:     c.Request().Context(),
		store:   store,
		flash:   notify.NewFlash(store),
		backend: s.backendFor(store),
	}
	nav := session.NavigatorFunc(func(path string) { r.redirect = path })
	r.session = session.NewController(store, r.backend.Auth, nav, r.flash,
		session.WithLandingPath(s.config.Session.LandingPath))
	return r, nil
}

// backendFor builds the backend a tab talks to. The gateway shares the
// tab's storage so token rotations land in the same session.
func (s *Service) backendFor(store clientstore.Store) *backend.Backend {
	b := rest.New(s.gateway.WithStore(store)).Backend()
	if s.listings != nil {
		b.Businesses = s.listings
		b.Posts = s.listings
	}
	return b
}

// user returns the caller's session after a quiet load, or
// ErrNotAuthenticated.
func (r *request) user() (*backend.UserRecord, error) {
	r.session.Load()
	if r.session.State() != session.Authenticated {
		return nil, session.ErrNotAuthenticated
	}
	return r.session.Session().User, nil
}

// requestPath is the path plus query, the way the controller sees it.
func requestPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}
