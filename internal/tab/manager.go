// Package tab identifies the browser tab behind a request. The client keeps
// its tab id in per-tab storage and sends it as a header; a request without
// one is a new tab and is handed a freshly minted id.
package tab

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	cookieName = "colink_tab"
	idKey      = "tab_id"

	// HeaderName carries the tab id in both directions. Responses always
	// echo the resolved id so a new tab can adopt it.
	HeaderName = "X-Colink-Tab"
)

// Manager issues and reads tab ids.
type Manager struct {
	store          sessions.Store
	cookieFallback bool
}

type Option func(*Manager)

// WithCookieFallback makes header-less requests reuse the id kept in a
// signed browser-session cookie. Every tab of one browser shares that
// cookie, so this is only for clients that cannot send the header.
func WithCookieFallback() Option {
	return func(m *Manager) { m.cookieFallback = true }
}

// NewManager creates a tab manager signing its fallback cookie with secret.
func NewManager(secret string, secure bool, opts ...Option) *Manager {
	store := sessions.NewCookieStore([]byte(secret))

	// MaxAge 0 makes it a browser-session cookie.
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve returns the tab id named by the request header. Without one the
// request belongs to a new tab, unless the cookie fallback is on and the
// browser already holds an id.
func (m *Manager) Resolve(c echo.Context) (string, error) {
	if id, ok := parseID(c.Request().Header.Get(HeaderName)); ok {
		return id, nil
	}

	if !m.cookieFallback {
		return uuid.NewString(), nil
	}

	// A cookie that fails verification still yields a fresh session.
	session, _ := m.store.Get(c.Request(), cookieName)
	if raw, ok := session.Values[idKey].(string); ok {
		if id, ok := parseID(raw); ok {
			return id, nil
		}
	}

	id := uuid.NewString()
	session.Values[idKey] = id
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("failed to save tab cookie: %w", err)
	}
	return id, nil
}

func parseID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
