package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/loganlanou/colink-venture/internal/tab"
)

// Context keys for the resolved tab
const (
	TabIDKey    = "tab_id"
	TabStoreKey = "tab_store"
)

// Tab resolves the request's tab, puts its id and storage on the echo
// context and echoes the id back in the tab header.
func Tab(manager *tab.Manager, tabs clientstore.Tabs) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := manager.Resolve(c)
			if err != nil {
				slog.Error("failed to resolve tab", "error", err, "path", c.Request().URL.Path)
				return echo.NewHTTPError(http.StatusInternalServerError, "Unable to start session")
			}

			c.Response().Header().Set(tab.HeaderName, id)
			c.Set(TabIDKey, id)
			c.Set(TabStoreKey, tabs.Tab(id))
			return next(c)
		}
	}
}

func GetTabID(c echo.Context) string {
	id, _ := c.Get(TabIDKey).(string)
	return id
}

// GetStore returns the tab storage set by Tab.
func GetStore(c echo.Context) (clientstore.Store, bool) {
	store, ok := c.Get(TabStoreKey).(clientstore.Store)
	return store, ok && store != nil
}
