package service

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/dashboard"
	"github.com/loganlanou/colink-venture/internal/gateway"
	"github.com/loganlanou/colink-venture/internal/guard"
	"github.com/loganlanou/colink-venture/internal/middleware"
	"github.com/loganlanou/colink-venture/internal/notify"
	"github.com/loganlanou/colink-venture/internal/session"
	"github.com/loganlanou/colink-venture/internal/shaping"
)

// PageView is the JSON model of a rendered page. Tab is the id the client
// must send back in the tab header. Shell is set on protected pages only.
type PageView struct {
	Tab     string           `json:"tab"`
	Page    string           `json:"page"`
	Path    string           `json:"path"`
	Session session.Session  `json:"session"`
	Shell   *dashboard.Shell `json:"shell,omitempty"`
	Data    any              `json:"data,omitempty"`
	Toasts  []notify.Toast   `json:"toasts"`
}

// loader fetches a page's data. It may return partial data together with
// an error; the page still renders and the error becomes a toast.
type loader func(c echo.Context, r *request) (any, error)

type pageRoute struct {
	path      string
	name      string
	protected bool
	admin     bool
	load      loader
}

var publicPages = []pageRoute{
	{path: "/", name: "home"},
	{path: "/auth", name: "auth"},
	{path: "/about-us", name: "about-us"},
	{path: "/contact-us", name: "contact-us"},
	{path: "/pricing", name: "pricing"},
	{path: "/partnership-info", name: "partnership-info"},
	{path: "/sponsorship-info", name: "sponsorship-info"},
}

func (s *Service) protectedPages() []pageRoute {
	return []pageRoute{
		{path: "/dashboard", name: "dashboard", protected: true, load: s.loadDashboard},
		{path: "/onboarding", name: "onboarding", protected: true, load: loadOnboarding},
		{path: "/partnerships", name: "partnerships", protected: true, load: s.loadAccountListing(backend.AccountPartnership)},
		{path: "/sponsorships", name: "sponsorships", protected: true, load: s.loadAccountListing(backend.AccountSponsorship)},
		{path: "/businesses", name: "businesses", protected: true, load: s.loadBusinesses},
		{path: "/business/:id", name: "business", protected: true, load: s.loadBusiness},
		{path: "/profile", name: "profile", protected: true, load: s.loadProfile},
		{path: "/appointments", name: "appointments", protected: true, load: s.loadAppointments},
		{path: "/chats", name: "chats", protected: true, load: s.loadChats},
		{path: "/posts", name: "posts", protected: true, load: s.loadPosts},
		{path: "/admin", name: "admin", protected: true, admin: true, load: s.loadAdmin},
	}
}

func (s *Service) page(p pageRoute) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := s.newRequest(c)
		if err != nil {
			return err
		}

		r.session.Restore(requestPath(c.Request().URL))
		if r.redirect != "" {
			return c.Redirect(http.StatusFound, r.redirect)
		}

		sess := r.session.Session()
		view := PageView{
			Tab:     middleware.GetTabID(c),
			Page:    p.name,
			Path:    c.Request().URL.Path,
			Session: sess,
		}

		if p.protected {
			shell := dashboard.Compose(s.guard, s.menus, sess, p.name, p.admin)
			switch shell.Guard.Decision {
			case guard.DecisionRedirect:
				return c.Redirect(http.StatusFound, shell.Guard.Target)
			case guard.DecisionLoading:
				view.Shell = &shell
				view.Toasts = r.flash.Pop()
				return c.JSON(http.StatusOK, view)
			}
			view.Shell = &shell
		}

		if p.load != nil {
			data, err := p.load(c, r)
			if err != nil {
				if errors.Is(err, backend.ErrNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, "Page not found")
				}
				slog.Error("failed to load page data", "page", p.name, "error", err)
				r.flash.Notify(loadFailedToast(p.name, err))
			}
			view.Data = data
		}

		view.Toasts = r.flash.Pop()
		return c.JSON(http.StatusOK, view)
	}
}

func (s *Service) loadDashboard(c echo.Context, r *request) (any, error) {
	feed := dashboard.LoadFeed(r.ctx, dashboard.Sources{
		Businesses:   r.backend.Businesses,
		Posts:        r.backend.Posts,
		Appointments: r.backend.Appointments,
	}, sessionUserID(r))

	for _, section := range feed.Failed {
		r.flash.Notify(notify.Error("Couldn't load "+section, "Some of your dashboard is unavailable right now."))
	}
	return feed, nil
}

func loadOnboarding(c echo.Context, r *request) (any, error) {
	return map[string]any{
		"accountTypes": []string{backend.AccountPartnership, backend.AccountSponsorship},
	}, nil
}

// ListingView is a page of businesses with optional category navigation.
type ListingView struct {
	AccountType string                         `json:"accountType,omitempty"`
	Categories  []string                       `json:"categories,omitempty"`
	Category    string                         `json:"category,omitempty"`
	Query       string                         `json:"query,omitempty"`
	Businesses  shaping.Page[backend.Business] `json:"businesses"`
}

func (s *Service) loadAccountListing(accountType string) loader {
	return func(c echo.Context, r *request) (any, error) {
		view := ListingView{
			AccountType: accountType,
			Categories:  []string{},
			Category:    strings.TrimSpace(c.QueryParam("category")),
			Query:       strings.TrimSpace(c.QueryParam("q")),
			Businesses:  shaping.Paginate([]backend.Business{}, 1, shaping.ListingPageSize),
		}

		categories, err := r.backend.Businesses.BusinessCategories(r.ctx, accountType)
		if err != nil {
			slog.Warn("failed to load categories", "accountType", accountType, "error", err)
		} else {
			view.Categories = categories
		}

		var list []backend.Business
		if view.Category != "" {
			list, err = r.backend.Businesses.BusinessesByCategory(r.ctx, accountType, view.Category)
		} else {
			list, err = r.backend.Businesses.ListBusinesses(r.ctx)
			list = shaping.FilterAccountType(list, accountType)
		}
		if err != nil {
			return view, err
		}

		list = shaping.Filter(shaping.ExcludeOwner(list, sessionUserID(r)), view.Query)
		view.Businesses = shaping.Paginate(list, pageParam(c), shaping.ListingPageSize)
		return view, nil
	}
}

func (s *Service) loadBusinesses(c echo.Context, r *request) (any, error) {
	view := ListingView{
		Query:      strings.TrimSpace(c.QueryParam("q")),
		Businesses: shaping.Paginate([]backend.Business{}, 1, shaping.ListingPageSize),
	}

	list, err := r.backend.Businesses.ListBusinesses(r.ctx)
	if err != nil {
		return view, err
	}

	list = shaping.Filter(shaping.ExcludeOwner(list, sessionUserID(r)), view.Query)
	view.Businesses = shaping.Paginate(list, pageParam(c), shaping.ListingPageSize)
	return view, nil
}

// BusinessView is one business and, when the backend knows them, its owner.
type BusinessView struct {
	Business *backend.Business   `json:"business"`
	Owner    *backend.UserRecord `json:"owner,omitempty"`
}

func (s *Service) loadBusiness(c echo.Context, r *request) (any, error) {
	b, err := r.backend.Businesses.GetBusiness(r.ctx, c.Param("id"))
	if err != nil {
		return nil, err
	}

	view := BusinessView{Business: b}
	if b.OwnerID == "" {
		return view, nil
	}

	// The listing still renders without its owner.
	owner, err := r.backend.Users.ProfileByID(r.ctx, b.OwnerID)
	if err != nil {
		slog.Warn("failed to load business owner", "business", b.ID, "owner", b.OwnerID, "error", err)
		return view, nil
	}
	view.Owner = owner
	return view, nil
}

func (s *Service) loadProfile(c echo.Context, r *request) (any, error) {
	u, err := r.backend.Users.Profile(r.ctx)
	if err != nil {
		// Fall back to what the tab already knows.
		return r.session.Session().User, err
	}
	return u, nil
}

func (s *Service) loadAppointments(c echo.Context, r *request) (any, error) {
	appointments, err := r.backend.Appointments.ListAppointments(r.ctx)
	if err != nil {
		return []backend.Appointment{}, err
	}
	return appointments, nil
}

func (s *Service) loadChats(c echo.Context, r *request) (any, error) {
	messages, err := r.backend.Messages.ListMessages(r.ctx)
	if err != nil {
		return []backend.Message{}, err
	}
	return messages, nil
}

func (s *Service) loadPosts(c echo.Context, r *request) (any, error) {
	posts, err := r.backend.Posts.ListPosts(r.ctx)
	if err != nil {
		return []backend.Post{}, err
	}
	return posts, nil
}

func (s *Service) loadAdmin(c echo.Context, r *request) (any, error) {
	users, err := r.backend.Users.AllUsers(r.ctx)
	if err != nil {
		return []backend.UserRecord{}, err
	}
	return users, nil
}

func sessionUserID(r *request) string {
	if u := r.session.Session().User; u != nil {
		return u.ID
	}
	return ""
}

// pageParam reads ?page=, defaulting to the first page.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func loadFailedToast(page string, err error) notify.Toast {
	if errors.Is(err, gateway.ErrTransport) {
		return notify.Error("Network error", "Unable to reach the server. Please check your connection.")
	}
	return notify.Error("Couldn't load "+page, "Please try again later.")
}
