package dashboard

import (
	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/guard"
	"github.com/loganlanou/colink-venture/internal/session"
)

// Shell is the frame around a protected page. Menu is empty unless the
// guard let the page render.
type Shell struct {
	Page        string              `json:"page"`
	Guard       guard.Result        `json:"guard"`
	Menu        []Entry             `json:"menu"`
	User        *backend.UserRecord `json:"user,omitempty"`
	AccountType string              `json:"accountType,omitempty"`
	IsAdmin     bool                `json:"isAdmin"`
}

// Compose runs the guard for page and, when it passes, picks the menu.
func Compose(g guard.Guard, menus *Menus, s session.Session, page string, adminRequired bool) Shell {
	result := g.Decide(guard.Input{
		Loading:       s.IsLoading,
		User:          s.User,
		AdminRequired: adminRequired,
	})

	shell := Shell{Page: page, Guard: result, Menu: []Entry{}}
	if result.Decision != guard.DecisionRender {
		return shell
	}

	shell.User = s.User
	shell.AccountType = s.AccountType
	shell.IsAdmin = g.IsAdmin(s.User)
	shell.Menu = markSkips(menus.For(s.AccountType, shell.IsAdmin), s)
	return shell
}

// markSkips flags the entries a restore would redirect away from.
func markSkips(entries []Entry, s session.Session) []Entry {
	target := session.AutoNavigationTarget(s)
	if target == "" {
		return entries
	}
	for i, e := range entries {
		if e.Path != target && !session.IsSelfManagingPath(e.Path) {
			entries[i].SkipNavigation = true
		}
	}
	return entries
}
