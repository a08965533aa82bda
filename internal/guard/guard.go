// Package guard decides whether a protected page may render for the
// current session.
package guard

import (
	"fmt"

	"github.com/loganlanou/colink-venture/internal/backend"
)

const (
	DefaultAdminEmail = "admin@colink.com"

	LoginPath = "/auth"
	HomePath  = "/"
)

type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRedirect
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

type Input struct {
	Loading       bool
	User          *backend.UserRecord
	AdminRequired bool
}

// Result carries the redirect target when Decision is DecisionRedirect.
type Result struct {
	Decision Decision `json:"decision"`
	Target   string   `json:"target,omitempty"`
}

// Guard holds the admin policy. The zero value uses DefaultAdminEmail.
type Guard struct {
	adminEmail string
}

func New(adminEmail string) Guard {
	return Guard{adminEmail: adminEmail}
}

func (g Guard) email() string {
	if g.adminEmail == "" {
		return DefaultAdminEmail
	}
	return g.adminEmail
}

// IsAdmin grants admin to the configured address or to any user whose
// metadata role is "admin".
func (g Guard) IsAdmin(u *backend.UserRecord) bool {
	if u == nil {
		return false
	}
	return u.Email == g.email() || u.MetadataString("role") == "admin"
}

// Decide is total over Input. A non-admin on an admin page is sent home
// without an error.
func (g Guard) Decide(in Input) Result {
	switch {
	case in.Loading:
		return Result{Decision: DecisionLoading}
	case in.User == nil:
		return Result{Decision: DecisionRedirect, Target: LoginPath}
	case in.AdminRequired && !g.IsAdmin(in.User):
		return Result{Decision: DecisionRedirect, Target: HomePath}
	}
	return Result{Decision: DecisionRender}
}
