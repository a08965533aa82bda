package session

import "strings"

const (
	HomePath           = "/"
	AuthPath           = "/auth"
	OnboardingPath     = "/onboarding"
	DefaultLandingPath = "/dashboard"
)

var publicPaths = map[string]bool{
	"/about-us":   true,
	"/contact-us": true,
	"/pricing":    true,
}

var selfManagingPaths = map[string]bool{
	"/profile":      true,
	"/appointments": true,
	"/chats":        true,
	"/posts":        true,
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return HomePath
	}
	return p
}

// IsPublicPath reports whether p renders without waiting on the session:
// home, the auth pages, any *-info page, about-us, contact-us and pricing.
func IsPublicPath(p string) bool {
	p = cleanPath(p)
	switch {
	case p == HomePath, p == AuthPath, strings.HasPrefix(p, AuthPath+"/"):
		return true
	case strings.Contains(p, "-info"):
		return true
	}
	return publicPaths[p]
}

// IsSelfManagingPath reports whether p is a protected page that fetches its
// own data and must not be redirected away from on restore.
func IsSelfManagingPath(p string) bool {
	p = cleanPath(p)
	if selfManagingPaths[p] {
		return true
	}
	id, ok := strings.CutPrefix(p, "/business/")
	return ok && id != "" && !strings.Contains(id, "/")
}

// NormalizeAccountType strips the quotes left behind when the value was
// stored JSON-encoded.
func NormalizeAccountType(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"`)
}

// DashboardPath is the pluralized dashboard route for an account type.
func DashboardPath(accountType string) string {
	return "/" + NormalizeAccountType(accountType) + "s"
}

// AutoNavigationTarget is where restoring s sends a tab that is not on a
// self-managing page, or "" when the tab stays put.
func AutoNavigationTarget(s Session) string {
	switch {
	case s.NeedsOnboarding:
		return OnboardingPath
	case s.AccountType != "":
		return DashboardPath(s.AccountType)
	}
	return ""
}
