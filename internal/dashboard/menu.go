// Package dashboard composes the signed-in shell: the sidebar menu for the
// session's account type and the data feed shown on the dashboard pages.
package dashboard

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loganlanou/colink-venture/internal/backend"
)

//go:embed menus.yaml
var builtinMenus []byte

// Entry is one sidebar link. SkipNavigation is set per session: the client
// must POST /navigation/skip before following the link, or the restore on
// arrival sends it to the session's own dashboard instead.
type Entry struct {
	Label          string `yaml:"label" json:"label"`
	Path           string `yaml:"path" json:"path"`
	Icon           string `yaml:"icon,omitempty" json:"icon,omitempty"`
	SkipNavigation bool   `yaml:"-" json:"skipNavigation,omitempty"`
}

type Menus struct {
	Partnership []Entry `yaml:"partnership"`
	Sponsorship []Entry `yaml:"sponsorship"`
	Unassigned  []Entry `yaml:"unassigned"`
	Shared      []Entry `yaml:"shared"`
	Admin       []Entry `yaml:"admin"`
}

// DefaultMenus parses the embedded menu definition.
func DefaultMenus() (*Menus, error) {
	return ParseMenus(builtinMenus)
}

func ParseMenus(data []byte) (*Menus, error) {
	var m Menus
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menus: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every entry has a label and an absolute path.
func (m *Menus) Validate() error {
	groups := map[string][]Entry{
		"partnership": m.Partnership,
		"sponsorship": m.Sponsorship,
		"unassigned":  m.Unassigned,
		"shared":      m.Shared,
		"admin":       m.Admin,
	}
	for name, entries := range groups {
		for i, e := range entries {
			if e.Label == "" {
				return fmt.Errorf("menu %s[%d]: missing label", name, i)
			}
			if !strings.HasPrefix(e.Path, "/") {
				return fmt.Errorf("menu %s[%d]: path %q must start with /", name, i, e.Path)
			}
		}
	}
	return nil
}

// For returns the sidebar for an account type, with admin entries last.
func (m *Menus) For(accountType string, admin bool) []Entry {
	var primary []Entry
	switch accountType {
	case backend.AccountPartnership:
		primary = m.Partnership
	case backend.AccountSponsorship:
		primary = m.Sponsorship
	default:
		primary = m.Unassigned
	}

	out := make([]Entry, 0, len(primary)+len(m.Shared)+len(m.Admin))
	out = append(out, primary...)
	out = append(out, m.Shared...)
	if admin {
		out = append(out, m.Admin...)
	}
	return out
}
