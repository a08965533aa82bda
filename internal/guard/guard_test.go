package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loganlanou/colink-venture/internal/backend"
)

func TestIsAdmin_EitherPredicate(t *testing.T) {
	g := Guard{}

	tests := []struct {
		name string
		user *backend.UserRecord
		want bool
	}{
		{name: "admin email", user: &backend.UserRecord{Email: "admin@colink.com"}, want: true},
		{name: "admin role", user: &backend.UserRecord{Email: "x@y.com", UserMetadata: map[string]any{"role": "admin"}}, want: true},
		{name: "neither", user: &backend.UserRecord{Email: "x@y.com"}, want: false},
		{name: "top-level role is not metadata", user: &backend.UserRecord{Email: "x@y.com", Role: "admin"}, want: false},
		{name: "email is exact", user: &backend.UserRecord{Email: "Admin@colink.com"}, want: false},
		{name: "non-string role", user: &backend.UserRecord{Email: "x@y.com", UserMetadata: map[string]any{"role": true}}, want: false},
		{name: "nil", user: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.IsAdmin(tt.user))
		})
	}
}

func TestDecide(t *testing.T) {
	g := Guard{}
	admin := &backend.UserRecord{Email: "admin@colink.com"}
	roleAdmin := &backend.UserRecord{Email: "x@y.com", UserMetadata: map[string]any{"role": "admin"}}
	member := &backend.UserRecord{Email: "x@y.com"}

	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{name: "loading wins over everything", in: Input{Loading: true, AdminRequired: true}, want: Result{Decision: DecisionLoading}},
		{name: "no user", in: Input{}, want: Result{Decision: DecisionRedirect, Target: LoginPath}},
		{name: "no user on admin page", in: Input{AdminRequired: true}, want: Result{Decision: DecisionRedirect, Target: LoginPath}},
		{name: "member", in: Input{User: member}, want: Result{Decision: DecisionRender}},
		{name: "member on admin page", in: Input{User: member, AdminRequired: true}, want: Result{Decision: DecisionRedirect, Target: HomePath}},
		{name: "admin by email", in: Input{User: admin, AdminRequired: true}, want: Result{Decision: DecisionRender}},
		{name: "admin by role", in: Input{User: roleAdmin, AdminRequired: true}, want: Result{Decision: DecisionRender}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Decide(tt.in))
		})
	}
}

func TestConfiguredAdminEmail(t *testing.T) {
	g := New("ops@colink.com")

	assert.True(t, g.IsAdmin(&backend.UserRecord{Email: "ops@colink.com"}))
	assert.False(t, g.IsAdmin(&backend.UserRecord{Email: DefaultAdminEmail}))
	assert.Equal(t, "render", DecisionRender.String())
}
