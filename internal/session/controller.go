// Package session owns the signed-in state of one browser tab: restoring it
// from the tab's storage, signing in and out, and deciding where a restored
// session should be sent.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/loganlanou/colink-venture/internal/gateway"
	"github.com/loganlanou/colink-venture/internal/notify"
)

const signedInValue = "true"

// Navigator receives navigation requests. Implementations must not call
// back into the Controller.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Session is the in-memory view of the persisted session. NeedsOnboarding
// mirrors the presence of the stored "onboarded" key, which is set while
// onboarding is still outstanding.
type Session struct {
	Token           string              `json:"-"`
	User            *backend.UserRecord `json:"user,omitempty"`
	SignedIn        bool                `json:"signedIn"`
	AccountType     string              `json:"accountType,omitempty"`
	NeedsOnboarding bool                `json:"needsOnboarding"`
	IsLoading       bool                `json:"isLoading"`
}

type Option func(*Controller)

// WithLandingPath sets where a successful sign-in navigates.
func WithLandingPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.landingPath = path
		}
	}
}

// Controller serializes every read and write of the session keys in a tab
// store. No lock is held while a backend call is in flight, so overlapping
// operations resolve last-write-wins.
type Controller struct {
	mu          sync.Mutex
	machine     Machine
	session     Session
	path        string
	landingPath string

	store    clientstore.Store
	auth     backend.AuthProvider
	nav      Navigator
	notifier notify.Notifier
}

func NewController(store clientstore.Store, auth backend.AuthProvider, nav Navigator, notifier notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		auth:        auth,
		nav:         nav,
		notifier:    notifier,
		landingPath: DefaultLandingPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s.User != nil {
		u := *s.User
		u.UserMetadata = maps.Clone(s.User.UserMetadata)
		s.User = &u
	}
	s.IsLoading = c.machine.State().Loading()
	return s
}

// Restore rebuilds the session for a navigation to path and redirects when
// the stored flags call for it. It never fails; problems are reported as
// toasts and resolve to Anonymous.
func (c *Controller) Restore(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.path = cleanPath(path)
	if err := c.machine.Fire(EventRestore); err != nil {
		slog.Debug("restore skipped", "path", c.path, "error", err)
		return
	}

	if IsPublicPath(c.path) {
		c.loadLocked()
		return
	}

	token, user, ok := c.readStoredSession()
	if !ok {
		clientstore.ClearSession(c.store)
		c.session = Session{}
		c.fire(EventCleared)
		c.navigate(HomePath)
		return
	}

	record, err := parseUser(user)
	if err != nil {
		slog.Warn("clearing corrupted session", "path", c.path, "error", err)
		clientstore.ClearSession(c.store)
		c.session = Session{}
		c.fire(EventCleared)
		c.notify(notify.Error("Session corrupted", "Your saved session could not be read. Please sign in again."))
		c.navigate(HomePath)
		return
	}

	c.populate(token, record)
	c.fire(EventRestored)

	if IsSelfManagingPath(c.path) || c.consumeSkip() {
		return
	}

	if target := AutoNavigationTarget(c.session); target != "" {
		c.navigate(target)
	}

	if _, seen := c.store.Get(clientstore.KeyInitialLoadComplete); !seen {
		c.store.Set(clientstore.KeyInitialLoadComplete, signedInValue)
		c.notify(notify.Info("Session restored", "Welcome back, "+displayName(record)+"."))
	}
}

// Load reads the stored session without writing, redirecting or notifying.
// Actions use it to learn who is calling.
func (c *Controller) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.Fire(EventRestore); err != nil {
		slog.Debug("load skipped", "error", err)
		return
	}
	c.loadLocked()
}

func (c *Controller) loadLocked() {
	token, user, ok := c.readStoredSession()
	if !ok {
		c.session = Session{}
		c.fire(EventCleared)
		return
	}

	record, err := parseUser(user)
	if err != nil {
		c.session = Session{}
		c.fire(EventCleared)
		return
	}

	c.populate(token, record)
	c.fire(EventRestored)
}

// SignIn validates the credentials, logs in and navigates to the landing
// route.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		c.mu.Lock()
		c.notify(notify.Error("Sign in failed", err.Error()))
		c.mu.Unlock()
		return err
	}

	if err := c.begin(); err != nil {
		return err
	}

	result, err := c.auth.Login(ctx, strings.TrimSpace(email), password)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		return c.failAuth("Sign in failed", "Invalid email or password", err)
	}

	c.persist(result)
	if _, ok := c.store.Get(clientstore.KeyAccountType); !ok {
		if t := userAccountType(result.User); t != "" {
			c.store.Set(clientstore.KeyAccountType, t)
			c.session.AccountType = t
		}
	}

	c.notify(notify.Info("Welcome back!", "Signed in as "+result.User.Email+"."))
	c.navigate(c.landingPath)
	c.fire(EventSucceed)
	return nil
}

// SignUp registers a new account. Accounts without a stored account type
// are sent to onboarding.
func (c *Controller) SignUp(ctx context.Context, email, password string, metadata map[string]any) error {
	if err := validateCredentials(email, password); err != nil {
		c.mu.Lock()
		c.notify(notify.Error("Sign up failed", err.Error()))
		c.mu.Unlock()
		return err
	}

	if err := c.begin(); err != nil {
		return err
	}

	result, err := c.auth.Register(ctx, strings.TrimSpace(email), password, metadata)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		return c.failAuth("Sign up failed", "Registration failed", err)
	}

	c.persist(result)
	c.notify(notify.Info("Account created", "Welcome to CoLink Venture!"))

	if _, ok := c.store.Get(clientstore.KeyAccountType); !ok {
		c.store.Set(clientstore.KeyOnboarded, "pending")
		c.session.NeedsOnboarding = true
		c.navigate(OnboardingPath)
	}

	c.fire(EventSucceed)
	return nil
}

// UpdateProfile sends fields to the backend and merges the returned user
// into the stored record. A failure keeps the existing session.
func (c *Controller) UpdateProfile(ctx context.Context, fields map[string]any) error {
	c.mu.Lock()
	if c.machine.State() != Authenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	c.fire(EventBegin)
	c.mu.Unlock()

	updated, err := c.auth.UpdateProfile(ctx, fields)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.fire(EventRevert)
		if errors.Is(err, gateway.ErrTransport) {
			c.notify(networkToast())
			return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
		}
		c.notify(notify.Error("Profile update failed", messageOf(err, "Your profile could not be saved.")))
		return fmt.Errorf("update profile: %w", err)
	}

	merged := mergeUser(c.session.User, updated)
	if err := c.storeUser(merged); err != nil {
		c.fire(EventRevert)
		c.notify(notify.Error("Profile update failed", "Your profile could not be saved."))
		return err
	}
	c.store.Set(clientstore.KeySignedIn, signedInValue)
	c.session.User = merged
	c.session.SignedIn = true

	c.notify(notify.Info("Profile updated", "Your changes have been saved."))
	c.fire(EventSucceed)
	return nil
}

// SignOut clears the stored session and returns to the home page.
func (c *Controller) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clientstore.ClearSession(c.store)
	c.session = Session{}
	c.fire(EventSignOut)
	c.notify(notify.Info("Signed out", "You have been signed out."))
	c.navigate(HomePath)
}

// CompleteOnboarding records the chosen account type, clears the pending
// onboarding flag and navigates to that account type's dashboard.
func (c *Controller) CompleteOnboarding(accountType string) error {
	accountType = NormalizeAccountType(accountType)
	if !backend.ValidAccountType(accountType) {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, accountType)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.State() != Authenticated {
		return ErrNotAuthenticated
	}

	c.store.Remove(clientstore.KeyOnboarded)
	c.store.Set(clientstore.KeyAccountType, accountType)
	c.session.NeedsOnboarding = false
	c.session.AccountType = accountType

	c.notify(notify.Info("You're all set", "Your "+accountType+" dashboard is ready."))
	c.navigate(DashboardPath(accountType))
	return nil
}

// SkipNextAutoNavigation lets the next restore leave the tab where it is.
func (c *Controller) SkipNextAutoNavigation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(clientstore.KeySkipAutoNavigation, signedInValue)
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Fire(EventBegin)
}

// failAuth reports a failed login or registration and drops to Anonymous.
// Storage is left as it was. Must be called with mu held.
func (c *Controller) failAuth(title, fallback string, err error) error {
	if c.machine.Can(EventFail) {
		c.session = Session{}
		c.fire(EventFail)
	} else {
		// A concurrent attempt already succeeded; its session stands.
		slog.Debug("ignoring late auth failure", "state", c.machine.State(), "error", err)
	}

	if errors.Is(err, gateway.ErrTransport) {
		c.notify(networkToast())
		return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}

	c.notify(notify.Error(title, messageOf(err, fallback)))
	return fmt.Errorf("%w: %w", ErrAuthRejected, err)
}

func (c *Controller) persist(result *backend.AuthResult) {
	if err := c.storeUser(result.User); err != nil {
		slog.Error("failed to persist user", "error", err)
	}
	c.store.Set(clientstore.KeyToken, result.Token)
	c.store.Set(clientstore.KeySignedIn, signedInValue)

	accountType, _ := c.store.Get(clientstore.KeyAccountType)
	_, needsOnboarding := c.store.Get(clientstore.KeyOnboarded)
	c.session = Session{
		Token:           result.Token,
		User:            result.User,
		SignedIn:        true,
		AccountType:     NormalizeAccountType(accountType),
		NeedsOnboarding: needsOnboarding,
	}
}

func (c *Controller) storeUser(u *backend.UserRecord) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	c.store.Set(clientstore.KeyUser, string(data))
	return nil
}

func (c *Controller) readStoredSession() (token, user string, ok bool) {
	signedIn, hasSignedIn := c.store.Get(clientstore.KeySignedIn)
	token, hasToken := c.store.Get(clientstore.KeyToken)
	user, hasUser := c.store.Get(clientstore.KeyUser)
	ok = hasSignedIn && signedIn != "" && hasToken && token != "" && hasUser && user != ""
	return token, user, ok
}

func (c *Controller) populate(token string, user *backend.UserRecord) {
	accountType, _ := c.store.Get(clientstore.KeyAccountType)
	_, needsOnboarding := c.store.Get(clientstore.KeyOnboarded)
	c.session = Session{
		Token:           token,
		User:            user,
		SignedIn:        true,
		AccountType:     NormalizeAccountType(accountType),
		NeedsOnboarding: needsOnboarding,
	}
}

func (c *Controller) consumeSkip() bool {
	if _, ok := c.store.Get(clientstore.KeySkipAutoNavigation); !ok {
		return false
	}
	c.store.Remove(clientstore.KeySkipAutoNavigation)
	return true
}

// navigate requests a navigation unless the tab is already at path.
func (c *Controller) navigate(path string) {
	if path == c.path || c.nav == nil {
		return
	}
	c.nav.Navigate(path)
	c.path = path
}

func (c *Controller) notify(t notify.Toast) {
	if c.notifier != nil {
		c.notifier.Notify(t)
	}
}

func (c *Controller) fire(ev Event) {
	if err := c.machine.Fire(ev); err != nil {
		slog.Warn("session transition rejected", "error", err)
	}
}

func parseUser(raw string) (*backend.UserRecord, error) {
	var u backend.UserRecord
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCorrupted, err)
	}
	return &u, nil
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email address is required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: a password is required", ErrValidation)
	}
	return nil
}

func userAccountType(u *backend.UserRecord) string {
	t := NormalizeAccountType(u.AccountType)
	if t == "" {
		t = NormalizeAccountType(u.MetadataString("accountType"))
	}
	if !backend.ValidAccountType(t) {
		return ""
	}
	return t
}

// mergeUser lays the non-empty fields of updated over current.
func mergeUser(current, updated *backend.UserRecord) *backend.UserRecord {
	if current == nil {
		return updated
	}
	merged := *current
	merged.UserMetadata = maps.Clone(current.UserMetadata)
	if updated == nil {
		return &merged
	}

	if updated.ID != "" {
		merged.ID = updated.ID
	}
	if updated.Email != "" {
		merged.Email = updated.Email
	}
	if updated.DisplayName != "" {
		merged.DisplayName = updated.DisplayName
	}
	if updated.Role != "" {
		merged.Role = updated.Role
	}
	if updated.AccountType != "" {
		merged.AccountType = updated.AccountType
	}
	if len(updated.UserMetadata) > 0 {
		if merged.UserMetadata == nil {
			merged.UserMetadata = make(map[string]any, len(updated.UserMetadata))
		}
		maps.Copy(merged.UserMetadata, updated.UserMetadata)
	}
	return &merged
}

func displayName(u *backend.UserRecord) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Email != "" {
		return u.Email
	}
	return "there"
}

func messageOf(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func networkToast() notify.Toast {
	return notify.Error("Network error", "Unable to reach the server. Please try again.")
}
