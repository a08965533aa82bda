package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/loganlanou/colink-venture/internal/tab"
)

type fakeAccount struct {
	password string
	user     backend.UserRecord
}

// fakeBackend is an in-memory stand-in for the REST backend. Businesses are
// served in the mixed field spellings the real backend produces.
type fakeBackend struct {
	mu           sync.Mutex
	accounts     map[string]*fakeAccount
	businesses   []map[string]any
	posts        []backend.Post
	appointments []backend.Appointment
	messages     []backend.Message
	uploads      []string
	server       *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	f := &fakeBackend{accounts: map[string]*fakeAccount{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", f.login)
	mux.HandleFunc("POST /users/register", f.register)
	mux.HandleFunc("GET /users/profile", f.authed(f.profile))
	mux.HandleFunc("GET /users/profile/{id}", f.authed(f.profileByID))
	mux.HandleFunc("PUT /users/profile", f.authed(f.updateProfile))
	mux.HandleFunc("GET /users/getAllUsers", f.allUsers)
	mux.HandleFunc("GET /businesses/{$}", f.listBusinesses)
	mux.HandleFunc("POST /businesses/{$}", f.authed(f.createBusiness))
	mux.HandleFunc("GET /businesses/{id}", f.getBusiness)
	mux.HandleFunc("GET /businesses/categories/{type}", f.categories)
	mux.HandleFunc("GET /businesses/{type}/category/{category}", f.byCategory)
	mux.HandleFunc("GET /posts", f.listPosts)
	mux.HandleFunc("POST /posts", f.authed(f.createPost))
	mux.HandleFunc("DELETE /posts/{id}", f.authed(f.deletePost))
	mux.HandleFunc("GET /appointments", f.authed(f.listAppointments))
	mux.HandleFunc("POST /appointments", f.authed(f.createAppointment))
	mux.HandleFunc("PUT /appointments/{id}/status", f.authed(f.updateAppointment))
	mux.HandleFunc("GET /chats/messages/all", f.authed(f.listMessages))
	mux.HandleFunc("POST /chats/message", f.authed(f.sendMessage))
	mux.HandleFunc("POST /uploads", f.authed(f.upload))

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBackend) addAccount(email, password string, metadata map[string]any) backend.UserRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := backend.UserRecord{
		ID:           fmt.Sprintf("user-%d", len(f.accounts)+1),
		Email:        email,
		UserMetadata: metadata,
	}
	f.accounts[email] = &fakeAccount{password: password, user: u}
	return u
}

func (f *fakeBackend) addBusiness(raw map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.businesses = append(f.businesses, raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenFor(u backend.UserRecord) string {
	return "token-" + u.ID
}

// authed resolves the bearer token to an account or answers 401.
func (f *fakeBackend) authed(h func(w http.ResponseWriter, r *http.Request, acct *fakeAccount)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		f.mu.Lock()
		var found *fakeAccount
		for _, acct := range f.accounts {
			if tokenFor(acct.user) == token {
				found = acct
			}
		}
		f.mu.Unlock()

		if found == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		h(w, r, found)
	}
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	acct, ok := f.accounts[req.Email]
	f.mu.Unlock()

	if !ok || acct.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, backend.AuthResult{Token: tokenFor(acct.user), User: &acct.user})
}

func (f *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	delete(body, "email")
	delete(body, "password")

	f.mu.Lock()
	_, exists := f.accounts[email]
	f.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}

	u := f.addAccount(email, password, body)
	writeJSON(w, http.StatusCreated, map[string]any{"data": backend.AuthResult{Token: tokenFor(u), User: &u}})
}

func (f *fakeBackend) profile(w http.ResponseWriter, _ *http.Request, acct *fakeAccount) {
	writeJSON(w, http.StatusOK, map[string]any{"user": acct.user})
}

func (f *fakeBackend) profileByID(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acct := range f.accounts {
		if acct.user.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, map[string]any{"user": acct.user})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
}

func (f *fakeBackend) updateProfile(w http.ResponseWriter, r *http.Request, acct *fakeAccount) {
	var fields map[string]any
	_ = json.NewDecoder(r.Body).Decode(&fields)

	f.mu.Lock()
	if name, ok := fields["displayName"].(string); ok {
		acct.user.DisplayName = name
	}
	u := acct.user
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (f *fakeBackend) allUsers(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := []backend.UserRecord{}
	for _, acct := range f.accounts {
		users = append(users, acct.user)
	}
	writeJSON(w, http.StatusOK, users)
}

func (f *fakeBackend) listBusinesses(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": f.businesses})
}

func (f *fakeBackend) createBusiness(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var b map[string]any
	_ = json.NewDecoder(r.Body).Decode(&b)

	f.mu.Lock()
	b["id"] = fmt.Sprintf("biz-%d", len(f.businesses)+1)
	f.businesses = append(f.businesses, b)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"data": b})
}

func (f *fakeBackend) getBusiness(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.businesses {
		if fmt.Sprint(b["_id"]) == r.PathValue("id") || fmt.Sprint(b["id"]) == r.PathValue("id") {
			writeJSON(w, http.StatusOK, b)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Business not found"})
}

func (f *fakeBackend) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []any{"Technology", map[string]string{"name": "Food"}})
}

func (f *fakeBackend) byCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := []map[string]any{}
	for _, b := range f.businesses {
		if b["account_type"] == r.PathValue("type") && b["category"] == r.PathValue("category") {
			list = append(list, b)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (f *fakeBackend) listPosts(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]backend.Post{}, f.posts...))
}

func (f *fakeBackend) createPost(w http.ResponseWriter, r *http.Request, acct *fakeAccount) {
	var p backend.NewPost
	_ = json.NewDecoder(r.Body).Decode(&p)

	f.mu.Lock()
	post := backend.Post{
		ID:        fmt.Sprintf("post-%d", len(f.posts)+1),
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.posts = append(f.posts, post)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, post)
}

func (f *fakeBackend) deletePost(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, p := range f.posts {
		if p.ID == r.PathValue("id") {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Post not found"})
}

func (f *fakeBackend) listAppointments(w http.ResponseWriter, _ *http.Request, _ *fakeAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]backend.Appointment{}, f.appointments...))
}

func (f *fakeBackend) createAppointment(w http.ResponseWriter, r *http.Request, acct *fakeAccount) {
	var a backend.NewAppointment
	_ = json.NewDecoder(r.Body).Decode(&a)

	f.mu.Lock()
	appt := backend.Appointment{
		ID:          fmt.Sprintf("appt-%d", len(f.appointments)+1),
		RequesterID: acct.user.ID,
		RecipientID: a.RecipientID,
		BusinessID:  a.BusinessID,
		Title:       a.Title,
		Notes:       a.Notes,
		ScheduledAt: a.ScheduledAt,
		Status:      backend.AppointmentPending,
	}
	f.appointments = append(f.appointments, appt)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, appt)
}

func (f *fakeBackend) updateAppointment(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var req struct {
		Status backend.AppointmentStatus `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.appointments {
		if f.appointments[i].ID == r.PathValue("id") {
			f.appointments[i].Status = req.Status
			writeJSON(w, http.StatusOK, f.appointments[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Appointment not found"})
}

func (f *fakeBackend) listMessages(w http.ResponseWriter, _ *http.Request, _ *fakeAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]backend.Message{}, f.messages...))
}

func (f *fakeBackend) sendMessage(w http.ResponseWriter, r *http.Request, acct *fakeAccount) {
	var m backend.NewMessage
	_ = json.NewDecoder(r.Body).Decode(&m)

	f.mu.Lock()
	msg := backend.Message{
		ID:          fmt.Sprintf("msg-%d", len(f.messages)+1),
		SenderID:    acct.user.ID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.messages = append(f.messages, msg)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, msg)
}

func (f *fakeBackend) upload(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "image is required"})
		return
	}
	defer file.Close()
	_, _ = io.Copy(io.Discard, file)

	f.mu.Lock()
	f.uploads = append(f.uploads, header.Filename)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"imageUrl": "https://cdn.example.com/" + header.Filename}})
}

func testConfig(apiBaseURL string) *Config {
	config := &Config{
		Environment: "test",
		Port:        "8080",
	}
	config.API.BaseURL = apiBaseURL
	config.Session.Secret = "test-secret"
	config.Session.LandingPath = "/dashboard"
	config.Session.AdminEmail = "admin@colink.com"
	config.Session.TabIdleTTL = time.Hour
	config.Data.Backend = DataBackendREST
	config.Upload.MaxSize = 1 << 20
	return config
}

// setupTestService creates a service whose REST backend is a fakeBackend
// and whose tabs live in memory. configure runs on the config before the
// service is built.
func setupTestService(t *testing.T, configure ...func(*Config)) (*Service, *fakeBackend, *clientstore.MemoryTabs) {
	t.Helper()

	fake := newFakeBackend(t)
	tabs := clientstore.NewMemoryTabs()

	config := testConfig(fake.server.URL)
	for _, fn := range configure {
		fn(config)
	}

	svc, err := New(tabs, config, WithHTTPClient(fake.server.Client()))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, fake, tabs
}

// setupTestEcho creates an Echo instance with routes registered
func setupTestEcho(t *testing.T, configure ...func(*Config)) (*echo.Echo, *testEnv) {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok {
			c.Response().WriteHeader(he.Code)
		} else {
			c.Response().WriteHeader(500)
		}
	}

	svc, fake, tabs := setupTestService(t, configure...)
	svc.RegisterRoutes(e)

	return e, &testEnv{svc: svc, fake: fake, tabs: tabs}
}

type testEnv struct {
	svc  *Service
	fake *fakeBackend
	tabs *clientstore.MemoryTabs
}

// newTab returns a fresh tab id and its storage.
func (env *testEnv) newTab() (string, clientstore.Store) {
	id := uuid.NewString()
	return id, env.tabs.Tab(id)
}

// signIn stores a signed-in session for u in store, the way a login leaves it.
func signIn(t *testing.T, store clientstore.Store, u backend.UserRecord, accountType string) {
	t.Helper()

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("failed to encode user: %v", err)
	}
	store.Set(clientstore.KeyToken, tokenFor(u))
	store.Set(clientstore.KeyUser, string(data))
	store.Set(clientstore.KeySignedIn, "true")
	store.Set(clientstore.KeyInitialLoadComplete, "true")
	if accountType != "" {
		store.Set(clientstore.KeyAccountType, accountType)
	}
}

// serve sends a request as tabID and returns the recorder.
func serve(e *echo.Echo, method, path, tabID string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tabID != "" {
		req.Header.Set(tab.HeaderName, tabID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
