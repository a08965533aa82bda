package tab

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, m *Manager, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	id, err := m.Resolve(e.NewContext(req, rec))
	require.NoError(t, err)
	return id, rec
}

func TestResolve_HeaderNamesTab(t *testing.T) {
	m := NewManager("test-secret", false)
	want := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, want)
	id, rec := resolve(t, m, req)

	assert.Equal(t, want, id)
	assert.Empty(t, rec.Result().Cookies())
}

func TestResolve_HeaderlessRequestsAreNewTabs(t *testing.T) {
	m := NewManager("test-secret", false)

	first, rec := resolve(t, m, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Empty(t, rec.Result().Cookies(), "no cookie unless the fallback is enabled")

	second, _ := resolve(t, m, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEqual(t, first, second)
}

func TestResolve_IgnoresCookieWithoutFallback(t *testing.T) {
	withCookie := NewManager("test-secret", false, WithCookieFallback())
	_, issued := resolve(t, withCookie, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, issued.Result().Cookies(), 1)
	cookie := issued.Result().Cookies()[0]

	m := NewManager("test-secret", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	a, _ := resolve(t, m, req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	b, _ := resolve(t, m, req)

	assert.NotEqual(t, a, b, "two tabs sending the same cookie must not share an id")
}

func TestResolve_CookieFallback(t *testing.T) {
	m := NewManager("test-secret", false, WithCookieFallback())

	id, rec := resolve(t, m, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Zero(t, cookies[0].MaxAge, "tab cookie must be a browser-session cookie")
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	again, rec2 := resolve(t, m, req)
	assert.Equal(t, id, again)
	assert.Empty(t, rec2.Result().Cookies(), "known tab must not be re-issued")

	header := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	req.Header.Set(HeaderName, header)
	got, _ := resolve(t, m, req)
	assert.Equal(t, header, got, "the header wins over the cookie")
}

func TestResolve_InvalidInputsGetFreshTab(t *testing.T) {
	m := NewManager("test-secret", false, WithCookieFallback())
	other := NewManager("other-secret", false, WithCookieFallback())

	_, foreign := resolve(t, other, httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, "not-a-uuid")
	req.AddCookie(foreign.Result().Cookies()[0])

	id, rec := resolve(t, m, req)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Len(t, rec.Result().Cookies(), 1)
}
