package service

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/tab"
)

var pngHeader = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func uploadRequest(t *testing.T, tabID, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(tab.HeaderName, tabID)
	return req
}

func TestUploadAction(t *testing.T) {
	e, env := setupTestEcho(t)
	user := env.fake.addAccount("uploader@example.com", "secret1", nil)

	tabID, store := env.newTab()
	signIn(t, store, user, backend.AccountPartnership)

	tests := []struct {
		name       string
		filename   string
		content    []byte
		wantStatus int
	}{
		{"png image", "logo.png", pngHeader, http.StatusOK},
		{"text disguised as image", "logo.png", []byte("just some text"), http.StatusBadRequest},
		{"too large", "big.png", append(append([]byte{}, pngHeader...), make([]byte, 1<<20)...), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, uploadRequest(t, tabID, tt.filename, tt.content))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	env.fake.mu.Lock()
	defer env.fake.mu.Unlock()
	assert.Equal(t, []string{"logo.png"}, env.fake.uploads, "only the valid image reaches the backend")
}

func TestUploadReturnsURL(t *testing.T) {
	e, env := setupTestEcho(t)
	user := env.fake.addAccount("uploader@example.com", "secret1", nil)

	tabID, store := env.newTab()
	signIn(t, store, user, "")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, tabID, "photo.png", pngHeader))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decodeBody[ActionResult](t, rec)
	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/photo.png", data["imageUrl"])
	assert.Equal(t, "image/png", data["contentType"])
}

func TestUploadRequiresSession(t *testing.T) {
	e, env := setupTestEcho(t)
	tabID, _ := env.newTab()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, tabID, "photo.png", pngHeader))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
