package main

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, body := ts.get(t, "/v1/healthcheck", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, "testing", body["environment"])
	assert.Equal(t, "test", body["version"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", testAdminEmail, "wrong-password"},
		{"unknown email", "someone@example.com", testAdminPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, _ := ts.post(t, "/v1/auth/login", map[string]string{"email": tt.email, "password": tt.password}, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
}

func TestAdminRoutesRequireAuthentication(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, _ := ts.post(t, "/v1/admin/posts", map[string]string{"title": "Nope", "content": "<p>nope</p>", "date": "2026-01-01"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	garbage := "not-a-real-token"
	status, _, _ = ts.post(t, "/v1/admin/posts", map[string]string{"title": "Nope", "content": "<p>nope</p>", "date": "2026-01-01"}, &garbage)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPostLifecycle(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	// create
	status, _, body := ts.post(t, "/v1/admin/posts", map[string]string{
		"title":   "Hello World!",
		"content": "<p>First post.</p>",
		"date":    "2026-01-15",
	}, &token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello-world", body["slug"])
	assert.Equal(t, "success", body["operation_status"])
	assert.Equal(t, rebuildNotConfigured, body["rebuild_status"])

	// public read
	status, _, body = ts.get(t, "/v1/posts/hello-world", nil)
	require.Equal(t, http.StatusOK, status)
	post := body["post"].(map[string]any)
	assert.Equal(t, "Hello World!", post["title"])
	assert.Equal(t, "<p>First post.</p>", post["content"])

	// update keeps the slug
	status, _, body = ts.put(t, "/v1/admin/posts/hello-world", &token, map[string]any{
		"title":   "Hello Again",
		"content": "<p>Edited.</p>",
		"date":    "2026-01-16",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello-world", body["slug"])

	status, _, body = ts.get(t, "/v1/admin/posts/hello-world", &token)
	require.Equal(t, http.StatusOK, status)
	post = body["post"].(map[string]any)
	assert.Equal(t, "Hello Again", post["title"])

	// delete, then both surfaces answer 404
	status, _, body = ts.delete(t, "/v1/admin/posts/hello-world", &token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, rebuildSkipped, body["rebuild_status"])

	status, _, _ = ts.get(t, "/v1/posts/hello-world", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = ts.delete(t, "/v1/admin/posts/hello-world", &token)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreatePostDuplicateSlugConflict(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	payload := map[string]string{
		"title":   "Same Title",
		"content": "<p>one</p>",
		"date":    "2026-02-01",
	}

	status, _, _ := ts.post(t, "/v1/admin/posts", payload, &token)
	require.Equal(t, http.StatusOK, status)

	status, _, _ = ts.post(t, "/v1/admin/posts", payload, &token)
	assert.Equal(t, http.StatusConflict, status)
}

func TestCreatePostValidation(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	status, _, body := ts.post(t, "/v1/admin/posts", map[string]string{
		"title": "No Content",
		"date":  "not-a-date",
	}, &token)

	assert.Equal(t, http.StatusBadRequest, status)
	errs := body["error"].(map[string]any)
	assert.Contains(t, errs, "content")
	assert.Contains(t, errs, "date")
}

func TestListPosts(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	for _, title := range []string{"First Post", "Second Post", "Third Post"} {
		status, _, _ := ts.post(t, "/v1/admin/posts", map[string]string{
			"title":   title,
			"content": "<p>Hello <b>world</b></p>",
			"date":    "2026-03-01",
		}, &token)
		require.Equal(t, http.StatusOK, status)
	}

	status, _, body := ts.get(t, "/v1/posts", nil)
	require.Equal(t, http.StatusOK, status)

	posts := body["posts"].([]any)
	assert.Len(t, posts, 3)
	assert.Equal(t, float64(1), body["total_pages"])
	assert.Equal(t, float64(1), body["current_page"])

	first := posts[0].(map[string]any)
	assert.Equal(t, "Hello world", first["snippet"])
	assert.NotContains(t, first, "content")
}

func TestImageUploadAndServe(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	// 1x1 PNG header bytes are enough for a pass-through store
	pngData := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

	status, _, body := ts.uploadFile(t, "/v1/admin/images", "image", "photo.PNG", "image/png", pngData, &token)
	require.Equal(t, http.StatusOK, status)

	imageURL, ok := body["image_url"].(string)
	require.True(t, ok)
	assert.Contains(t, imageURL, "http://example.com/v1/images/")
	assert.Contains(t, imageURL, ".png")

	// serve it back through the public endpoint
	path := imageURL[len("http://example.com"):]
	res, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=3600", res.Header.Get("Cache-Control"))

	served, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, pngData, served)
}

func TestImageUploadRejectsNonImages(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	status, _, _ := ts.uploadFile(t, "/v1/admin/images", "image", "notes.txt", "text/plain", []byte("just text"), &token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, _ = ts.post(t, "/v1/admin/images", nil, &token)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestImageUploadRejectsOversizedBody(t *testing.T) {
	app := newGateApplication(testAdminEmail)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "huge.png")
	require.NoError(t, err)
	_, err = part.Write(make([]byte, maxImageBytes+1))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()

	app.uploadImageHandler(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "must not be larger than")
}

func TestServeUnknownImage(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, _ := ts.get(t, "/v1/images/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidateEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, _ := ts.get(t, "/v1/admin/validate", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := ts.login(t, testAdminEmail, testAdminPassword)

	status, _, body := ts.get(t, "/v1/admin/validate", &token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["authorized"])
	assert.NotEmpty(t, body["message"])
}

func TestLogout(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	token := ts.login(t, testAdminEmail, testAdminPassword)

	status, _, _ := ts.get(t, "/v1/admin/validate", &token)
	require.Equal(t, http.StatusOK, status)

	status, _, _ = ts.post(t, "/v1/auth/logout", nil, &token)
	require.Equal(t, http.StatusOK, status)

	// the session no longer authenticates
	status, _, _ = ts.get(t, "/v1/admin/validate", &token)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = ts.post(t, "/v1/auth/logout", nil, &token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminConsoleGateEndToEnd(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// anonymous visitors bounce to the login page
	res, err := client.Get(ts.URL + "/blog/admin")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/blog/login?redirectedFrom=%2Fblog%2Fadmin", res.Header.Get("Location"))

	// a logged-in admin gets through via the session cookie
	token := ts.login(t, testAdminEmail, testAdminPassword)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/blog/admin", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	res, err = client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
