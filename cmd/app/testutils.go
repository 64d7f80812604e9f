package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/fennwick/pressroom/internal/authservice"
	"github.com/fennwick/pressroom/internal/common"
	"github.com/fennwick/pressroom/internal/imageservice"
	"github.com/fennwick/pressroom/internal/postservice"
	"github.com/fennwick/pressroom/internal/schemaservice"
	"github.com/fennwick/pressroom/internal/telemetryservice"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "Test_1234!"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

// newTestApplication provisions a throwaway database through the schema
// provisioner itself rather than the migration files, so every test run also
// exercises the provisioning path.
func newTestApplication(t *testing.T) (*application, *sql.DB) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dsn := common.TestDBURL(t)

	provisioner := schemaservice.NewProvisioner(dsn, testAdminEmail, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := provisioner.EnsureSchema(ctx)
	require.NoError(t, err)

	// the pool carries app.email exactly as main does
	db, err := sql.Open("postgres", common.DSNWithSessionEmail(dsn, testAdminEmail))
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	cfg := &Config{
		Port:          ":0",
		Environment:   "testing",
		Version:       "test",
		PublicBaseURL: "http://example.com",
		AdminEmail:    testAdminEmail,
		DatabaseURL:   dsn,
	}

	app := &application{
		config:       cfg,
		logger:       logger,
		postService:  postservice.NewPostService(db, telemetryservice.NoopSink{}),
		imageService: imageservice.NewImageService(db, cfg.PublicBaseURL),
		authService:  authservice.NewAuthService(db, cfg.AdminEmail, string(hash)),
		provisioner:  provisioner,
		loginLimiter: common.NewLoginLimiter(rate.Limit(100), 100, time.Minute),
	}

	return app, db
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	status, _, body := ts.post(t, "/v1/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, status)

	token, ok := body["token"].(string)
	require.True(t, ok, "login response should carry a token")

	return token
}

func (ts *testServer) post(t *testing.T, path string, data any, token *string) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewReader(jsonPayload)
	req, err := http.NewRequest(http.MethodPut, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodDelete, ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) uploadFile(t *testing.T, path, field, filename, contentType string, data []byte, token *string) (int, http.Header, envelope) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}
