package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Env:         "test",
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		CacheTTL:    time.Minute,
		CORSOrigins: []string{"http://localhost:5173"},
		NotifyEmail: "owner@example.com",
	}
}

// newTestStore opens a fresh sqlite database in the test's temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	return newTestStoreWithLog(t, discardLogger())
}

func newTestStoreWithLog(t *testing.T, log *slog.Logger) *Store {
	t.Helper()
	s, err := openSQLiteStore(filepath.Join(t.TempDir(), "portfolio.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *fakeMailer) Sent() []MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MailMessage(nil), m.sent...)
}

type testEnv struct {
	t       *testing.T
	store   *Store
	mailer  *fakeMailer
	server  *Server
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newTestStore(t)
	mailer := &fakeMailer{}
	srv := NewServer(testConfig(), store, mailer, discardLogger())
	return &testEnv{t: t, store: store, mailer: mailer, server: srv, handler: srv.Routes()}
}

// account creates an account with the given role and returns it with a token.
func (e *testEnv) account(email, role string) (*Account, string) {
	e.t.Helper()
	auth := &AuthService{accounts: e.store.Accounts}
	acc, _, err := auth.EnsureAccount(context.Background(), email, "password123", role)
	require.NoError(e.t, err)
	token, _, err := e.server.tokens.Issue(acc)
	require.NoError(e.t, err)
	return acc, token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return e.doWithHeaders(method, path, headers, body)
}

// doWithHeaders sends body as JSON unless it is nil or already a string.
func (e *testEnv) doWithHeaders(method, path string, headers map[string]string, body ...any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if len(body) > 0 {
		switch b := body[0].(type) {
		case nil:
		case string:
			r = bytes.NewBufferString(b)
		default:
			buf, err := json.Marshal(b)
			require.NoError(e.t, err)
			r = bytes.NewReader(buf)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type apiResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	return out
}

func ptr[V any](v V) *V { return &v }
