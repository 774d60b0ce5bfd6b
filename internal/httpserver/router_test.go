package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandlers struct {
	calls []string
}

func (s *stubHandlers) Form(w http.ResponseWriter, r *http.Request) {
	s.calls = append(s.calls, "form")
}

func (s *stubHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	s.calls = append(s.calls, "submit")
}

func (s *stubHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	s.calls = append(s.calls, "generate")
}

func (s *stubHandlers) Options(w http.ResponseWriter, r *http.Request) {
	s.calls = append(s.calls, "options")
}

func newTestRouter(origins []string) (http.Handler, *stubHandlers) {
	stub := &stubHandlers{}
	router := NewRouter(RouterDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Pages:  stub,
		API:    stub,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metrics"))
		}),
		CORSOrigins: origins,
	})
	return router, stub
}

func TestRouterRoutes(t *testing.T) {
	router, stub := newTestRouter(nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodPost, "/generate"},
		{http.MethodPost, "/api/v1/generate"},
		{http.MethodGet, "/api/v1/options"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, "%s %s", tc.method, tc.path)
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	}
	assert.Equal(t, []string{"form", "submit", "generate", "options"}, stub.calls)
}

func TestRouterPingAndMetrics(t *testing.T) {
	router, _ := newTestRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", rr.Body.String())
}

func TestRouterNotFoundUsesErrorEnvelope(t *testing.T) {
	router, _ := newTestRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestRouterCORS(t *testing.T) {
	router, stub := newTestRouter([]string{"https://example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/generate", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, stub.calls)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/options", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterWithoutCORSSendsNoHeaders(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/options", nil)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
