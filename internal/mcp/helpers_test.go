package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/managed-db-mcp/internal/client"
	"github.com/bobmcallan/managed-db-mcp/internal/common"
)

// recordedRequest is one request seen by the mock control plane.
type recordedRequest struct {
	Method  string
	Path    string // escaped form
	Query   string
	Header  http.Header
	RawBody []byte
}

// bodyMap decodes the recorded JSON body into a generic map.
func (r recordedRequest) bodyMap(t *testing.T) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(r.RawBody, &m); err != nil {
		t.Fatalf("request body is not a JSON object: %v (%q)", err, r.RawBody)
	}
	return m
}

// mockAPI is a chi-routed stand-in for the Managed DB API mounted under /api.
type mockAPI struct {
	t      *testing.T
	router chi.Router
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newMockAPI(t *testing.T) *mockAPI {
	t.Helper()
	m := &mockAPI{t: t, router: chi.NewRouter()}
	m.router.Use(m.record)
	m.server = httptest.NewServer(m.router)
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		m.mu.Lock()
		m.requests = append(m.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.EscapedPath(),
			Query:   r.URL.RawQuery,
			Header:  r.Header.Clone(),
			RawBody: body,
		})
		m.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (m *mockAPI) url() string { return m.server.URL + "/api" }

func (m *mockAPI) dispatcher(opts ...Option) *Dispatcher {
	api := client.NewManagedDBClient(m.url(), 5*time.Second, common.NewSilentLogger())
	return NewDispatcher(api, common.NewSilentLogger(), opts...)
}

func (m *mockAPI) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockAPI) last() recordedRequest {
	m.t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		m.t.Fatal("expected at least one request to the mock API")
	}
	return m.requests[len(m.requests)-1]
}

// jsonReply responds with status and v encoded as JSON.
func jsonReply(status int, v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
}

// sampleProject returns a fully populated project document.
func sampleProject() map[string]interface{} {
	return map[string]interface{}{
		"id":             "7f1c2a9e-0000-4000-8000-000000000001",
		"name":           "Analytics",
		"slug":           "analytics",
		"mode":           "db",
		"db_name":        "proj_analytics",
		"schema_name":    "public",
		"connection_uri": "postgresql://svc:secret@db:5432/proj_analytics",
		"rest_base_url":  "http://localhost:8080/rest/analytics",
		"docs_url":       "http://localhost:8080/docs/analytics",
		"anon_key":       "anon-abc",
		"service_key":    "service-xyz",
		"created_at":     "2026-10-01T10:00:00Z",
		"updated_at":     "2026-10-02T11:00:00Z",
	}
}
