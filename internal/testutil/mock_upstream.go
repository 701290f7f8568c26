// Package testutil provides testing utilities for the cache engine.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockUpstream is a configurable mock of the scholarship platform's upstream
// data API, used by warming-loader and middleware tests.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// RequestCount tracks total requests served, including failures.
	RequestCount int
}

// NewMockUpstream creates a mock upstream server. Paths without a registered
// handler answer 404.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if !exists {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))

	return mock
}

// HandleJSON serves body as application/json at path.
func (m *MockUpstream) HandleJSON(path, body string) {
	m.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

// HandleStatus answers path with a bare status code.
func (m *MockUpstream) HandleStatus(path string, status int) {
	m.Handle(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

// Handle registers a custom handler at path.
func (m *MockUpstream) Handle(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}
