package test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// RecordedRequest is a request received by a MockServer
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// MockServer is a fake WorkLocal API. Handlers are tried in registration order
// until one of them writes a response; unhandled requests get a 404.
type MockServer struct {
	server      *httptest.Server
	handlers    []http.Handler
	requests    []RecordedRequest
	requestsMux sync.Mutex
}

func NewMockServer() *MockServer {
	ms := &MockServer{}
	ms.server = httptest.NewServer(ms)
	return ms
}

func (m *MockServer) URL() string {
	return m.server.URL
}

func (m *MockServer) Close() {
	if m.server != nil {
		m.server.Close()
	}
}

func (m *MockServer) Handle(handler http.Handler) {
	m.handlers = append(m.handlers, handler)
}

// Requests returns a snapshot of the received requests
func (m *MockServer) Requests() []RecordedRequest {
	m.requestsMux.Lock()
	defer m.requestsMux.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

func (m *MockServer) LastRequest() *RecordedRequest {
	requests := m.Requests()
	if len(requests) == 0 {
		return nil
	}
	return &requests[len(requests)-1]
}

func (m *MockServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	m.requestsMux.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method: req.Method,
		Path:   req.URL.EscapedPath(),
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	m.requestsMux.Unlock()

	tracker := &writeTracker{ResponseWriter: w}
	for _, handler := range m.handlers {
		req.Body = io.NopCloser(bytes.NewReader(body))
		handler.ServeHTTP(tracker, req)
		if tracker.written {
			return
		}
	}
	http.NotFound(w, req)
}

type writeTracker struct {
	http.ResponseWriter
	written bool
}

func (w *writeTracker) WriteHeader(statusCode int) {
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *writeTracker) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Respond returns a handler answering method and path with status and body.
// An empty method matches any method.
func Respond(method, path string, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if (method != "" && req.Method != method) || req.URL.EscapedPath() != path {
			return
		}
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}
