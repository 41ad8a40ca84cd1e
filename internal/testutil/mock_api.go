// Package testutil provides a mock SportMonks server for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// MockResponse defines a canned response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// NextPageStyle selects how the mock encodes pagination.next_page.
type NextPageStyle int

const (
	NextPageNumber NextPageStyle = iota
	NextPageString
	NextPageURL
)

// MockAPI is a configurable mock SportMonks server.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []*http.Request
}

// NewMockAPI starts a new mock server. Unknown paths answer 404.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{handlers: make(map[string]http.HandlerFunc)}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.Clone(r.Context()))
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if !exists {
			http.Error(w, `{"message":"No result(s) found"}`, http.StatusNotFound)
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence answers path with the given responses in order, repeating
// the last one once the sequence is used up.
func (m *MockAPI) SetSequence(path string, responses ...MockResponse) {
	var (
		mu sync.Mutex
		i  int
	)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[min(i, len(responses)-1)]
		i++
		mu.Unlock()
		writeResponse(w, resp)
	})
}

// SetPages serves records at path split into pages of perPage items,
// honouring the page query parameter.
func (m *MockAPI) SetPages(path string, records []any, perPage int, style NextPageStyle) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		WriteJSON(w, PageBody(m.URL()+path, records, page, perPage, style))
	})
}

// PageBody builds one page envelope of records.
func PageBody(link string, records []any, page, perPage int, style NextPageStyle) map[string]any {
	start := min((page-1)*perPage, len(records))
	end := min(start+perPage, len(records))
	hasMore := end < len(records)

	var next any
	if hasMore {
		switch style {
		case NextPageString:
			next = strconv.Itoa(page + 1)
		case NextPageURL:
			next = fmt.Sprintf("%s?page=%d", link, page+1)
		default:
			next = page + 1
		}
	}

	return map[string]any{
		"data": records[start:end],
		"pagination": map[string]any{
			"count":        end - start,
			"per_page":     perPage,
			"current_page": page,
			"next_page":    next,
			"has_more":     hasMore,
		},
		"rate_limit": map[string]any{
			"resets_in_seconds": 3600,
			"remaining":         2999,
			"requested_entity":  "Mock",
		},
	}
}

// Requests returns a copy of every request received so far.
func (m *MockAPI) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// RequestCount returns the number of requests received for path, or in
// total when path is empty.
func (m *MockAPI) RequestCount(path string) int {
	n := 0
	for _, r := range m.Requests() {
		if path == "" || r.URL.Path == path {
			n++
		}
	}
	return n
}

// LastQuery returns the query of the most recent request.
func (m *MockAPI) LastQuery() url.Values {
	reqs := m.Requests()
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1].URL.Query()
}

// Reset forgets recorded requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	if w.Header().Get("Content-Type") == "" && strings.HasPrefix(strings.TrimSpace(resp.Body), "{") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// WriteJSON encodes payload as the response body.
func WriteJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}
