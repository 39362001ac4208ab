// Package testutil provides testing utilities for the ia-ebooks client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockArchive is a configurable mock server standing in for both the
// Internet Archive search endpoint and the CLIO catalog endpoint.
type MockArchive struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestQuery  url.Values
	LastRequestHeader http.Header
}

// NewMockArchive creates a new mock server.
func NewMockArchive() *MockArchive {
	mock := &MockArchive{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestQuery = r.URL.Query()
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockArchive) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockArchive) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockArchive) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestQuery = nil
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockArchive) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockArchive) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple canned response for a path.
func (m *MockArchive) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SearchBody renders an advanced search response envelope.
func SearchBody(numFound int, docs []map[string]any) string {
	envelope := map[string]any{
		"response": map[string]any{
			"numFound": numFound,
			"docs":     docs,
		},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal search body: %v", err))
	}
	return string(body)
}

// SetPagedSearch installs a search handler that serves numFound documents
// generated by docFor, sliced into pages per the request's rows and page
// parameters. docFor receives the zero-based overall document index.
func (m *MockArchive) SetPagedSearch(numFound int, docFor func(i int) map[string]any) {
	m.SetHandler("/advancedsearch.php", func(w http.ResponseWriter, r *http.Request) {
		rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		start := (page - 1) * rows
		end := start + rows
		if start > numFound {
			start = numFound
		}
		if end > numFound {
			end = numFound
		}

		docs := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			docs = append(docs, docFor(i))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(SearchBody(numFound, docs)))
	})
}

// NewSearchResponse creates a 200 OK search response for one fixed page.
func NewSearchResponse(numFound int, docs []map[string]any) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       SearchBody(numFound, docs),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response with a
// Retry-After header, the way CLIO signals throttling.
func NewRateLimitResponse(retryAfterSeconds int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       "Too Many Requests",
		Headers: map[string]string{
			"Retry-After":  strconv.Itoa(retryAfterSeconds),
			"Content-Type": "text/plain",
		},
	}
}

// NewMARCResponse creates a 200 OK response carrying a binary MARC body.
func NewMARCResponse(record []byte) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(record),
		Headers: map[string]string{
			"Content-Type": "application/marc",
		},
	}
}

const (
	fieldTerminator  = 0x1e
	recordTerminator = 0x1d
	subfieldDelim    = 0x1f
)

// MARCRecord builds a minimal valid binary MARC21 record with a 001
// control field and a 245 title field. Lengths and offsets in the leader
// and directory are computed, not hard-coded, so the record always parses.
func MARCRecord(controlNumber, title string) []byte {
	type rawField struct {
		tag  string
		data []byte
	}

	fields := []rawField{
		{tag: "001", data: append([]byte(controlNumber), fieldTerminator)},
		{tag: "245", data: append([]byte(fmt.Sprintf("10%ca%s", subfieldDelim, title)), fieldTerminator)},
	}

	var directory, data []byte
	offset := 0
	for _, f := range fields {
		directory = append(directory, fmt.Sprintf("%s%04d%05d", f.tag, len(f.data), offset)...)
		data = append(data, f.data...)
		offset += len(f.data)
	}
	directory = append(directory, fieldTerminator)

	baseAddress := 24 + len(directory)
	recordLength := baseAddress + len(data) + 1

	leader := fmt.Sprintf("%05dnam a22%05d a 4500", recordLength, baseAddress)

	record := append([]byte(leader), directory...)
	record = append(record, data...)
	record = append(record, recordTerminator)
	return record
}
