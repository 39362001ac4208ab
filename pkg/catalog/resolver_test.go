package catalog

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/barmintor/ia-ebooks/internal/testutil"
	"github.com/barmintor/ia-ebooks/pkg/archive"
)

func TestBibID(t *testing.T) {
	tests := []struct {
		name     string
		doc      archive.Document
		expected string
		ok       bool
	}{
		{
			name:     "structured identifier",
			doc:      archive.Document{"identifier": "ldpd_1234abc_5678"},
			expected: "1234abc",
			ok:       true,
		},
		{
			name:     "repeated underscores",
			doc:      archive.Document{"identifier": "ldpd__987xyz__001"},
			expected: "987xyz",
			ok:       true,
		},
		{
			name: "catalog link in free text",
			doc: archive.Document{
				"identifier":    "some_other_id",
				"stripped_tags": `see "http://clio.columbia.edu/catalog/9999" for the record`,
			},
			expected: "9999",
			ok:       true,
		},
		{
			name: "structured identifier wins over link",
			doc: archive.Document{
				"identifier":    "ldpd_1234abc_5678",
				"stripped_tags": `"http://clio.columbia.edu/catalog/9999"`,
			},
			expected: "1234abc",
			ok:       true,
		},
		{
			name:     "https catalog link",
			doc:      archive.Document{"stripped_tags": `"https://clio.columbia.edu/catalog/424242"`},
			expected: "424242",
			ok:       true,
		},
		{
			name: "neither pattern",
			doc: archive.Document{
				"identifier":    "unrelated_item_0001x",
				"stripped_tags": "no catalog reference here",
			},
			ok: false,
		},
		{
			name: "missing numeric suffix",
			doc:  archive.Document{"identifier": "ldpd_1234abc"},
			ok:   false,
		},
		{
			name: "empty document",
			doc:  archive.Document{},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BibID(tt.doc)
			if ok != tt.ok {
				t.Fatalf("BibID() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("BibID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func newTestResolver(t *testing.T, mock *testutil.MockArchive) (*Resolver, *[]time.Duration) {
	t.Helper()

	resolver := NewResolver(Config{BaseURL: mock.URL()})

	var mu sync.Mutex
	sleeps := &[]time.Duration{}
	resolver.SetSleep(func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		*sleeps = append(*sleeps, d)
	})
	return resolver, sleeps
}

func TestFetchSuccess(t *testing.T) {
	mock := testutil.NewMockArchive()
	defer mock.Close()

	mock.SetResponse("/catalog/1234abc.marc",
		testutil.NewMARCResponse(testutil.MARCRecord("1234abc", "A Digitized Volume")))

	resolver, sleeps := newTestResolver(t, mock)
	rec := resolver.Fetch(context.Background(), "1234abc")

	if rec.IsEmpty() {
		t.Fatal("Fetch() returned placeholder, want parsed record")
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %d times on the happy path, want 0", len(*sleeps))
	}

	var control, title string
	for _, f := range rec.Fields {
		switch f.Tag {
		case "001":
			control = f.Value
		case "245":
			for _, sf := range f.Subfields {
				if sf.Code == "a" {
					title = sf.Value
				}
			}
		}
	}
	if control != "1234abc" {
		t.Errorf("001 = %q, want %q", control, "1234abc")
	}
	if title != "A Digitized Volume" {
		t.Errorf("245$a = %q, want %q", title, "A Digitized Volume")
	}
}

func TestFetchRetriesOnceOnRateLimit(t *testing.T) {
	mock := testutil.NewMockArchive()
	defer mock.Close()

	var mu sync.Mutex
	calls := 0
	mock.SetHandler("/catalog/1234abc.marc", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too Many Requests"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(testutil.MARCRecord("1234abc", "Recovered After Throttle"))
	})

	resolver, sleeps := newTestResolver(t, mock)
	rec := resolver.Fetch(context.Background(), "1234abc")

	if rec.IsEmpty() {
		t.Fatal("Fetch() returned placeholder, want record from retry")
	}
	if calls != 2 {
		t.Errorf("server saw %d requests, want 2", calls)
	}
	if len(*sleeps) != 1 {
		t.Fatalf("slept %d times, want 1", len(*sleeps))
	}
	// Retry-After 3 plus the one-second margin.
	if (*sleeps)[0] < 4*time.Second {
		t.Errorf("slept %v before retry, want >= 4s", (*sleeps)[0])
	}
}

func TestFetchRetryFailureReturnsPlaceholder(t *testing.T) {
	mock := testutil.NewMockArchive()
	defer mock.Close()

	// Throttled on every attempt: the retry fails too.
	mock.SetResponse("/catalog/1234abc.marc", testutil.NewRateLimitResponse(1))

	resolver, sleeps := newTestResolver(t, mock)
	rec := resolver.Fetch(context.Background(), "1234abc")

	if !rec.IsEmpty() {
		t.Error("Fetch() = non-empty record after repeated throttling, want placeholder")
	}
	// One retry, never a third attempt.
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
	if len(*sleeps) != 1 {
		t.Errorf("slept %d times, want 1", len(*sleeps))
	}
}

func TestFetchMalformedBodyReturnsPlaceholder(t *testing.T) {
	mock := testutil.NewMockArchive()
	defer mock.Close()

	mock.SetResponse("/catalog/1234abc.marc", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       "<html>not a MARC record</html>",
	})

	resolver, sleeps := newTestResolver(t, mock)
	rec := resolver.Fetch(context.Background(), "1234abc")

	if !rec.IsEmpty() {
		t.Error("Fetch() = non-empty record for malformed body, want placeholder")
	}
	// A non-throttled parse failure is not retried.
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %d times, want 0", len(*sleeps))
	}
}

func TestFetchRateLimitWithoutRetryAfter(t *testing.T) {
	mock := testutil.NewMockArchive()
	defer mock.Close()

	mock.SetResponse("/catalog/1234abc.marc", testutil.MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       "Too Many Requests",
	})

	resolver, sleeps := newTestResolver(t, mock)
	rec := resolver.Fetch(context.Background(), "1234abc")

	// No usable Retry-After means no retry.
	if !rec.IsEmpty() {
		t.Error("Fetch() = non-empty record, want placeholder")
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %d times, want 0", len(*sleeps))
	}
}

func TestFetchEmptyBibID(t *testing.T) {
	mock := testutil.NewMockArchive()
	defer mock.Close()

	resolver, _ := newTestResolver(t, mock)
	rec := resolver.Fetch(context.Background(), "")

	if !rec.IsEmpty() {
		t.Error("Fetch(\"\") = non-empty record, want placeholder")
	}
	if got := mock.GetRequestCount(); got != 0 {
		t.Errorf("server saw %d requests, want 0", got)
	}
}

func TestEmptyRecordSerializesWithFields(t *testing.T) {
	rec := EmptyRecord()
	if rec.Fields == nil {
		t.Error("EmptyRecord().Fields is nil, want empty slice for stable JSON")
	}
	if !rec.IsEmpty() {
		t.Error("EmptyRecord().IsEmpty() = false, want true")
	}
}
