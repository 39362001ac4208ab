// Package catalog cross-references archive documents against CLIO,
// Columbia's library catalog: it extracts an embedded bibliographic record
// id from a search result and fetches the corresponding MARC record,
// retrying once when CLIO rate-limits the request.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/miku/marc21"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/barmintor/ia-ebooks/pkg/archive"
	"github.com/barmintor/ia-ebooks/pkg/logging"
)

// Prometheus metrics for catalog resolution.
var (
	clioRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clio_requests_total",
		Help: "Total CLIO record requests by HTTP status",
	}, []string{"status"})

	clioRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clio_retries_total",
		Help: "Total CLIO requests retried after rate limiting",
	})

	clioPlaceholderRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clio_placeholder_records_total",
		Help: "Total resolutions degraded to the empty placeholder record",
	})
)

// Bib id extraction patterns, tried in order; first match wins.
var (
	// Structured archive identifiers: a fixed ldpd prefix, an opaque
	// alphanumeric bib id, and a numeric volume suffix.
	derivedIDPattern = regexp.MustCompile(`^ldpd_+([0-9A-Za-z]+)_+[0-9]+$`)

	// Catalog links embedded in free-text metadata.
	catalogLinkPattern = regexp.MustCompile(`"https?://clio\.columbia\.edu/catalog/([0-9A-Za-z]+)"`)
)

// BibID inspects an archive document for its apparent CLIO bib id.
// Many documents legitimately have none; absence is a valid result, not
// an error, and callers must check ok before resolving.
func BibID(doc archive.Document) (string, bool) {
	if m := derivedIDPattern.FindStringSubmatch(doc.Identifier()); m != nil {
		return m[1], true
	}
	if m := catalogLinkPattern.FindStringSubmatch(doc.StrippedTags()); m != nil {
		return m[1], true
	}
	return "", false
}

const (
	defaultBaseURL = "https://clio.columbia.edu"

	// maxAttempts bounds the fetch loop: one request plus at most one
	// rate-limit retry, never more.
	maxAttempts = 2
)

// Config holds the resolver configuration.
type Config struct {
	// BaseURL is the catalog host (default: https://clio.columbia.edu).
	BaseURL string

	// Timeout bounds a single record request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// Resolver fetches MARC records from the catalog. Fetch never returns an
// error: resolution failures degrade to the placeholder record so a long
// augmentation run is never aborted by one throttled lookup.
type Resolver struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
	sleep      func(time.Duration)
}

// NewResolver creates a new catalog resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Resolver{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		logger:     logging.NewLogger("clio-resolver"),
		sleep:      time.Sleep,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (r *Resolver) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// SetSleep sets the backoff sleep function (for testing).
func (r *Resolver) SetSleep(sleep func(time.Duration)) {
	r.sleep = sleep
}

// Fetch resolves a bib id to its MARC record.
//
// When CLIO answers 429 and the body does not parse, the server's
// Retry-After is honored with one extra second of margin and the request
// is retried exactly once. Every other failure, including a failed retry,
// returns the placeholder record.
func (r *Resolver) Fetch(ctx context.Context, bibID string) Record {
	if bibID == "" {
		r.logger.Warn().Msg("Fetch called with empty bib id, returning placeholder")
		clioPlaceholderRecordsTotal.Inc()
		return EmptyRecord()
	}

	var delay time.Duration
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if delay > 0 {
			r.sleep(delay)
		}

		rec, resp, err := r.fetchOnce(ctx, bibID)
		if err == nil {
			return rec
		}

		if attempt == 1 && resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			seconds, parseErr := strconv.Atoi(resp.Header.Get("Retry-After"))
			if parseErr == nil {
				// One second on top of the instructed wait, as margin.
				delay = time.Duration(seconds+1) * time.Second
				clioRetriesTotal.Inc()
				r.logger.Warn().
					Str("bib_id", bibID).
					Str("url", resp.Request.URL.String()).
					Int("retry_after", seconds).
					Dur("delay", delay).
					Interface("headers", resp.Header).
					Msg("CLIO rate limiting, retrying once")
				continue
			}
		}

		r.logger.Warn().
			Err(err).
			Str("bib_id", bibID).
			Int("attempt", attempt).
			Msg("CLIO record unavailable, returning placeholder")
		break
	}

	clioPlaceholderRecordsTotal.Inc()
	return EmptyRecord()
}

// fetchOnce issues a single record request and parses one binary MARC
// record from the body. The response is returned alongside any error so
// the caller can inspect status and headers for retry decisions.
func (r *Resolver) fetchOnce(ctx context.Context, bibID string) (Record, *http.Response, error) {
	recordURL := fmt.Sprintf("%s/catalog/%s.marc", r.baseURL, bibID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordURL, nil)
	if err != nil {
		return EmptyRecord(), nil, fmt.Errorf("create record request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		clioRequestsTotal.WithLabelValues("network_error").Inc()
		return EmptyRecord(), nil, fmt.Errorf("record request: %w", err)
	}
	defer resp.Body.Close()

	clioRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return EmptyRecord(), resp, fmt.Errorf("read record body: %w", err)
	}

	parsed, err := marc21.ReadRecord(bytes.NewReader(body))
	if err != nil {
		return EmptyRecord(), resp, fmt.Errorf("parse MARC record: %w", err)
	}

	return newRecord(parsed), resp, nil
}
