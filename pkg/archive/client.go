package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/barmintor/ia-ebooks/pkg/logging"
)

// Prometheus metrics for archive search operations.
var (
	iaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ia_requests_total",
		Help: "Total advanced search requests by HTTP status",
	}, []string{"status"})

	iaRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ia_request_duration_seconds",
		Help:    "Advanced search request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})
)

// ErrNotFound is returned by Document when no document matches an identifier.
var ErrNotFound = errors.New("document not found")

const (
	defaultBaseURL = "https://archive.org"
	searchPath     = "/advancedsearch.php"
)

// Config holds the search client configuration.
type Config struct {
	// BaseURL is the archive host (default: https://archive.org).
	BaseURL string

	// UserAgent identifies the caller to the archive (required).
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout bounds a single search request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   defaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// Client queries the Internet Archive advanced search API. Requests are
// issued one at a time; the client keeps no state between calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     zerolog.Logger
}

// New creates a new search client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		logger:     logging.NewLogger("ia-client"),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	// NumFound is the server-reported total match count for the query,
	// not the size of this page.
	NumFound int

	// Docs are this page's documents in server ranking order.
	Docs []Document
}

// searchEnvelope mirrors the advanced search response body.
type searchEnvelope struct {
	Response struct {
		NumFound int        `json:"numFound"`
		Docs     []Document `json:"docs"`
	} `json:"response"`
}

// Search fetches a single page of results. Transport and decode failures
// are returned as errors with no retry; retry policy belongs to the
// catalog resolver, not the search layer.
func (c *Client) Search(ctx context.Context, q Query, rows, page int) (*SearchResponse, error) {
	start := time.Now()
	defer func() {
		iaRequestDuration.Observe(time.Since(start).Seconds())
	}()

	searchURL := c.baseURL + searchPath + "?" + q.Params(rows, page).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("query", q.Expression()).
		Int("rows", rows).
		Int("page", page).
		Msg("Executing search request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		iaRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	iaRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("url", searchURL).
			Msg("Search request failed")
		return nil, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.logger.Debug().
		Int("num_found", envelope.Response.NumFound).
		Int("docs", len(envelope.Response.Docs)).
		Int("page", page).
		Msg("Search page fetched")

	return &SearchResponse{
		NumFound: envelope.Response.NumFound,
		Docs:     envelope.Response.Docs,
	}, nil
}

// Document fetches a single document by its archive identifier.
// Returns ErrNotFound when the archive reports no match.
func (c *Client) Document(ctx context.Context, identifier string) (Document, error) {
	resp, err := c.Search(ctx, IdentifierQuery(identifier), 1, 1)
	if err != nil {
		return nil, err
	}
	if resp.NumFound == 0 || len(resp.Docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}
	return resp.Docs[0], nil
}
