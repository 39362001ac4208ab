// Package metrics provides the centralized Prometheus registry reference
// for ia-ebooks. All metrics are defined in their respective packages
// (archive, catalog) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by ia-ebooks.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Search Metrics (pkg/archive):
//   - ia_requests_total{status} (Counter): Advanced search requests by HTTP status
//   - ia_request_duration_seconds (Histogram): Advanced search request duration
//
// Catalog Metrics (pkg/catalog):
//   - clio_requests_total{status} (Counter): CLIO record requests by HTTP status
//   - clio_retries_total (Counter): Requests retried after a 429 with Retry-After
//   - clio_placeholder_records_total (Counter): Resolutions degraded to the
//     empty placeholder record
//
// Example Prometheus Queries:
//
//   # Throttle pressure from CLIO
//   rate(clio_retries_total[5m])
//
//   # Share of catalog lookups that degraded
//   rate(clio_placeholder_records_total[5m]) / rate(clio_requests_total[5m])
//
//   # P95 search latency
//   histogram_quantile(0.95, rate(ia_request_duration_seconds_bucket[5m]))
