// Package metrics provides Prometheus instrumentation for outgoing requests,
// identity resolution and synchronization. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector of the module.
type Metrics struct {
	// Outgoing HTTP requests by external system
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec

	// Resolution outcomes by family and status
	ResolveTotal *prometheus.CounterVec
	CacheTotal   *prometheus.CounterVec

	// Sync outcomes by seed provider, and per-item outcomes
	SyncTotal    *prometheus.CounterVec
	SyncItems    *prometheus.CounterVec
	SyncDuration prometheus.Histogram
	SearchTotal  *prometheus.CounterVec
}

// New registers all collectors with reg. A nil reg uses a fresh registry,
// which keeps repeated construction in tests from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resources_http_request_duration_seconds",
			Help:    "Duration of outgoing requests by external system",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"system"}),

		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resources_http_requests_total",
			Help: "Outgoing requests by external system and status code (0 = transport error)",
		}, []string{"system", "code"}),

		ResolveTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resources_resolve_total",
			Help: "Identity resolutions by provider family and outcome",
		}, []string{"family", "status"}),

		CacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resources_resolve_cache_total",
			Help: "Resolution cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		SyncTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resources_sync_total",
			Help: "Sync runs by seed provider and outcome",
		}, []string{"seed", "status"}),

		SyncItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resources_sync_items_total",
			Help: "Reconciled triples by outcome",
		}, []string{"outcome"}), // outcome: "created", "updated", "excluded", "failed", "planned"

		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "resources_sync_duration_seconds",
			Help:    "Duration of one single-subject sync",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		SearchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resources_search_total",
			Help: "Search requests by provider and outcome",
		}, []string{"provider", "status"}),
	}
}

// ObserveRequest records one outgoing request.
func (m *Metrics) ObserveRequest(system string, status int, d time.Duration, _ error) {
	if m != nil {
		m.RequestDuration.WithLabelValues(system).Observe(d.Seconds())
		m.RequestTotal.WithLabelValues(system, strconv.Itoa(status)).Inc()
	}
}

// IncResolve records a resolution outcome.
func (m *Metrics) IncResolve(family, status string) {
	if m != nil {
		m.ResolveTotal.WithLabelValues(family, status).Inc()
	}
}

// IncCache records a cache lookup.
func (m *Metrics) IncCache(result string) {
	if m != nil {
		m.CacheTotal.WithLabelValues(result).Inc()
	}
}

// ObserveSync records a finished sync.
func (m *Metrics) ObserveSync(seed, status string, d time.Duration) {
	if m != nil {
		m.SyncTotal.WithLabelValues(seed, status).Inc()
		m.SyncDuration.Observe(d.Seconds())
	}
}

// AddSyncItems records n items with the same outcome.
func (m *Metrics) AddSyncItems(outcome string, n int) {
	if m != nil && n > 0 {
		m.SyncItems.WithLabelValues(outcome).Add(float64(n))
	}
}

// IncSearch records a search request.
func (m *Metrics) IncSearch(provider, status string) {
	if m != nil {
		m.SearchTotal.WithLabelValues(provider, status).Inc()
	}
}
