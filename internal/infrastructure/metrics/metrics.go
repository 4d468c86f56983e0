package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/creditbook/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	Mutations         *prometheus.CounterVec
	MutationDuration  *prometheus.HistogramVec
	VersionConflicts  *prometheus.CounterVec
	SnapshotDrift     prometheus.Counter
	Clients           prometheus.Gauge
	OutstandingAmount prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Notification metrics
	Notifications *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditbook_ledger_mutations_total",
				Help: "Ledger mutations by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		MutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditbook_ledger_mutation_duration_seconds",
				Help:    "Duration of ledger mutations including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		VersionConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditbook_ledger_version_conflicts_total",
				Help: "Compare-and-apply saves rejected because the collection moved",
			},
			[]string{"collection"},
		),
		SnapshotDrift: factory.NewCounter(prometheus.CounterOpts{
			Name: "creditbook_ledger_snapshot_drift_total",
			Help: "Client snapshots repaired from the event log on reload",
		}),
		Clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creditbook_clients",
			Help: "Number of clients in the ledger",
		}),
		OutstandingAmount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creditbook_outstanding_amount",
			Help: "Sum of all client balances in major units",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditbook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creditbook_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "creditbook_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditbook_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),

		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditbook_notifications_total",
				Help: "Transaction notices by kind and outcome",
			},
			[]string{"kind", "status"},
		),
	}
}

// ObserveMutation records one ledger mutation.
func (m *Metrics) ObserveMutation(operation string, err error, elapsed time.Duration) {
	m.Mutations.WithLabelValues(operation, status(err)).Inc()
	m.MutationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) IncVersionConflict(collection string) {
	m.VersionConflicts.WithLabelValues(collection).Inc()
}

func (m *Metrics) IncSnapshotDrift() {
	m.SnapshotDrift.Inc()
}

// SetLedgerTotals publishes the client count and total outstanding balance.
func (m *Metrics) SetLedgerTotals(clients int, outstanding domain.Money) {
	m.Clients.Set(float64(clients))
	m.OutstandingAmount.Set(outstanding.Float64())
}

// ObserveNotification records a queued or delivered notice.
func (m *Metrics) ObserveNotification(kind string, err error) {
	m.Notifications.WithLabelValues(kind, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
