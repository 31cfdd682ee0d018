package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics counts orchestrator items. A batch is a short-lived process,
// so the registry is dumped to a node_exporter textfile instead of served.
type BatchMetrics struct {
	registry *prometheus.Registry

	itemsTotal    *prometheus.CounterVec
	itemDuration  *prometheus.HistogramVec
	skippedTotal  *prometheus.CounterVec
	itemsInFlight prometheus.Gauge
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	itemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "batch",
			Name:        "items_total",
			Help:        "Analyzed syllabi by outcome and error kind.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"scope", "outcome", "error_kind"},
	)
	itemDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "batch",
			Name:        "item_duration_seconds",
			Help:        "Time from submission to commit of one syllabus.",
			Buckets:     []float64{1, 5, 10, 20, 30, 60, 120, 300, 600},
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"outcome"},
	)
	skippedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "batch",
			Name:        "items_skipped_total",
			Help:        "Syllabi skipped because a record already exists.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"scope"},
	)
	itemsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "batch",
			Name:        "items_in_flight",
			Help:        "Syllabi currently being judged.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(itemsTotal, itemDuration, skippedTotal, itemsInFlight)

	return &BatchMetrics{
		registry:      registry,
		itemsTotal:    itemsTotal,
		itemDuration:  itemDuration,
		skippedTotal:  skippedTotal,
		itemsInFlight: itemsInFlight,
	}
}

func (m *BatchMetrics) ItemSkipped(scope string) {
	m.skippedTotal.WithLabelValues(scope).Inc()
}

func (m *BatchMetrics) ItemStarted(string) {
	m.itemsInFlight.Inc()
}

func (m *BatchMetrics) ItemCommitted(scope, outcome, errorKind string, elapsed time.Duration) {
	m.itemsInFlight.Dec()
	m.itemsTotal.WithLabelValues(scope, outcome, errorKind).Inc()
	m.itemDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *BatchMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
