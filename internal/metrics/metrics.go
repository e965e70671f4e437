// Package metrics exposes the desk's Prometheus metrics on a private registry.
package metrics

import (
	"net/http"
	"strconv"

	"ParkLedger/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "park_ledger"

// Metrics holds all ledger metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal       *prometheus.CounterVec
	FinalizeTotal           *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
	RolloverTotal           prometheus.Counter
	PersistFailuresTotal    prometheus.Counter
	DayTotal                *prometheus.GaugeVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.FinalizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_total",
			Help:      "Module reports committed to the ledger",
		},
		[]string{"kind"},
	)
	m.ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Finalize events rejected by validation",
		},
		[]string{"kind"},
	)
	m.RolloverTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rollover_total",
		Help:      "Daily resets of the working state",
	})
	m.PersistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_failures_total",
		Help:      "Ledger writes that did not reach durable storage",
	})
	m.DayTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "day_total",
			Help:      "Gross revenue of the last updated day, in FCFA",
		},
		[]string{"date"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.FinalizeTotal,
		m.ValidationFailuresTotal,
		m.RolloverTotal,
		m.PersistFailuresTotal,
		m.DayTotal,
	)
	return m
}

// Handler returns the HTTP handler for /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func (m *Metrics) RecordValidationFailure(kind model.ModuleKind) {
	m.ValidationFailuresTotal.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) RecordRollover() {
	m.RolloverTotal.Inc()
}

// Upserted counts the finalize and publishes the day's total. The gauge keeps
// only the most recent day.
func (m *Metrics) Upserted(rec model.DailyRecord, kind model.ModuleKind) {
	m.FinalizeTotal.WithLabelValues(string(kind)).Inc()
	m.DayTotal.Reset()
	m.DayTotal.WithLabelValues(rec.DateKey).Set(rec.DayTotal.InexactFloat64())
}

func (m *Metrics) PersistFailed(error) {
	m.PersistFailuresTotal.Inc()
}
