package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the help service and its HTTP surface
type Metrics struct {
	queriesTotal    *prometheus.CounterVec
	reloadsTotal    *prometheus.CounterVec
	catalogNodes    prometheus.Gauge
	catalogEdges    prometheus.Gauge
	activeSessions  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers collectors on registry.
// A nil registry yields nil metrics, and every method is a no-op on nil.
func NewMetrics(registry *prometheus.Registry, namespace string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Classified queries by intent",
		}, []string{"intent"}),

		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog reload attempts by result",
		}, []string{"result"}),

		catalogNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "nodes",
			Help:      "Nodes in the published catalog",
		}),

		catalogEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "edges",
			Help:      "Edges in the published catalog",
		}),

		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open browsing sessions",
		}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.queriesTotal,
		m.reloadsTotal,
		m.catalogNodes,
		m.catalogEdges,
		m.activeSessions,
		m.requestsTotal,
		m.requestDuration,
	)

	return m
}

// RecordQuery counts a classified query
func (m *Metrics) RecordQuery(intent string) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(intent).Inc()
}

// RecordReload counts a reload attempt
func (m *Metrics) RecordReload(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.reloadsTotal.WithLabelValues(result).Inc()
}

// SetCatalogSize records the published catalog size
func (m *Metrics) SetCatalogSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.catalogNodes.Set(float64(nodes))
	m.catalogEdges.Set(float64(edges))
}

// SetActiveSessions records the open session count
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
