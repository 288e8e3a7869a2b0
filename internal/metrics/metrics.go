// Package metrics defines the Prometheus collectors exported by the booking service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	catalogEvents *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shareit",
				Subsystem: "booking",
				Name:      "status_transitions_total",
				Help:      "Bookings entering each status.",
			},
			[]string{"status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shareit",
				Subsystem: "booking",
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "shareit",
				Subsystem: "booking",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		catalogEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shareit",
				Subsystem: "booking",
				Name:      "catalog_events_total",
				Help:      "Catalog events applied to the local projection, by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
	}
	reg.MustRegister(m.transitions, m.httpRequests, m.httpDuration, m.catalogEvents)
	return m
}

// ObserveTransition counts a booking entering status.
func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveCatalogEvent counts a consumed catalog event.
func (m *Metrics) ObserveCatalogEvent(eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "applied"
	if err != nil {
		outcome = "failed"
	}
	m.catalogEvents.WithLabelValues(eventType, outcome).Inc()
}
