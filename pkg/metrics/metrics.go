package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	StatusTransitions *prometheus.CounterVec
	Retries           *prometheus.CounterVec
	CacheResults      *prometheus.CounterVec
	EventsConsumed    *prometheus.CounterVec
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Applied status transitions by record kind, field and target value",
		}, []string{"kind", "field", "to"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retried operations after a transient failure",
		}, []string{"op"}),
		CacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_cache_results_total",
			Help:      "Record cache lookups by result",
		}, []string{"kind", "result"}),
		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Status change events consumed by the worker",
		}, []string{"kind", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.StatusTransitions, m.Retries, m.CacheResults, m.EventsConsumed)
	}
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Transition(kind, field, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(kind, field, to).Inc()
}

func (m *Metrics) Retry(op string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(op).Inc()
}

func (m *Metrics) Cache(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheResults.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Consumed(kind, outcome string) {
	if m == nil {
		return
	}
	m.EventsConsumed.WithLabelValues(kind, outcome).Inc()
}
