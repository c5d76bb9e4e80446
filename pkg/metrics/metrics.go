// Package metrics exposes prometheus collectors for the HTTP layer and auth events
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication events by operation and outcome.",
		},
		[]string{"event", "outcome"},
	)
	MailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mails_sent_total",
			Help: "Mails handed to the mail sender by outcome.",
		},
		[]string{"outcome"},
	)
)

// Auth counts an authentication event, e.g. Auth("login", "success")
func Auth(event, outcome string) {
	AuthEvents.WithLabelValues(event, outcome).Inc()
}

// NewRegistry returns a registry holding the app collectors and the
// standard go and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		RequestCount,
		RequestDuration,
		AuthEvents,
		MailsSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
