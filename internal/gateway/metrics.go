package gateway

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes gateway and channel counters on a dedicated Prometheus
// registry so tests and embedded use don't collide with the global one.
type Metrics struct {
	registry *prometheus.Registry

	webhookRequests  *prometheus.CounterVec
	authFailures     *prometheus.CounterVec
	eventsNormalized *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
	outboundMessages *prometheus.CounterVec
}

// NewMetrics creates the metric set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		webhookRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slackbridge",
			Name:      "webhook_requests_total",
			Help:      "Webhook requests received, by source and response status.",
		}, []string{"source", "status"}),
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slackbridge",
			Name:      "webhook_auth_failures_total",
			Help:      "Webhook requests rejected by signature or timestamp checks.",
		}, []string{"source"}),
		eventsNormalized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slackbridge",
			Name:      "events_normalized_total",
			Help:      "Canonical events produced from inbound payloads, by channel and kind.",
		}, []string{"channel", "kind"}),
		eventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slackbridge",
			Name:      "events_dropped_total",
			Help:      "Inbound payloads acknowledged but not forwarded, by channel and reason.",
		}, []string{"channel", "reason"}),
		outboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slackbridge",
			Name:      "outbound_messages_total",
			Help:      "Messages sent back to the platform, by channel and result.",
		}, []string{"channel", "result"}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordWebhook counts a webhook request and its response status.
func (m *Metrics) RecordWebhook(source string, status int) {
	m.webhookRequests.WithLabelValues(source, strconv.Itoa(status)).Inc()
}

// RecordAuthFailure counts a rejected webhook request.
func (m *Metrics) RecordAuthFailure(source string) {
	m.authFailures.WithLabelValues(source).Inc()
}

// RecordEvent counts a normalized event.
func (m *Metrics) RecordEvent(channel, kind string) {
	m.eventsNormalized.WithLabelValues(channel, kind).Inc()
}

// RecordDrop counts an acknowledged-but-ignored payload.
func (m *Metrics) RecordDrop(channel, reason string) {
	m.eventsDropped.WithLabelValues(channel, reason).Inc()
}

// RecordOutbound counts an outbound delivery attempt.
func (m *Metrics) RecordOutbound(channel, result string) {
	m.outboundMessages.WithLabelValues(channel, result).Inc()
}
