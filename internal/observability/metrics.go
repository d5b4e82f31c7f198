package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns one registry per service. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	httpInflight  prometheus.Gauge
	guidance      *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	providerTime  prometheus.Histogram
	authEvents    *prometheus.CounterVec
}

func NewMetrics(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"service": service}, reg))

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests currently being served.",
		}),
		guidance: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guidance_requests_total",
			Help: "Guidance results by source and outcome.",
		}, []string{"source", "outcome"}),
		providerCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guidance_provider_calls_total",
			Help: "External provider calls by result kind.",
		}, []string{"kind"}),
		providerTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "guidance_provider_duration_seconds",
			Help:    "External provider latency including retries.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}),
		authEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication events by event and outcome.",
		}, []string{"event", "outcome"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncInflight() {
	if m != nil {
		m.httpInflight.Inc()
	}
}

func (m *Metrics) DecInflight() {
	if m != nil {
		m.httpInflight.Dec()
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveGuidance(source, outcome string) {
	if m != nil {
		m.guidance.WithLabelValues(source, outcome).Inc()
	}
}

// ObserveProvider records one provider exchange; kind is "ok" on success.
func (m *Metrics) ObserveProvider(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(kind).Inc()
	m.providerTime.Observe(d.Seconds())
}

func (m *Metrics) ObserveAuth(event, outcome string) {
	if m != nil {
		m.authEvents.WithLabelValues(event, outcome).Inc()
	}
}
