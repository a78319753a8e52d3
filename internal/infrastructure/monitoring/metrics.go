package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Every method is safe on a nil
// receiver so components can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive      prometheus.Gauge
	SessionsOpened      prometheus.Counter
	SessionOpenFailures *prometheus.CounterVec
	SessionsEnded       *prometheus.CounterVec
	SessionDuration     prometheus.Histogram

	// Stream metrics
	InputBytes   prometheus.Counter
	OutputBytes  prometheus.Counter
	DecodeErrors prometheus.Counter
	WriteErrors  prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSFrames      *prometheus.CounterVec
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termhost_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termhost_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "termhost_sessions_active",
				Help: "Number of live terminal sessions",
			},
		),
		SessionsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_sessions_opened_total",
				Help: "Total number of terminal sessions opened",
			},
		),
		SessionOpenFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termhost_session_open_failures_total",
				Help: "Total number of failed session opens",
			},
			[]string{"reason"},
		),
		SessionsEnded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termhost_sessions_ended_total",
				Help: "Total number of sessions ended, by reason",
			},
			[]string{"reason"},
		),
		SessionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "termhost_session_duration_seconds",
				Help:    "Lifetime of terminal sessions in seconds",
				Buckets: []float64{1, 10, 60, 300, 900, 3600, 4 * 3600, 12 * 3600},
			},
		),

		InputBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_input_bytes_total",
				Help: "Bytes written to session backends",
			},
		),
		OutputBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_output_bytes_total",
				Help: "Bytes delivered from session backends to subscribers",
			},
		),
		DecodeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_decode_errors_total",
				Help: "Output chunks containing malformed UTF-8",
			},
		),
		WriteErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "termhost_write_errors_total",
				Help: "Failed writes to session backends",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "termhost_ws_connections",
				Help: "Number of open stream connections",
			},
		),
		WSFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termhost_ws_frames_total",
				Help: "Stream frames by type and direction",
			},
			[]string{"type", "direction"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves this collector in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SessionOpened records a successful open.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsOpened.Inc()
	m.SessionsActive.Inc()
}

// SessionOpenFailed records a failed open.
func (m *Metrics) SessionOpenFailed(reason string) {
	if m == nil {
		return
	}
	m.SessionOpenFailures.WithLabelValues(reason).Inc()
}

// SessionEnded records a session leaving the registry.
func (m *Metrics) SessionEnded(reason string, lifetime time.Duration) {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
	m.SessionsEnded.WithLabelValues(reason).Inc()
	m.SessionDuration.Observe(lifetime.Seconds())
}

// AddInput counts bytes written to a backend.
func (m *Metrics) AddInput(n int) {
	if m == nil {
		return
	}
	m.InputBytes.Add(float64(n))
}

// AddOutput counts bytes delivered to a subscriber.
func (m *Metrics) AddOutput(n int) {
	if m == nil {
		return
	}
	m.OutputBytes.Add(float64(n))
}

// IncDecodeErrors counts a chunk with malformed UTF-8.
func (m *Metrics) IncDecodeErrors() {
	if m == nil {
		return
	}
	m.DecodeErrors.Inc()
}

// IncWriteErrors counts a failed backend write.
func (m *Metrics) IncWriteErrors() {
	if m == nil {
		return
	}
	m.WriteErrors.Inc()
}

// WSConnected tracks stream connection count.
func (m *Metrics) WSConnected(delta int) {
	if m == nil {
		return
	}
	m.WSConnections.Add(float64(delta))
}

// RecordWSFrame counts one stream frame. direction is "in" or "out".
func (m *Metrics) RecordWSFrame(frameType, direction string) {
	if m == nil {
		return
	}
	m.WSFrames.WithLabelValues(frameType, direction).Inc()
}
