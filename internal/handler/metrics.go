package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kanabus/internal/hub"
	"kanabus/internal/store"
)

// Metrics owns the server's collectors. Each server gets its own registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(h *hub.Hub, s *store.Snapshot) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kanabus_http_requests_total",
			Help: "HTTP requests served, by status code and method",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kanabus_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}

	reg.MustRegister(
		m.requests,
		m.duration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "kanabus_websocket_clients",
			Help: "Connected update-notification clients",
		}, func() float64 { return float64(h.ClientCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "kanabus_timetable_routes",
			Help: "Routes in the loaded timetable",
		}, func() float64 { return float64(len(s.Timetable())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "kanabus_artifacts_loaded_timestamp_seconds",
			Help: "When the artifacts were last reloaded",
		}, func() float64 {
			t := s.LastUpdate()
			if t.IsZero() {
				return 0
			}
			return float64(t.Unix())
		}),
	)

	return m
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.requests,
		promhttp.InstrumentHandlerDuration(m.duration, next))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
