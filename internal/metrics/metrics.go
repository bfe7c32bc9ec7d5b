package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the panel. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BackendRequests  *prometheus.CounterVec
	BackendLatency   *prometheus.HistogramVec
	RefDataFallbacks *prometheus.CounterVec
	FormRejections   *prometheus.CounterVec
}

// New creates the metrics on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_panel_backend_requests_total",
			Help: "Total number of requests sent to the CRM backend",
		}, []string{"operation", "outcome"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_panel_backend_request_duration_seconds",
			Help:    "Latency of CRM backend requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		RefDataFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_panel_refdata_fallbacks_total",
			Help: "Reference data lookups answered from cache or with an empty list after a provider failure",
		}, []string{"list", "source"}),
		FormRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_panel_form_rejections_total",
			Help: "Section form submissions rejected by local validation",
		}, []string{"section"}),
	}
}

// ObserveBackend records one backend call. outcome is "ok", "rejected" or "transport".
func (m *Metrics) ObserveBackend(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(op, outcome).Inc()
	m.BackendLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) IncrementRefDataFallback(list, source string) {
	if m == nil {
		return
	}
	m.RefDataFallbacks.WithLabelValues(list, source).Inc()
}

func (m *Metrics) IncrementFormRejection(section string) {
	if m == nil {
		return
	}
	m.FormRejections.WithLabelValues(section).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
