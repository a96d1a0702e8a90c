package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects pipeline metrics on its own registry. All methods are
// safe on a nil *Recorder.
type Recorder struct {
	registry        *prometheus.Registry
	fetchAttempts   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	forecastLatency prometheus.Histogram
	pageRuns        *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	sessions        prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockforecaster_fetch_attempts_total",
				Help: "History fetch attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockforecaster_cache_lookups_total",
				Help: "History cache lookups by result",
			},
			[]string{"result"},
		),
		forecastLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockforecaster_forecast_duration_seconds",
				Help:    "Time spent fitting and predicting one forecast",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		pageRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockforecaster_page_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		httpLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockforecaster_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		sessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockforecaster_ws_sessions",
				Help: "Connected websocket sessions",
			},
		),
	}
}

// RecordFetch counts one provider attempt. outcome is "success" or "failure".
func (r *Recorder) RecordFetch(source, outcome string) {
	if r == nil {
		return
	}
	r.fetchAttempts.WithLabelValues(source, outcome).Inc()
}

// RecordCache counts a cache lookup, result is "hit" or "miss".
func (r *Recorder) RecordCache(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordForecast(seconds float64) {
	if r == nil {
		return
	}
	r.forecastLatency.Observe(seconds)
}

// RecordPage counts a pipeline run: "ok", "no_data" or "forecast_error".
func (r *Recorder) RecordPage(outcome string) {
	if r == nil {
		return
	}
	r.pageRuns.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordHTTP(route, method, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpLatency.WithLabelValues(route, method, status).Observe(seconds)
}

func (r *Recorder) SessionOpened() {
	if r == nil {
		return
	}
	r.sessions.Inc()
}

func (r *Recorder) SessionClosed() {
	if r == nil {
		return
	}
	r.sessions.Dec()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
