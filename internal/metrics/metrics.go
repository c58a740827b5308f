// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a private registry with the server's collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WordReports     *prometheus.CounterVec
	LessonReports   *prometheus.CounterVec
	TTSRequests     *prometheus.CounterVec
	Translations    *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		WordReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_word_reports_total",
				Help: "Word results recorded, by language, source and outcome",
			},
			[]string{"language", "source", "outcome"},
		),
		LessonReports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_lesson_completions_total",
				Help: "Lesson completions recorded, by language",
			},
			[]string{"language"},
		),
		TTSRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_tts_requests_total",
				Help: "Server TTS requests, by cache result",
			},
			[]string{"result"},
		),
		Translations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_translations_total",
				Help: "Translation lookups, by provider and whether a remote call failed",
			},
			[]string{"provider", "result"},
		),
	}
	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.WordReports,
		m.LessonReports,
		m.TTSRequests,
		m.Translations,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. A nil Metrics is a no-op.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// WordReported counts one recorded word result.
func (m *Metrics) WordReported(language, source string, correct bool) {
	if m == nil {
		return
	}
	outcome := "wrong"
	if correct {
		outcome = "correct"
	}
	if source == "" {
		source = "unknown"
	}
	m.WordReports.WithLabelValues(language, source, outcome).Inc()
}

// LessonCompleted counts one recorded lesson completion.
func (m *Metrics) LessonCompleted(language string) {
	if m == nil {
		return
	}
	m.LessonReports.WithLabelValues(language).Inc()
}

// TTSServed counts one TTS response; result is "hit", "miss" or "error".
func (m *Metrics) TTSServed(result string) {
	if m == nil {
		return
	}
	m.TTSRequests.WithLabelValues(result).Inc()
}

// TranslationServed counts one answered lookup. degraded is true when a
// remote call failed and the answer carries warnings.
func (m *Metrics) TranslationServed(provider string, degraded bool) {
	if m == nil {
		return
	}
	result := "ok"
	if degraded {
		result = "degraded"
	}
	m.Translations.WithLabelValues(provider, result).Inc()
}
