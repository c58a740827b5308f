package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/metrics"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(log logrus.FieldLogger, m *metrics.Metrics) *Middleware {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Middleware{log: log, metrics: m}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging middleware logs HTTP requests and records their metrics
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// Call next handler
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		endpoint := routeOf(r)
		m.metrics.ObserveRequest(r.Method, endpoint, rec.status, elapsed)

		fields := logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed,
		}
		if session := r.Header.Get(SessionHeader); session != "" {
			fields["session"] = session
		}
		entry := m.log.WithFields(fields)
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	})
}

// routeOf returns the matched route path, keeping metric labels bounded
// when clients request arbitrary URLs.
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, found := strings.Cut(r.Pattern, " "); found {
		return path
	}
	return r.Pattern
}
