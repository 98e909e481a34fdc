package middlewares

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/survey-builder/log"
)

// RequestLog writes one log line per request with its status, size and
// duration. Server errors are logged at WARN, everything else at INFO.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   m.Code,
			"bytes":    m.Written,
			"duration": m.Duration.String(),
			"remote":   r.RemoteAddr,
		})
		if id := middleware.GetReqID(r.Context()); id != "" {
			entry = entry.WithField("request_id", id)
		}

		if m.Code >= 500 {
			entry.Warn("request")
		} else {
			entry.Info("request")
		}
	})
}

// NoStore marks responses as uncacheable. Editor pages carry the current
// question list and must never be served from a cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("cache-control", "no-store")
		next.ServeHTTP(w, r)
	})
}
