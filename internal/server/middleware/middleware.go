package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/metrics"
)

func Logging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		slog.Info(
			"request",
			slog.String("method", r.Method),
			slog.String("url", r.URL.Path),
			slog.Duration("time", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func Instrument(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestStarted()
		defer metrics.RequestFinished()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		handler.ServeHTTP(recorder, r)
		metrics.ObserveRequest(r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

const timeoutBody = `{"error":"request timed out"}`

// Timeout enforces the worker request ceiling. Requests still in flight
// when it expires receive a 503 and their handler's context is canceled.
func Timeout(handler http.Handler, limit time.Duration) http.Handler {
	return http.TimeoutHandler(handler, limit, timeoutBody)
}
