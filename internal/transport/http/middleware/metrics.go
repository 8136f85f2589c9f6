package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type RequestRecorder interface {
	InFlight(delta float64)
	Record(method, route string, status int, duration time.Duration)
}

// Instrument reports every request under its chi route pattern.
func Instrument(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec.InFlight(1)
			defer rec.InFlight(-1)

			recorder := wrapStatus(w)
			next.ServeHTTP(recorder, r)
			rec.Record(r.Method, routePattern(r), recorder.status, time.Since(start))
		})
	}
}

// routePattern keeps label cardinality bounded by never falling back to the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
