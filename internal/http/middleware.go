package http

import (
	"net/http"
	"time"

	"github.com/goliatone/go-notes/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Wrap applies the response headers, the body limit and request metrics.
func (api *API) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		}

		r = r.WithContext(logging.ContextWithFields(r.Context(), map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		}))
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(started)
		api.recorder.ObserveHTTPRequest(route, status, elapsed)
		logging.FromContext(api.logger, r.Context()).Debug("http.request",
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
