package middleware

import (
	"net/http"
	"time"
)

type requestRecorder interface {
	HTTPRequest(method string, status int, took time.Duration)
}

// Metrics records the method, status class and latency of every request.
// Methods outside the standard set are recorded as "other".
func Metrics(rec requestRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			rec.HTTPRequest(methodLabel(r.Method), sw.status, time.Since(start))
		})
	}
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	default:
		return "other"
	}
}
