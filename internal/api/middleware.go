package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// keyHeader lets scripts that cannot set Authorization pass the API key.
const keyHeader = "X-Affix-Key"

// AuthMiddleware checks the API key from a bearer token or the X-Affix-Key
// header.
func AuthMiddleware(apiKey string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := apiKeyFrom(r)
			if !ok {
				jsonError(w, "missing api key", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				log.Warn("rejected api key",
					"request_id", middleware.GetReqID(r.Context()),
					"path", r.URL.Path,
					"remote", r.RemoteAddr,
				)
				jsonError(w, "invalid api key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func apiKeyFrom(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		token, found := strings.CutPrefix(auth, "Bearer ")
		return token, found && token != ""
	}
	key := r.Header.Get(keyHeader)
	return key, key != ""
}

// RequestLogger echoes the request ID and logs one line per request. Page
// responses add the affix counts set by writePage; server errors log at warn.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if id := middleware.GetReqID(r.Context()); id != "" {
				w.Header().Set(middleware.RequestIDHeader, id)
			}

			rw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r)

			status := rw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rw.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if items := rw.Header().Get("X-Affix-Items"); items != "" {
				attrs = append(attrs, "affix_items", items)
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Warn("request", attrs...)
			case r.URL.Path == "/health":
				log.Debug("request", attrs...)
			default:
				log.Info("request", attrs...)
			}
		})
	}
}
