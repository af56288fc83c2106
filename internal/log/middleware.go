package log

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// generateRequestID returns a random 16-hex-char request identifier.
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// HTTPMiddleware logs request start and completion with a generated request
// id. 4xx responses log at Warn, 5xx at Error, everything else at Info.
func HTTPMiddleware(logger *Logger, extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := generateRequestID()

			clientIP := ""
			if extractIP != nil {
				clientIP = extractIP(r)
			}

			logger.InfoContext(r.Context(), "HTTP request started",
				FieldRequestID, requestID,
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldClientIP, clientIP,
				FieldUserAgent, r.Header.Get("User-Agent"))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.status >= 500 {
				level = slog.LevelError
			} else if rec.status >= 400 {
				level = slog.LevelWarn
			}

			logger.Logger.Log(r.Context(), level, "HTTP request completed",
				FieldComponent, ComponentHTTP,
				FieldRequestID, requestID,
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldStatusCode, rec.status,
				FieldDuration, time.Since(start).Milliseconds(),
				FieldSuccess, rec.status < 400,
				FieldClientIP, clientIP)
		})
	}
}
