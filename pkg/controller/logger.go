package controller

import (
	"context"
	"linkfixer/pkg/logger"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusRecorder keeps the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers such as pprof traces flush through the recorder.
func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ClientIP returns the caller address, preferring X-Forwarded-For and
// X-Real-IP over the connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

// CtxKey is the type of context keys set by this package.
type CtxKey string

// RequestIDKey holds the request ID in the request context.
const RequestIDKey CtxKey = "requestID"

// WithLogger tags each request with an ID (taken from X-Request-Id when
// present) and a request-scoped logger, and writes an access log line when
// the handler returns. Successful requests are logged at debug level since
// most of them are metric scrapes and health checks.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logger.WithFields(ctx, zap.String(string(RequestIDKey), requestID))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		fields := []zap.Field{
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", ClientIP(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("userAgent", r.UserAgent()),
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Warn(ctx, "ops request failed", fields...)

			return
		}
		logger.Debug(ctx, "ops request", fields...)
	})
}
