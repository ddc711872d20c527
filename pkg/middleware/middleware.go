package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fieldops-hq/fieldops/pkg/composables"
	"github.com/fieldops-hq/fieldops/pkg/configuration"
)

// Provide stores a static value in the request context under the given key.
func Provide(key interface{}, value interface{}) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestParams captures per-request metadata for downstream composables.
// Install it before WithLogger so the request log carries the client address.
func RequestParams() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params := &composables.Params{
				IP:        remoteIP(r),
				UserAgent: r.UserAgent(),
				Request:   r,
				Writer:    w,
			}
			next.ServeHTTP(w, r.WithContext(composables.WithParams(r.Context(), params)))
		})
	}
}

// WithLogger attaches a request-scoped logrus entry (request id, method,
// path) to the context and logs request completion with the duration.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := requestID(r)
			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			if params, ok := composables.UseParams(r.Context()); ok {
				entry = entry.WithFields(logrus.Fields{
					"ip":         params.IP,
					"user_agent": params.UserAgent,
				})
			}
			ctx := composables.WithLogger(r.Context(), entry)
			next.ServeHTTP(w, r.WithContext(ctx))
			entry.WithField("duration", time.Since(start).String()).Info("request completed")
		})
	}
}

// WithTransaction wraps the handler in a database transaction. The
// transaction commits when the handler returns. Requests without a pool in
// context (in-memory setups) are served directly.
func WithTransaction() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, poolErr := composables.UsePool(r.Context()); poolErr != nil {
				next.ServeHTTP(w, r)
				return
			}
			err := composables.InTx(r.Context(), func(txCtx context.Context) error {
				next.ServeHTTP(w, r.WithContext(txCtx))
				return nil
			})
			if err != nil {
				if entry, ok := composables.TryUseLogger(r.Context()); ok {
					entry.WithError(err).Error("transaction middleware failed")
				}
			}
		})
	}
}

func requestID(r *http.Request) string {
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-ID"
	}
	if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
		return id
	}
	return uuid.NewString()
}

func remoteIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
