package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Oyasikelly/QuizMentor-sub000/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

// RequestContext runs after middleware.RequestID. It echoes the request id
// and attaches a request-scoped logger to the context.
func RequestContext(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			w.Header().Set(middleware.RequestIDHeader, id)

			ctx := logger.WithContext(r.Context(), log.WithRequestID(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// RequestLogger logs each request through the context logger.
// Panics caught by middleware.Recoverer are reported through the same entry.
func RequestLogger() func(http.Handler) http.Handler {
	return middleware.RequestLogger(zapFormatter{})
}

type zapFormatter struct{}

func (zapFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &zapEntry{
		log:    logger.FromContext(r.Context()),
		method: r.Method,
		path:   r.URL.Path,
	}
}

type zapEntry struct {
	log    *logger.Logger
	method string
	path   string
}

func (e *zapEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	fields := []logger.Field{
		logger.String("method", e.method),
		logger.String("path", e.path),
		logger.Int("status", status),
		logger.Int("bytes", bytes),
		logger.Latency(elapsed),
	}
	switch {
	case status >= 500:
		e.log.Error("request failed", fields...)
	case status >= 400:
		e.log.Warn("request rejected", fields...)
	default:
		e.log.Debug("request served", fields...)
	}
}

func (e *zapEntry) Panic(v interface{}, stack []byte) {
	e.log.Error("panic recovered",
		logger.Any("panic", v),
		logger.String("stack", string(stack)),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEADERS
// ══════════════════════════════════════════════════════════════════════════════

// CORS allows the configured origins. "*" allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok || allowAll {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)
					w.Header().Set("Access-Control-Max-Age", "86400")
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
