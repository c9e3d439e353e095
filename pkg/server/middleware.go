package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
)

type contextKey string

// contextKeyRequestID carries the per-request id through handlers.
const contextKeyRequestID contextKey = "request-id"

// RequestIDFromContext exposes the request id to handlers that want to
// tag their own output with it.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// withMiddleware wraps an API handler with the shared stack, outermost
// first: request id, request logging, rate limiting, panic recovery.
func (s *Server) withMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return s.withRequestID(s.withRequestLog(s.withRateLimit(s.withRecovery(h))))
}

// withRequestID honors a caller-provided X-Request-ID and mints one
// otherwise, echoing it back on the response.
func (s *Server) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, requestID)))
	}
}

// statusRecorder captures the status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsed := time.Since(start)
		requestTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(r.URL.Path).Observe(elapsed.Seconds())

		slog.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"request_id", RequestIDFromContext(r.Context()),
		)
	}
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.clientLimiter(r.RemoteAddr).Allow() {
			WriteError(w, r, http.StatusTooManyRequests, faroserrors.ErrCodeRateLimitExceeded,
				"rate limit exceeded, retry later", true, nil)
			return
		}
		next(w, r)
	}
}

// clientLimiter returns the token bucket for one client address,
// creating it on first sight. Buckets are never evicted; the lens
// serves a bounded population of clients, not the open internet.
func (s *Server) clientLimiter(remoteAddr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()

	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
		s.limiters[host] = limiter
	}
	return limiter
}

func (s *Server) withRecovery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if cause := recover(); cause != nil {
				slog.Error("handler panicked", "path", r.URL.Path, "panic", cause)
				WriteError(w, r, http.StatusInternalServerError, faroserrors.ErrCodeInternal,
					"internal server error", true, nil)
			}
		}()
		next(w, r)
	}
}
