package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"beatstore/internal/ratelimit/models"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/platform/httputil"
	"beatstore/pkg/requestcontext"
)

// Limiter records a request against key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type Metrics interface {
	IncrementRejections(policy string)
	IncrementStoreErrors()
}

type Middleware struct {
	limiter  Limiter
	logger   *slog.Logger
	metrics  Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every policy into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		m.logger.Info("rate limiting disabled")
	}
	return m
}

// PerUser limits requests by authenticated user, falling back to the client
// address for anonymous requests. Store failures let the request through.
func (m *Middleware) PerUser(policy models.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := policy.Name + ":" + subject(r)
			result, err := m.limiter.Allow(ctx, key, policy.Limit, policy.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"policy", policy.Name,
					"error", err,
				)
				if m.metrics != nil {
					m.metrics.IncrementStoreErrors()
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.IncrementRejections(policy.Name)
				}
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"policy", policy.Name,
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func subject(r *http.Request) string {
	if userID := requestcontext.UserID(r.Context()); !userID.IsNil() {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
