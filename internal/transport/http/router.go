package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"beatstore/internal/platform/metrics"
	"beatstore/internal/platform/middleware"
	"beatstore/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// RouteRegistrar mounts a feature's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies are the pieces NewRouter wires together.
type Dependencies struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Handlers []RouteRegistrar
	Health   []HealthCheck
}

// NewRouter builds the public router: shared middleware, /health, /metrics
// and every feature handler.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/health", healthHandler(logger, deps.Health))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}
	for _, h := range deps.Handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for _, hc := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := hc.Check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"check", hc.Name,
					"error", err,
				)
				resp.Checks[hc.Name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[hc.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
