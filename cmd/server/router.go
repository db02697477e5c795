package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/client"
	"compliance-panel/internal/dashboard"
	"compliance-panel/internal/jurisdiction"
	"compliance-panel/internal/platform/config"
	platformmetrics "compliance-panel/internal/platform/metrics"
	"compliance-panel/internal/policy"
	ratelimitmodels "compliance-panel/internal/ratelimit/models"
	"compliance-panel/internal/widget"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/platform/middleware/admin"
	"compliance-panel/pkg/platform/middleware/metadata"
	"compliance-panel/pkg/platform/middleware/request"
	"compliance-panel/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// newRouter mounts three surfaces: the public jurisdiction and embed routes
// (rate limited by client IP), the admin API under /api (shared token), and
// the operational /health and /metrics endpoints.
func newRouter(cfg config.Server, log *slog.Logger, a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(metadata.ClientMetadata(cfg.TrustedProxies))
	r.Use(requesttime.Middleware)
	r.Use(a.httpMetrics.Instrument)

	r.Get("/health", healthHandler(a.healthChecks))
	r.Handle("/metrics", platformmetrics.Handler())

	jurisdiction.NewHandler(a.resolver, log).Register(r, a.rateLimiter.RateLimit(ratelimitmodels.ClassResolve))
	widget.NewEmbedHandler(a.widgets, log).Register(r, a.rateLimiter.RateLimit(ratelimitmodels.ClassEmbed))

	r.Route("/api", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, log))
		policy.NewHandler(a.policies, log).Register(r)
		widget.NewHandler(a.widgets, log).Register(r)
		client.NewHandler(a.clients, log).Register(r)
		dashboard.NewHandler(a.dashboard, log).Register(r)
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports 503 when any configured backing service fails its check.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
