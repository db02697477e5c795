package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/dashboard/models"
	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/dashboard-mocks.go -package=mocks Service

type Service interface {
	Stats(ctx context.Context) (models.Stats, error)
	Overview(ctx context.Context) (*models.Overview, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

func (h *Handler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(mw...)
		r.Get("/stats", h.HandleStats)
		r.Get("/overview", h.HandleOverview)
	})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to load dashboard stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to load dashboard overview", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	}
	httputil.WriteError(w, err)
}
