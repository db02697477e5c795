package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/requestcontext"
)

//go:generate mockgen -source=embed.go -destination=mocks/embed-mocks.go -package=mocks EmbedService

// EmbedService serves widgets to customer sites holding an embed token.
type EmbedService interface {
	EmbedConfig(ctx context.Context, widgetID id.WidgetID, token string) (*models.Widget, error)
	RecordImpression(ctx context.Context, widgetID id.WidgetID, token, userAgent string) (models.DeviceClass, error)
}

// EmbedHandler serves the public, token-authenticated widget endpoints.
type EmbedHandler struct {
	logger  *slog.Logger
	service EmbedService
}

func NewEmbed(svc EmbedService, logger *slog.Logger) *EmbedHandler {
	return &EmbedHandler{logger: logger, service: svc}
}

// Register mounts /embed/widgets/{id}. mw typically carries the rate limiter.
func (h *EmbedHandler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/embed/widgets/{id}", func(r chi.Router) {
		r.Use(mw...)
		r.Get("/", h.HandleConfig)
		r.Post("/impressions", h.HandleImpression)
	})
}

// HandleConfig returns the render config for ?token=.
func (h *EmbedHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	widget, err := h.service.EmbedConfig(ctx, widgetID, r.URL.Query().Get("token"))
	if err != nil {
		logFailure(ctx, h.logger, "failed to serve embed config", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EmbedResponse{
		ID:       widget.ID,
		Type:     widget.Type,
		Platform: widget.Platform,
		Config:   widget.Config,
	})
}

// HandleImpression counts a render. The device class comes from the
// User-Agent captured by the client metadata middleware.
func (h *EmbedHandler) HandleImpression(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	class, err := h.service.RecordImpression(ctx, widgetID, r.URL.Query().Get("token"), requestcontext.UserAgent(ctx))
	if err != nil {
		logFailure(ctx, h.logger, "failed to record impression", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, ImpressionRecordedResponse{DeviceClass: class})
}
