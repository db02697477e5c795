package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/widget-mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, filter models.Filter) ([]*models.Widget, error)
	Get(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error)
	Create(ctx context.Context, req *models.CreateRequest) (*models.Widget, error)
	Update(ctx context.Context, widgetID id.WidgetID, req *models.UpdateRequest) (*models.Widget, error)
	Delete(ctx context.Context, widgetID id.WidgetID) error
	Toggle(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error)
	Deploy(ctx context.Context, widgetID id.WidgetID) (*models.Deployment, error)
	Duplicate(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error)
	Recent(ctx context.Context, limit int) ([]*models.Widget, error)
	Impressions(ctx context.Context, widgetID id.WidgetID) (models.ImpressionBreakdown, error)
}

// Handler serves the admin widget endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

func (h *Handler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/widgets", func(r chi.Router) {
		r.Use(mw...)
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/recent", h.HandleRecent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/toggle", h.HandleToggle)
			r.Post("/deploy", h.HandleDeploy)
			r.Post("/duplicate", h.HandleDuplicate)
			r.Get("/impressions", h.HandleImpressions)
		})
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter, err := models.NewFilter(q.Get("status"), q.Get("type"), q.Get("search"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	widgets, err := h.service.List(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list widgets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(widgets))
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	widgets, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "failed to load recent widgets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(widgets))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	widget, err := h.service.Get(r.Context(), widgetID)
	if err != nil {
		h.fail(r.Context(), w, "failed to get widget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, widget)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	widget, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create widget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, widget)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	widget, err := h.service.Update(ctx, widgetID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update widget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, widget)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), widgetID); err != nil {
		h.fail(r.Context(), w, "failed to delete widget", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	widget, err := h.service.Toggle(r.Context(), widgetID)
	if err != nil {
		h.fail(r.Context(), w, "failed to toggle widget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, widget)
}

// HandleDeploy activates the widget and returns the embed token for it.
func (h *Handler) HandleDeploy(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	dep, err := h.service.Deploy(r.Context(), widgetID)
	if err != nil {
		h.fail(r.Context(), w, "failed to deploy widget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dep)
}

func (h *Handler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	widget, err := h.service.Duplicate(r.Context(), widgetID)
	if err != nil {
		h.fail(r.Context(), w, "failed to duplicate widget", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, widget)
}

func (h *Handler) HandleImpressions(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseWidgetID(w, r)
	if !ok {
		return
	}
	breakdown, err := h.service.Impressions(r.Context(), widgetID)
	if err != nil {
		h.fail(r.Context(), w, "failed to load impressions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ImpressionsResponse{WidgetID: widgetID, ByDevice: breakdown})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	logFailure(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}

func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		logger.ErrorContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	}
}

func parseWidgetID(w http.ResponseWriter, r *http.Request) (id.WidgetID, bool) {
	widgetID, err := id.ParseWidgetID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.WidgetID{}, false
	}
	return widgetID, true
}
