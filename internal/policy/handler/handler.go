package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/policy/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/policy-mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, filter models.Filter) ([]*models.Policy, error)
	Get(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	Create(ctx context.Context, req *models.CreateRequest) (*models.Policy, error)
	Update(ctx context.Context, policyID id.PolicyID, req *models.UpdateRequest) (*models.Policy, error)
	Delete(ctx context.Context, policyID id.PolicyID) error
	Publish(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	Duplicate(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	Recent(ctx context.Context, limit int) ([]*models.Policy, error)
}

// Handler serves the admin policy endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the routes under /policies on r, which is expected to be
// the admin-guarded /api subrouter.
func (h *Handler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/policies", func(r chi.Router) {
		r.Use(mw...)
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/recent", h.HandleRecent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/publish", h.HandlePublish)
			r.Post("/duplicate", h.HandleDuplicate)
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
	policies, err := h.service.List(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list policies", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(policies))
}

// HandleRecent returns the most recently updated policies; ?limit= defaults to 5.
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
	policies, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "failed to load recent policies", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(policies))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), policyID)
	if err != nil {
		h.fail(r.Context(), w, "failed to get policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Update(ctx, policyID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), policyID); err != nil {
		h.fail(r.Context(), w, "failed to delete policy", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Publish(r.Context(), policyID)
	if err != nil {
		h.fail(r.Context(), w, "failed to publish policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Duplicate(r.Context(), policyID)
	if err != nil {
		h.fail(r.Context(), w, "failed to duplicate policy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) policyID(w http.ResponseWriter, r *http.Request) (id.PolicyID, bool) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PolicyID{}, false
	}
	return policyID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	}
	httputil.WriteError(w, err)
}
