package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/client/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/client-mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, filter models.Filter) ([]*models.Client, error)
	Get(ctx context.Context, clientID id.ClientID) (*models.Details, error)
	Create(ctx context.Context, req *models.CreateRequest) (*models.Client, error)
	Update(ctx context.Context, clientID id.ClientID, req *models.UpdateRequest) (*models.Client, error)
	Delete(ctx context.Context, clientID id.ClientID) error
	Activate(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	Deactivate(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	Recent(ctx context.Context, limit int) ([]*models.Client, error)
}

// Handler serves the admin client endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

func (h *Handler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/clients", func(r chi.Router) {
		r.Use(mw...)
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/recent", h.HandleRecent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/activate", h.transition("activate", h.service.Activate))
			r.Post("/deactivate", h.transition("deactivate", h.service.Deactivate))
		})
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter, err := models.NewFilter(q.Get("status"), q.Get("industry"), q.Get("plan"), q.Get("search"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	clients, err := h.service.List(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list clients", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(clients))
}

// HandleRecent returns the newest clients by creation time.
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
	clients, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "failed to load recent clients", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(clients))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}
	details, err := h.service.Get(r.Context(), clientID)
	if err != nil {
		h.fail(r.Context(), w, "failed to get client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.Update(ctx, clientID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), clientID); err != nil {
		h.fail(r.Context(), w, "failed to delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transition serves the activate and deactivate endpoints, which differ only
// in the service call.
func (h *Handler) transition(name string, apply func(context.Context, id.ClientID) (*models.Client, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := h.clientID(w, r)
		if !ok {
			return
		}
		c, err := apply(r.Context(), clientID)
		if err != nil {
			h.fail(r.Context(), w, "failed to "+name+" client", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, c)
	}
}

func (h *Handler) clientID(w http.ResponseWriter, r *http.Request) (id.ClientID, bool) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ClientID{}, false
	}
	return clientID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	}
	httputil.WriteError(w, err)
}
