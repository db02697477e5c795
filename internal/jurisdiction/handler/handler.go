package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"compliance-panel/internal/jurisdiction/adapters/reported"
	"compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/jurisdiction/service"
	"compliance-panel/pkg/platform/httputil"
	"compliance-panel/pkg/platform/middleware/request"
	"compliance-panel/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/jurisdiction-mocks.go -package=mocks Service

// Service resolves visitor jurisdictions and the templates they require.
type Service interface {
	ResolveCountry(ctx context.Context, req service.Request) models.Resolution
	RecommendedTemplates(country models.CountryCode) []models.TemplateID
	Catalog(country models.CountryCode) []models.TemplateCard
}

// Handler serves the public jurisdiction endpoints used by the policy editor
// and embedded widgets.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the routes under /public/jurisdiction. mw runs before every
// route, typically the per-IP rate limiter.
func (h *Handler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/public/jurisdiction", func(r chi.Router) {
		r.Use(mw...)
		r.Post("/resolve", h.HandleResolve)
		r.Get("/recommendations", h.HandleRecommendations)
		r.Get("/templates", h.HandleTemplates)
	})
}

// HandleResolve runs the resolution chain for the calling visitor.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeOptionalAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in := service.Request{ClientIP: requestcontext.ClientIP(ctx)}
	if device := reported.New(req.report()); device != nil {
		in.Device = device
	}

	res := h.service.ResolveCountry(ctx, in)
	h.logger.InfoContext(ctx, "jurisdiction resolved",
		"request_id", requestID,
		"country", res.Country.String(),
		"source", string(res.Source),
	)

	httputil.WriteJSON(w, http.StatusOK, ResolveResponse{
		Country:     countryOrNull(res.Country),
		Source:      res.Source,
		Recommended: h.service.RecommendedTemplates(res.Country),
	})
}

// HandleRecommendations returns the templates for ?country=. A missing or
// unrecognized country yields the generic privacy policy.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	country := models.NormalizeCountry(r.URL.Query().Get("country"))
	httputil.WriteJSON(w, http.StatusOK, RecommendationsResponse{
		Country:     countryOrNull(country),
		Recommended: h.service.RecommendedTemplates(country),
	})
}

// HandleTemplates returns the full catalog with recommended cards flagged.
func (h *Handler) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	country := models.NormalizeCountry(r.URL.Query().Get("country"))
	httputil.WriteJSON(w, http.StatusOK, TemplatesResponse{
		Country:   countryOrNull(country),
		Templates: h.service.Catalog(country),
	})
}
