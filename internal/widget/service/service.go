package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"compliance-panel/internal/widget/metrics"
	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	audit "compliance-panel/pkg/platform/audit"
	"compliance-panel/pkg/platform/middleware/request"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/service-mocks.go -package=mocks Store,TokenSigner,AuditPublisher

const DefaultRecentLimit = 5

type Store interface {
	Create(ctx context.Context, w *models.Widget) error
	FindByID(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Widget, error)
	Recent(ctx context.Context, limit int) ([]*models.Widget, error)
	Execute(ctx context.Context, widgetID id.WidgetID, validate func(*models.Widget) error, mutate func(*models.Widget)) (*models.Widget, error)
	Delete(ctx context.Context, widgetID id.WidgetID) error
	RecordImpression(ctx context.Context, widgetID id.WidgetID, class models.DeviceClass) error
	Impressions(ctx context.Context, widgetID id.WidgetID) (models.ImpressionBreakdown, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// TokenSigner issues and checks embed tokens.
type TokenSigner interface {
	Issue(widgetID id.WidgetID, now time.Time) (string, time.Time, error)
	Verify(token string, widgetID id.WidgetID, now time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages consent widgets and serves them to embedding sites.
type Service struct {
	store          Store
	signer         TokenSigner
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(store Store, signer TokenSigner, opts ...Option) *Service {
	s := &Service{store: store, signer: signer, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Widget, error) {
	widgets, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list widgets")
	}
	return widgets, nil
}

func (s *Service) Get(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error) {
	w, err := s.store.FindByID(ctx, widgetID)
	if err != nil {
		return nil, translate(err, "failed to load widget")
	}
	return w, nil
}

func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.Widget, error) {
	w, err := models.NewWidget(id.NewWidgetID(), req.Name, models.Type(req.Type),
		req.Description, req.Platform, req.Config, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, w); err != nil {
		return nil, translate(err, "failed to create widget")
	}
	s.record(ctx, audit.EventWidgetCreated, w)
	return w, nil
}

func (s *Service) Update(ctx context.Context, widgetID id.WidgetID, req *models.UpdateRequest) (*models.Widget, error) {
	now := requestcontext.Now(ctx)
	w, err := s.store.Execute(ctx, widgetID,
		func(*models.Widget) error { return nil },
		func(w *models.Widget) { w.ApplyUpdate(req, now) },
	)
	if err != nil {
		return nil, translate(err, "failed to update widget")
	}
	s.record(ctx, audit.EventWidgetUpdated, w)
	return w, nil
}

func (s *Service) Delete(ctx context.Context, widgetID id.WidgetID) error {
	if err := s.store.Delete(ctx, widgetID); err != nil {
		return translate(err, "failed to delete widget")
	}
	s.logAudit(ctx, audit.EventWidgetDeleted, widgetID.String(), "")
	s.metrics.IncrementOperation(string(audit.EventWidgetDeleted))
	return nil
}

// Toggle switches an active widget off and anything else on.
func (s *Service) Toggle(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error) {
	now := requestcontext.Now(ctx)
	w, err := s.store.Execute(ctx, widgetID,
		func(*models.Widget) error { return nil },
		func(w *models.Widget) { w.Toggle(now) },
	)
	if err != nil {
		return nil, translate(err, "failed to toggle widget")
	}
	s.record(ctx, audit.EventWidgetToggled, w)
	return w, nil
}

// Deploy activates the widget and issues a fresh embed token for it.
func (s *Service) Deploy(ctx context.Context, widgetID id.WidgetID) (*models.Deployment, error) {
	now := requestcontext.Now(ctx)
	w, err := s.store.Execute(ctx, widgetID,
		func(*models.Widget) error { return nil },
		func(w *models.Widget) { w.Deploy(now) },
	)
	if err != nil {
		return nil, translate(err, "failed to deploy widget")
	}
	token, expiresAt, err := s.signer.Issue(w.ID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue embed token")
	}
	s.record(ctx, audit.EventWidgetDeployed, w)
	return &models.Deployment{Widget: w, EmbedToken: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) Duplicate(ctx context.Context, widgetID id.WidgetID) (*models.Widget, error) {
	src, err := s.store.FindByID(ctx, widgetID)
	if err != nil {
		return nil, translate(err, "failed to load widget")
	}
	dup := src.Duplicate(id.NewWidgetID(), requestcontext.Now(ctx))
	if err := s.store.Create(ctx, dup); err != nil {
		return nil, translate(err, "failed to duplicate widget")
	}
	s.record(ctx, audit.EventWidgetDuplicated, dup)
	return dup, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*models.Widget, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	widgets, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent widgets")
	}
	return widgets, nil
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count widgets")
	}
	return stats, nil
}

func (s *Service) Impressions(ctx context.Context, widgetID id.WidgetID) (models.ImpressionBreakdown, error) {
	breakdown, err := s.store.Impressions(ctx, widgetID)
	if err != nil {
		return nil, translate(err, "failed to load impressions")
	}
	return breakdown, nil
}

// EmbedConfig returns an active widget to a site holding a valid token.
// Inactive widgets are reported as not found so their existence is not leaked.
func (s *Service) EmbedConfig(ctx context.Context, widgetID id.WidgetID, token string) (*models.Widget, error) {
	if err := s.signer.Verify(token, widgetID, requestcontext.Now(ctx)); err != nil {
		s.metrics.IncrementEmbedRejection("token")
		return nil, err
	}
	w, err := s.store.FindByID(ctx, widgetID)
	if err != nil {
		s.metrics.IncrementEmbedRejection("not_found")
		return nil, translate(err, "failed to load widget")
	}
	if !w.IsActive() {
		s.metrics.IncrementEmbedRejection("inactive")
		return nil, dErrors.New(dErrors.CodeNotFound, "widget not found")
	}
	return w, nil
}

// RecordImpression counts one render of an embedded widget and returns the
// device class derived from userAgent.
func (s *Service) RecordImpression(ctx context.Context, widgetID id.WidgetID, token, userAgent string) (models.DeviceClass, error) {
	if err := s.signer.Verify(token, widgetID, requestcontext.Now(ctx)); err != nil {
		s.metrics.IncrementEmbedRejection("token")
		return "", err
	}
	class := ClassifyDevice(userAgent)
	if err := s.store.RecordImpression(ctx, widgetID, class); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementEmbedRejection("inactive")
		}
		return "", translate(err, "failed to record impression")
	}
	s.metrics.IncrementImpression(string(class))
	return class, nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "widget not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "widget already exists")
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) record(ctx context.Context, event audit.AuditEvent, w *models.Widget) {
	s.logAudit(ctx, event, w.ID.String(), string(w.Status))
	s.metrics.IncrementOperation(string(event))
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, widgetID, detail string) {
	requestID := request.GetRequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"widget_id", widgetID,
		"detail", detail,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:      event,
		SubjectType: "widget",
		SubjectID:   widgetID,
		Detail:      detail,
		RequestID:   requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit widget audit event", "event", event, "error", err)
	}
}
