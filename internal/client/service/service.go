package service

import (
	"context"
	"errors"
	"log/slog"

	"compliance-panel/internal/client/metrics"
	"compliance-panel/internal/client/models"
	"compliance-panel/internal/jurisdiction/regulation"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	audit "compliance-panel/pkg/platform/audit"
	"compliance-panel/pkg/platform/middleware/request"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/service-mocks.go -package=mocks Store,AuditPublisher

const DefaultRecentLimit = 5

type Store interface {
	Create(ctx context.Context, c *models.Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Client, error)
	Recent(ctx context.Context, limit int) ([]*models.Client, error)
	Execute(ctx context.Context, clientID id.ClientID, validate func(*models.Client) error, mutate func(*models.Client)) (*models.Client, error)
	Delete(ctx context.Context, clientID id.ClientID) error
	Stats(ctx context.Context) (models.Stats, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages client accounts and their activation state.
type Service struct {
	store          Store
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Client, error) {
	clients, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

// Get returns the client along with the templates its country calls for.
func (s *Service) Get(ctx context.Context, clientID id.ClientID) (*models.Details, error) {
	c, err := s.store.FindByID(ctx, clientID)
	if err != nil {
		return nil, translate(err, "failed to load client")
	}
	return &models.Details{
		Client:               c,
		RecommendedTemplates: regulation.RecommendedTemplates(c.Country),
	}, nil
}

func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.Client, error) {
	c, err := models.NewClient(id.NewClientID(), req, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, translate(err, "failed to create client")
	}
	s.record(ctx, audit.EventClientCreated, c)
	return c, nil
}

// Update applies a partial update. Changing the email to one held by another
// client is a conflict.
func (s *Service) Update(ctx context.Context, clientID id.ClientID, req *models.UpdateRequest) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, clientID,
		func(c *models.Client) error { return c.Clone().ApplyUpdate(req, now) },
		func(c *models.Client) { _ = c.ApplyUpdate(req, now) },
	)
	if err != nil {
		return nil, asValidation(translate(err, "failed to update client"))
	}
	s.record(ctx, audit.EventClientUpdated, c)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, clientID id.ClientID) error {
	if err := s.store.Delete(ctx, clientID); err != nil {
		return translate(err, "failed to delete client")
	}
	s.logAudit(ctx, audit.EventClientDeleted, clientID.String(), "")
	s.metrics.IncrementOperation(string(audit.EventClientDeleted))
	return nil
}

// Activate sets the client and its subscription active. Idempotent.
func (s *Service) Activate(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, clientID,
		func(*models.Client) error { return nil },
		func(c *models.Client) { c.Activate(now) },
	)
	if err != nil {
		return nil, translate(err, "failed to activate client")
	}
	s.record(ctx, audit.EventClientActivated, c)
	return c, nil
}

// Deactivate sets the client and its subscription inactive. Idempotent.
func (s *Service) Deactivate(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	now := requestcontext.Now(ctx)
	c, err := s.store.Execute(ctx, clientID,
		func(*models.Client) error { return nil },
		func(c *models.Client) { c.Deactivate(now) },
	)
	if err != nil {
		return nil, translate(err, "failed to deactivate client")
	}
	s.record(ctx, audit.EventClientDeactivated, c)
	return c, nil
}

// Recent returns the most recently created clients.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.Client, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	clients, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent clients")
	}
	return clients, nil
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count clients")
	}
	return stats, nil
}

// asValidation reports broken input invariants as validation errors.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "a client with this email already exists")
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) record(ctx context.Context, event audit.AuditEvent, c *models.Client) {
	s.logAudit(ctx, event, c.ID.String(), string(c.Status))
	s.metrics.IncrementOperation(string(event))
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, clientID, detail string) {
	requestID := request.GetRequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"client_id", clientID,
		"detail", detail,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:      event,
		SubjectType: "client",
		SubjectID:   clientID,
		Detail:      detail,
		RequestID:   requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit client audit event", "event", event, "error", err)
	}
}
