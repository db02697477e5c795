package service

import (
	"context"
	"errors"
	"log/slog"

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/policy/metrics"
	"compliance-panel/internal/policy/models"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	audit "compliance-panel/pkg/platform/audit"
	"compliance-panel/pkg/platform/middleware/request"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/service-mocks.go -package=mocks Store,AuditPublisher

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 5

type Store interface {
	Create(ctx context.Context, p *models.Policy) error
	FindByID(ctx context.Context, policyID id.PolicyID) (*models.Policy, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Policy, error)
	Recent(ctx context.Context, limit int) ([]*models.Policy, error)
	Execute(ctx context.Context, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error)
	Delete(ctx context.Context, policyID id.PolicyID) error
	Stats(ctx context.Context) (models.Stats, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages the policy lifecycle: drafting, publishing, duplicating.
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

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Policy, error) {
	policies, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, nil
}

func (s *Service) Get(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	p, err := s.store.FindByID(ctx, policyID)
	if err != nil {
		return nil, translate(err, "failed to load policy")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.Policy, error) {
	p, err := models.NewPolicy(id.NewPolicyID(), req.Name, req.Description,
		jmodels.TemplateID(req.Type), req.Content, req.Regions, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, translate(err, "failed to create policy")
	}
	s.record(ctx, audit.EventPolicyCreated, p)
	return p, nil
}

// Update applies a partial update. Every accepted update produces a new version.
// A draft or archived policy cannot be made active here, only by Publish.
func (s *Service) Update(ctx context.Context, policyID id.PolicyID, req *models.UpdateRequest) (*models.Policy, error) {
	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, policyID,
		func(p *models.Policy) error { return p.CanUpdate(req) },
		func(p *models.Policy) { p.ApplyUpdate(req, now) },
	)
	if err != nil {
		return nil, translate(err, "failed to update policy")
	}
	s.record(ctx, audit.EventPolicyUpdated, p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, policyID id.PolicyID) error {
	if err := s.store.Delete(ctx, policyID); err != nil {
		return translate(err, "failed to delete policy")
	}
	s.logAudit(ctx, audit.EventPolicyDeleted, policyID.String(), "")
	s.metrics.IncrementOperation(string(audit.EventPolicyDeleted))
	return nil
}

// Publish makes the policy active as a new version. Re-publishing an active
// policy is allowed and bumps the version again.
func (s *Service) Publish(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, policyID,
		func(p *models.Policy) error { return p.CanPublish() },
		func(p *models.Policy) { p.ApplyPublish(now) },
	)
	if err != nil {
		return nil, translate(err, "failed to publish policy")
	}
	s.record(ctx, audit.EventPolicyPublished, p)
	s.metrics.IncrementPublished()
	return p, nil
}

// Duplicate stores an unpublished draft copy of the policy.
func (s *Service) Duplicate(ctx context.Context, policyID id.PolicyID) (*models.Policy, error) {
	src, err := s.store.FindByID(ctx, policyID)
	if err != nil {
		return nil, translate(err, "failed to load policy")
	}
	dup := src.Duplicate(id.NewPolicyID(), requestcontext.Now(ctx))
	if err := s.store.Create(ctx, dup); err != nil {
		return nil, translate(err, "failed to duplicate policy")
	}
	s.record(ctx, audit.EventPolicyDuplicated, dup)
	return dup, nil
}

// Recent returns the most recently updated policies.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.Policy, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	policies, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recent policies")
	}
	return policies, nil
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count policies")
	}
	return stats, nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "policy not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "policy already exists")
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) record(ctx context.Context, event audit.AuditEvent, p *models.Policy) {
	s.logAudit(ctx, event, p.ID.String(), string(p.Status))
	s.metrics.IncrementOperation(string(event))
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, policyID, detail string) {
	requestID := request.GetRequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"policy_id", policyID,
		"detail", detail,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:      event,
		SubjectType: "policy",
		SubjectID:   policyID,
		Detail:      detail,
		RequestID:   requestID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit policy audit event", "event", event, "error", err)
	}
}
