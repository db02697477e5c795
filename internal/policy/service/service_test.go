package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/policy/metrics"
	"compliance-panel/internal/policy/models"
	"compliance-panel/internal/policy/service/mocks"
	"compliance-panel/internal/policy/store"
	id "compliance-panel/pkg/domain"
	dErrors "compliance-panel/pkg/domain-errors"
	audit "compliance-panel/pkg/platform/audit"
	"compliance-panel/pkg/platform/audit/publisher"
	auditmemory "compliance-panel/pkg/platform/audit/store/memory"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	events  *auditmemory.InMemoryStore
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.svc = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithAuditPublisher(publisher.NewPublisher(s.events)),
	)
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) create(name string) *models.Policy {
	p, err := s.svc.Create(s.ctx, &models.CreateRequest{
		Name:    name,
		Type:    string(jmodels.TemplateGDPR),
		Content: "# " + name,
	})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) actions() []audit.AuditEvent {
	events, err := s.events.ListAll(context.Background())
	s.Require().NoError(err)
	out := make([]audit.AuditEvent, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) TestCreate() {
	s.Run("defaults to a version 1 draft", func() {
		p := s.create("Privacy")
		s.Equal(models.StatusDraft, p.Status)
		s.Equal(1, p.Version)
		s.Equal(s.now, p.CreatedAt)
		s.Nil(p.PublishedAt)
		s.Contains(p.Regions, "de")
	})

	s.Run("invariant violations surface as validation errors", func() {
		_, err := s.svc.Create(s.ctx, &models.CreateRequest{Name: "X", Type: "no-such-template"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Contains(s.actions(), audit.EventPolicyCreated)
	s.Equal(float64(1), promtest.ToFloat64(s.metrics.Operations.WithLabelValues(string(audit.EventPolicyCreated))))
}

func (s *ServiceSuite) TestUpdateBumpsVersion() {
	p := s.create("Privacy")
	name := "Privacy v2"
	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))

	req := &models.UpdateRequest{Name: &name}
	s.Require().NoError(req.Validate())
	updated, err := s.svc.Update(later, p.ID, req)
	s.Require().NoError(err)
	s.Equal("Privacy v2", updated.Name)
	s.Equal(2, updated.Version)
	s.Equal(s.now.Add(time.Hour), updated.UpdatedAt)

	_, err = s.svc.Update(s.ctx, id.NewPolicyID(), req)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestPublish() {
	p := s.create("Privacy")

	published, err := s.svc.Publish(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, published.Status)
	s.Equal(2, published.Version)
	s.Require().NotNil(published.PublishedAt)
	s.Equal(s.now, *published.PublishedAt)

	s.Run("republishing bumps again", func() {
		again, err := s.svc.Publish(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(3, again.Version)
	})

	s.Run("archived policies are rejected", func() {
		archived := "archived"
		req := &models.UpdateRequest{Status: &archived}
		s.Require().NoError(req.Validate())
		_, err := s.svc.Update(s.ctx, p.ID, req)
		s.Require().NoError(err)

		_, err = s.svc.Publish(s.ctx, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("unknown policy", func() {
		_, err := s.svc.Publish(s.ctx, id.NewPolicyID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Equal(float64(2), promtest.ToFloat64(s.metrics.Published))
	s.Contains(s.actions(), audit.EventPolicyPublished)
}

func (s *ServiceSuite) TestUpdateCannotActivate() {
	p, err := s.svc.Create(s.ctx, &models.CreateRequest{Name: "Empty", Type: string(jmodels.TemplateGDPR)})
	s.Require().NoError(err)

	active := "active"
	req := &models.UpdateRequest{Status: &active}
	s.Require().NoError(req.Validate())

	_, err = s.svc.Update(s.ctx, p.ID, req)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	stored, err := s.svc.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, stored.Status)
	s.Equal(1, stored.Version)
	s.Nil(stored.PublishedAt)
	s.NotContains(s.actions(), audit.EventPolicyUpdated)
	s.NotContains(s.actions(), audit.EventPolicyPublished)
}

func (s *ServiceSuite) TestDuplicate() {
	p := s.create("Privacy")
	_, err := s.svc.Publish(s.ctx, p.ID)
	s.Require().NoError(err)

	dup, err := s.svc.Duplicate(s.ctx, p.ID)
	s.Require().NoError(err)
	s.NotEqual(p.ID, dup.ID)
	s.Equal("Privacy (Copy)", dup.Name)
	s.Equal(models.StatusDraft, dup.Status)
	s.Equal(1, dup.Version)
	s.Nil(dup.PublishedAt)

	original, err := s.svc.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, original.Status)

	_, err = s.svc.Duplicate(s.ctx, id.NewPolicyID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDelete() {
	p := s.create("Privacy")
	s.Require().NoError(s.svc.Delete(s.ctx, p.ID))

	_, err := s.svc.Get(s.ctx, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.svc.Delete(s.ctx, p.ID), dErrors.CodeNotFound))
	s.Contains(s.actions(), audit.EventPolicyDeleted)
}

func (s *ServiceSuite) TestRecentDefaultsLimit() {
	for i := range 7 {
		ctx := requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i)*time.Minute))
		_, err := s.svc.Create(ctx, &models.CreateRequest{Name: "p", Type: string(jmodels.TemplateCCPA), Content: "x"})
		s.Require().NoError(err)
	}
	recent, err := s.svc.Recent(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(recent, DefaultRecentLimit)
	s.Equal(s.now.Add(6*time.Minute), recent[0].UpdatedAt)
}

func (s *ServiceSuite) TestStats() {
	p := s.create("A")
	s.create("B")
	_, err := s.svc.Publish(s.ctx, p.ID)
	s.Require().NoError(err)

	stats, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{Total: 2, Active: 1, Draft: 1}, stats)
}

func TestStoreFailuresAreInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	svc := New(st, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()
	boom := errors.New("connection reset")

	st.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, boom)
	_, err := svc.List(ctx, models.Filter{})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("List error = %v, want internal", err)
	}

	st.EXPECT().Stats(gomock.Any()).Return(models.Stats{}, boom)
	if _, err := svc.Stats(ctx); !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("Stats error = %v, want internal", err)
	}

	st.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
	_, err = svc.Create(ctx, &models.CreateRequest{Name: "n", Type: string(jmodels.TemplateGDPR)})
	if !dErrors.HasCode(err, dErrors.CodeConflict) {
		t.Fatalf("Create error = %v, want conflict", err)
	}
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockAuditPublisher(ctrl)
	svc := New(store.NewInMemory(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(pub),
	)

	pub.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		if e.Action != audit.EventPolicyCreated || e.SubjectType != "policy" {
			t.Errorf("unexpected event %+v", e)
		}
		return errors.New("broker down")
	})

	if _, err := svc.Create(context.Background(), &models.CreateRequest{Name: "n", Type: string(jmodels.TemplateGDPR)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}
