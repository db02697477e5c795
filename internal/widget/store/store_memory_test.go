package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newWidget(name string, active bool, updated time.Duration) *models.Widget {
	w, err := models.NewWidget(id.NewWidgetID(), name, models.TypeCookieBanner, "", "", models.Config{}, s.now)
	s.Require().NoError(err)
	if active {
		w.Deploy(s.now)
	}
	w.UpdatedAt = s.now.Add(updated)
	s.Require().NoError(s.store.Create(s.ctx, w))
	return w
}

func (s *InMemoryStoreSuite) TestCRUD() {
	w := s.newWidget("Banner", false, 0)
	s.ErrorIs(s.store.Create(s.ctx, w), sentinel.ErrConflict)

	found, err := s.store.FindByID(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal("Banner", found.Name)

	updated, err := s.store.Execute(s.ctx, w.ID,
		func(*models.Widget) error { return nil },
		func(w *models.Widget) { w.Toggle(s.now) })
	s.Require().NoError(err)
	s.Equal(models.StatusActive, updated.Status)

	s.Require().NoError(s.store.Delete(s.ctx, w.ID))
	_, err = s.store.FindByID(s.ctx, w.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, w.ID), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListAndRecent() {
	a := s.newWidget("Alpha banner", true, time.Minute)
	b := s.newWidget("Beta center", false, 2*time.Minute)

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(b.ID, all[0].ID)

	active, err := s.store.List(s.ctx, models.Filter{Status: models.StatusActive})
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(a.ID, active[0].ID)

	recent, err := s.store.Recent(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(b.ID, recent[0].ID)
}

func (s *InMemoryStoreSuite) TestRecordImpression() {
	active := s.newWidget("Live", true, 0)
	draft := s.newWidget("Draft", false, 0)

	s.Require().NoError(s.store.RecordImpression(s.ctx, active.ID, models.DeviceMobile))
	s.Require().NoError(s.store.RecordImpression(s.ctx, active.ID, models.DeviceMobile))
	s.Require().NoError(s.store.RecordImpression(s.ctx, active.ID, models.DeviceDesktop))

	s.ErrorIs(s.store.RecordImpression(s.ctx, draft.ID, models.DeviceDesktop), sentinel.ErrNotFound)
	s.ErrorIs(s.store.RecordImpression(s.ctx, id.NewWidgetID(), models.DeviceDesktop), sentinel.ErrNotFound)

	breakdown, err := s.store.Impressions(s.ctx, active.ID)
	s.Require().NoError(err)
	s.Equal(models.ImpressionBreakdown{models.DeviceMobile: 2, models.DeviceDesktop: 1}, breakdown)

	empty, err := s.store.Impressions(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Empty(empty)

	found, _ := s.store.FindByID(s.ctx, active.ID)
	s.Equal(int64(3), found.Impressions)

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{Total: 2, Active: 1, Draft: 1, Impressions: 3}, stats)
}
