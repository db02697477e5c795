package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/policy/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	base  time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newPolicy(name string, status models.Status, updated time.Duration) *models.Policy {
	p, err := models.NewPolicy(id.NewPolicyID(), name, "desc "+name, jmodels.TemplateGDPR, "body", nil, s.base)
	s.Require().NoError(err)
	p.Status = status
	p.UpdatedAt = s.base.Add(updated)
	s.Require().NoError(s.store.Create(s.ctx, p))
	return p
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	p := s.newPolicy("Privacy", models.StatusDraft, 0)

	found, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Name, found.Name)

	s.Run("duplicate id conflicts", func() {
		s.ErrorIs(s.store.Create(s.ctx, p), sentinel.ErrConflict)
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewPolicyID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned values are copies", func() {
		found.Regions[0] = "zz"
		again, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.NotEqual("zz", again.Regions[0])
	})
}

func (s *InMemoryStoreSuite) TestListOrderAndFilter() {
	old := s.newPolicy("Old", models.StatusActive, time.Hour)
	newest := s.newPolicy("Newest", models.StatusDraft, 3*time.Hour)
	mid := s.newPolicy("Cookie notice", models.StatusActive, 2*time.Hour)

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Equal([]id.PolicyID{newest.ID, mid.ID, old.ID}, ids(all))

	active, err := s.store.List(s.ctx, models.Filter{Status: models.StatusActive})
	s.Require().NoError(err)
	s.Equal([]id.PolicyID{mid.ID, old.ID}, ids(active))

	search, err := s.store.List(s.ctx, models.Filter{Search: "cookie"})
	s.Require().NoError(err)
	s.Equal([]id.PolicyID{mid.ID}, ids(search))

	recent, err := s.store.Recent(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]id.PolicyID{newest.ID, mid.ID}, ids(recent))
}

func (s *InMemoryStoreSuite) TestExecute() {
	p := s.newPolicy("Privacy", models.StatusDraft, 0)

	s.Run("validate failure leaves policy untouched", func() {
		boom := errors.New("nope")
		_, err := s.store.Execute(s.ctx, p.ID,
			func(*models.Policy) error { return boom },
			func(p *models.Policy) { p.Name = "changed" })
		s.ErrorIs(err, boom)

		found, _ := s.store.FindByID(s.ctx, p.ID)
		s.Equal("Privacy", found.Name)
	})

	s.Run("mutation persists", func() {
		updated, err := s.store.Execute(s.ctx, p.ID,
			func(*models.Policy) error { return nil },
			func(p *models.Policy) { p.ApplyPublish(s.base.Add(time.Hour)) })
		s.Require().NoError(err)
		s.Equal(models.StatusActive, updated.Status)

		found, _ := s.store.FindByID(s.ctx, p.ID)
		s.Equal(2, found.Version)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Execute(s.ctx, id.NewPolicyID(),
			func(*models.Policy) error { return nil },
			func(*models.Policy) {})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDeleteAndStats() {
	a := s.newPolicy("A", models.StatusActive, 0)
	s.newPolicy("B", models.StatusDraft, 0)
	s.newPolicy("C", models.StatusArchived, 0)

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{Total: 3, Active: 1, Draft: 1, Archived: 1}, stats)

	s.Require().NoError(s.store.Delete(s.ctx, a.ID))
	s.ErrorIs(s.store.Delete(s.ctx, a.ID), sentinel.ErrNotFound)

	stats, err = s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.Total)
	s.Equal(0, stats.Active)
}

func ids(policies []*models.Policy) []id.PolicyID {
	out := make([]id.PolicyID, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.ID)
	}
	return out
}

func TestLikePattern(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"gdpr":    "%gdpr%",
		"100%":    `%100\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range cases {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
