//go:build integration

package store_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	jmodels "compliance-panel/internal/jurisdiction/models"
	"compliance-panel/internal/platform/config"
	"compliance-panel/internal/platform/postgres"
	"compliance-panel/internal/policy/models"
	"compliance-panel/internal/policy/store"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
	"compliance-panel/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sqlx.DB
	store *store.PostgresStore
	ctx   context.Context
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	pg := containers.NewPostgresContainer(s.T())
	db, err := postgres.Open(s.ctx, config.DatabaseConfig{URL: pg.DSN, MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Minute})
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.db = db
	s.store = store.NewPostgres(db)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE policies`)
	s.Require().NoError(err)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newPolicy(name string) *models.Policy {
	p, err := models.NewPolicy(id.NewPolicyID(), name, "about "+name, jmodels.TemplateGDPR, "body", []string{"de", "fr"}, s.now)
	s.Require().NoError(err)
	return p
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	p := s.newPolicy("Privacy")
	s.Require().NoError(s.store.Create(s.ctx, p))

	found, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Name, found.Name)
	s.Equal([]string{"de", "fr"}, found.Regions)
	s.Equal(models.StatusDraft, found.Status)
	s.Nil(found.PublishedAt)
	s.True(p.CreatedAt.Equal(found.CreatedAt))

	s.ErrorIs(s.store.Create(s.ctx, p), sentinel.ErrConflict)

	_, err = s.store.FindByID(s.ctx, id.NewPolicyID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilters() {
	a := s.newPolicy("GDPR 100% notice")
	b := s.newPolicy("Cookies")
	b.Status = models.StatusActive
	b.UpdatedAt = s.now.Add(time.Minute)
	s.Require().NoError(s.store.Create(s.ctx, a))
	s.Require().NoError(s.store.Create(s.ctx, b))

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(b.ID, all[0].ID)

	active, err := s.store.List(s.ctx, models.Filter{Status: models.StatusActive})
	s.Require().NoError(err)
	s.Len(active, 1)

	literal, err := s.store.List(s.ctx, models.Filter{Search: "100%"})
	s.Require().NoError(err)
	s.Require().Len(literal, 1)
	s.Equal(a.ID, literal[0].ID)

	recent, err := s.store.Recent(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(recent, 1)
}

func (s *PostgresStoreSuite) TestConcurrentPublishBumpsVersionOnce() {
	p := s.newPolicy("Concurrent")
	s.Require().NoError(s.store.Create(s.ctx, p))

	const goroutines = 20
	var wg sync.WaitGroup
	var published atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(s.ctx, p.ID,
				func(p *models.Policy) error {
					if p.Status == models.StatusActive {
						return sentinel.ErrConflict
					}
					return nil
				},
				func(p *models.Policy) { p.ApplyPublish(s.now) })
			if err == nil {
				published.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), published.Load())
	found, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(2, found.Version)
	s.NotNil(found.PublishedAt)
}

func (s *PostgresStoreSuite) TestDeleteAndStats() {
	a := s.newPolicy("A")
	s.Require().NoError(s.store.Create(s.ctx, a))
	b := s.newPolicy("B")
	b.Status = models.StatusActive
	s.Require().NoError(s.store.Create(s.ctx, b))

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{Total: 2, Active: 1, Draft: 1}, stats)

	s.Require().NoError(s.store.Delete(s.ctx, a.ID))
	s.ErrorIs(s.store.Delete(s.ctx, a.ID), sentinel.ErrNotFound)
}
