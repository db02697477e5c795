//go:build integration

package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"compliance-panel/internal/client/models"
	"compliance-panel/internal/client/store"
	"compliance-panel/internal/platform/config"
	"compliance-panel/internal/platform/postgres"
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
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE clients`)
	s.Require().NoError(err)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newClient(name, email string) *models.Client {
	start := s.now.Add(-24 * time.Hour)
	c, err := models.NewClient(id.NewClientID(), &models.CreateRequest{
		Name:     name,
		Email:    email,
		Website:  "https://" + name + ".test",
		Industry: "Healthcare",
		Country:  "DE",
		Subscription: models.SubscriptionRequest{
			Plan:      "Enterprise",
			Status:    "trial",
			StartDate: &start,
		},
	}, s.now)
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	c := s.newClient("acme", "ops@acme.test")
	s.Require().NoError(s.store.Create(s.ctx, c))

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Email, found.Email)
	s.Equal(c.Country, found.Country)
	s.Equal(c.Subscription.Plan, found.Subscription.Plan)
	s.Require().NotNil(found.Subscription.StartDate)
	s.True(c.Subscription.StartDate.Equal(*found.Subscription.StartDate))
	s.Nil(found.Subscription.EndDate)
	s.Require().NotNil(found.LastActive)

	_, err = s.store.FindByID(s.ctx, id.NewClientID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEmailUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newClient("acme", "ops@acme.test")))
	s.ErrorIs(s.store.Create(s.ctx, s.newClient("other", "OPS@acme.test")), sentinel.ErrConflict)

	second := s.newClient("beta", "hello@beta.test")
	s.Require().NoError(s.store.Create(s.ctx, second))
	_, err := s.store.Execute(s.ctx, second.ID, func(*models.Client) error { return nil }, func(c *models.Client) {
		c.Email = "Ops@Acme.test"
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestListFiltersAndRecent() {
	a := s.newClient("alpha", "a@alpha.test")
	b := s.newClient("beta", "b@beta.test")
	b.CreatedAt = s.now.Add(time.Hour)
	b.UpdatedAt = s.now.Add(time.Hour)
	b.Subscription.Plan = "Starter"
	s.Require().NoError(s.store.Create(s.ctx, a))
	s.Require().NoError(s.store.Create(s.ctx, b))

	listed, err := s.store.List(s.ctx, models.Filter{Plan: "enterprise"})
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(a.ID, listed[0].ID)

	bySearch, err := s.store.List(s.ctx, models.Filter{Search: "beta.test"})
	s.Require().NoError(err)
	s.Require().Len(bySearch, 1)
	s.Equal(b.ID, bySearch[0].ID)

	byIndustry, err := s.store.List(s.ctx, models.Filter{Industry: "HEALTHCARE"})
	s.Require().NoError(err)
	s.Len(byIndustry, 2)

	recent, err := s.store.Recent(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(b.ID, recent[0].ID)
}

func (s *PostgresStoreSuite) TestActivateDeleteAndStats() {
	c := s.newClient("acme", "ops@acme.test")
	s.Require().NoError(s.store.Create(s.ctx, c))

	updated, err := s.store.Execute(s.ctx, c.ID, func(*models.Client) error { return nil }, func(c *models.Client) {
		c.Activate(s.now.Add(time.Minute))
	})
	s.Require().NoError(err)
	s.Equal(models.StatusActive, updated.Status)
	s.Equal("active", updated.Subscription.Status)

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{Total: 1, Active: 1}, stats)

	s.Require().NoError(s.store.Delete(s.ctx, c.ID))
	s.ErrorIs(s.store.Delete(s.ctx, c.ID), sentinel.ErrNotFound)
}
