package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	cmodels "compliance-panel/internal/client/models"
	"compliance-panel/internal/dashboard/models"
	pmodels "compliance-panel/internal/policy/models"
	wmodels "compliance-panel/internal/widget/models"
	dErrors "compliance-panel/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/service-mocks.go -package=mocks PolicySource,WidgetSource,ClientSource

// RecentLimit is how many items of each kind the overview lists.
const RecentLimit = 5

type PolicySource interface {
	Stats(ctx context.Context) (pmodels.Stats, error)
	Recent(ctx context.Context, limit int) ([]*pmodels.Policy, error)
}

type WidgetSource interface {
	Stats(ctx context.Context) (wmodels.Stats, error)
	Recent(ctx context.Context, limit int) ([]*wmodels.Widget, error)
}

type ClientSource interface {
	Stats(ctx context.Context) (cmodels.Stats, error)
	Recent(ctx context.Context, limit int) ([]*cmodels.Client, error)
}

// Service aggregates read-only views across modules. Each call fans out
// concurrently and fails as a whole if any source fails.
type Service struct {
	policies PolicySource
	widgets  WidgetSource
	clients  ClientSource
	logger   *slog.Logger
}

func New(policies PolicySource, widgets WidgetSource, clients ClientSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{policies: policies, widgets: widgets, clients: clients, logger: logger}
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)
	s.collectStats(gctx, g, &stats)
	if err := g.Wait(); err != nil {
		return models.Stats{}, s.fail(ctx, "dashboard stats", err)
	}
	stats.ComplianceRate = stats.Policies.ComplianceRate()
	return stats, nil
}

func (s *Service) Overview(ctx context.Context) (*models.Overview, error) {
	out := &models.Overview{}
	g, gctx := errgroup.WithContext(ctx)
	s.collectStats(gctx, g, &out.Stats)
	g.Go(func() (err error) {
		out.RecentPolicies, err = s.policies.Recent(gctx, RecentLimit)
		return err
	})
	g.Go(func() (err error) {
		out.RecentWidgets, err = s.widgets.Recent(gctx, RecentLimit)
		return err
	})
	g.Go(func() (err error) {
		out.RecentClients, err = s.clients.Recent(gctx, RecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "dashboard overview", err)
	}
	out.Stats.ComplianceRate = out.Stats.Policies.ComplianceRate()
	if out.RecentPolicies == nil {
		out.RecentPolicies = []*pmodels.Policy{}
	}
	if out.RecentWidgets == nil {
		out.RecentWidgets = []*wmodels.Widget{}
	}
	if out.RecentClients == nil {
		out.RecentClients = []*cmodels.Client{}
	}
	return out, nil
}

// collectStats schedules one goroutine per source; each writes a distinct field.
func (s *Service) collectStats(ctx context.Context, g *errgroup.Group, stats *models.Stats) {
	g.Go(func() (err error) {
		stats.Policies, err = s.policies.Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Widgets, err = s.widgets.Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Clients, err = s.clients.Stats(ctx)
		return err
	})
}

func (s *Service) fail(ctx context.Context, view string, err error) error {
	s.logger.WarnContext(ctx, "failed to build "+view, "error", err)
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build "+view)
}
