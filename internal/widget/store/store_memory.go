package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"compliance-panel/internal/widget/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
)

// InMemory keeps widgets and their impression breakdowns in process memory.
type InMemory struct {
	mu          sync.RWMutex
	widgets     map[id.WidgetID]*models.Widget
	impressions map[id.WidgetID]models.ImpressionBreakdown
}

func NewInMemory() *InMemory {
	return &InMemory{
		widgets:     make(map[id.WidgetID]*models.Widget),
		impressions: make(map[id.WidgetID]models.ImpressionBreakdown),
	}
}

func (s *InMemory) Create(_ context.Context, w *models.Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.widgets[w.ID]; exists {
		return sentinel.ErrConflict
	}
	s.widgets[w.ID] = w.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, widgetID id.WidgetID) (*models.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.widgets[widgetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return w.Clone(), nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Widget, 0, len(s.widgets))
	for _, w := range s.widgets {
		if filter.Matches(w) {
			out = append(out, w.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Widget) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) Recent(ctx context.Context, limit int) ([]*models.Widget, error) {
	all, err := s.List(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemory) Execute(_ context.Context, widgetID id.WidgetID, validate func(*models.Widget) error, mutate func(*models.Widget)) (*models.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.widgets[widgetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.widgets[widgetID] = working
	return working.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, widgetID id.WidgetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.widgets[widgetID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.widgets, widgetID)
	delete(s.impressions, widgetID)
	return nil
}

// RecordImpression counts one render of an active widget. Missing and
// inactive widgets yield sentinel.ErrNotFound.
func (s *InMemory) RecordImpression(_ context.Context, widgetID id.WidgetID, class models.DeviceClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.widgets[widgetID]
	if !ok || !w.IsActive() {
		return sentinel.ErrNotFound
	}
	w.Impressions++
	breakdown, ok := s.impressions[widgetID]
	if !ok {
		breakdown = make(models.ImpressionBreakdown)
		s.impressions[widgetID] = breakdown
	}
	breakdown[class]++
	return nil
}

func (s *InMemory) Impressions(_ context.Context, widgetID id.WidgetID) (models.ImpressionBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.widgets[widgetID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	out := maps.Clone(s.impressions[widgetID])
	if out == nil {
		out = models.ImpressionBreakdown{}
	}
	return out, nil
}

func (s *InMemory) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats models.Stats
	for _, w := range s.widgets {
		stats.Total++
		stats.Impressions += w.Impressions
		switch w.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusDraft:
			stats.Draft++
		case models.StatusInactive:
			stats.Inactive++
		}
	}
	return stats, nil
}
