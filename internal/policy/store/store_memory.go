package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"compliance-panel/internal/policy/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
)

// InMemory is a process-local policy store for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*models.Policy
}

func NewInMemory() *InMemory {
	return &InMemory{policies: make(map[id.PolicyID]*models.Policy)}
}

func (s *InMemory) Create(_ context.Context, p *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.policies[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.policies[p.ID] = p.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, policyID id.PolicyID) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// List returns matching policies, most recently updated first.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if filter.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	sortByUpdated(out)
	return out, nil
}

func (s *InMemory) Recent(ctx context.Context, limit int) ([]*models.Policy, error) {
	all, err := s.List(ctx, models.Filter{})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Execute validates and mutates a policy under the store lock.
func (s *InMemory) Execute(_ context.Context, policyID id.PolicyID, validate func(*models.Policy) error, mutate func(*models.Policy)) (*models.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.policies[policyID] = working
	return working.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[policyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.policies, policyID)
	return nil
}

func (s *InMemory) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats models.Stats
	for _, p := range s.policies {
		stats.Total++
		switch p.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusDraft:
			stats.Draft++
		case models.StatusArchived:
			stats.Archived++
		}
	}
	return stats, nil
}

// sortByUpdated orders newest first; ties break on id so listings are stable.
func sortByUpdated(policies []*models.Policy) {
	slices.SortFunc(policies, func(a, b *models.Policy) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
