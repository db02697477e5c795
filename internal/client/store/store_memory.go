package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"compliance-panel/internal/client/models"
	id "compliance-panel/pkg/domain"
	"compliance-panel/pkg/platform/sentinel"
)

// InMemory is a process-local client store. Emails are unique ignoring case.
type InMemory struct {
	mu      sync.RWMutex
	clients map[id.ClientID]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[id.ClientID]*models.Client)}
}

func (s *InMemory) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[c.ID]; exists {
		return sentinel.ErrConflict
	}
	if s.emailTakenLocked(c) {
		return sentinel.ErrConflict
	}
	s.clients[c.ID] = c.Clone()
	return nil
}

func (s *InMemory) emailTakenLocked(c *models.Client) bool {
	key := c.EmailKey()
	for otherID, other := range s.clients {
		if otherID != c.ID && other.EmailKey() == key {
			return true
		}
	}
	return false
}

func (s *InMemory) FindByID(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// List returns matching clients, most recently updated first.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if filter.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Client) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// Recent returns the newest clients by creation time.
func (s *InMemory) Recent(_ context.Context, limit int) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Client) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Execute validates and mutates a client under the store lock. A mutation
// that collides with another client's email is rejected with ErrConflict.
func (s *InMemory) Execute(_ context.Context, clientID id.ClientID, validate func(*models.Client) error, mutate func(*models.Client)) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	if s.emailTakenLocked(working) {
		return nil, sentinel.ErrConflict
	}
	s.clients[clientID] = working
	return working.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.clients, clientID)
	return nil
}

func (s *InMemory) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats models.Stats
	for _, c := range s.clients {
		stats.Total++
		switch c.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusPending:
			stats.Pending++
		case models.StatusInactive:
			stats.Inactive++
		}
	}
	return stats, nil
}
