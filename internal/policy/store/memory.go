package store

import (
	"context"
	"sort"
	"sync"

	"gdprkv/internal/policy/models"
	"gdprkv/pkg/platform/sentinel"
)

// InMemory is a policy store for tests and single-process deployments.
type InMemory struct {
	mu       sync.RWMutex
	policies map[string]models.Policy
}

func NewInMemory() *InMemory {
	return &InMemory{policies: make(map[string]models.Policy)}
}

func (s *InMemory) FindByPurpose(_ context.Context, purpose string) (*models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[purpose]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) Upsert(_ context.Context, policy *models.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.Purpose] = *policy
	return nil
}

// List returns all policies ordered by purpose.
func (s *InMemory) List(_ context.Context) ([]models.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out, nil
}
