package store

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"gdprkv/internal/audit/models"
	"gdprkv/pkg/platform/sentinel"
)

// InMemory keeps each subject's chain sorted by TsUlid. It enforces the same
// link uniqueness as the Postgres schema.
type InMemory struct {
	mu     sync.RWMutex
	events map[string][]models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[string][]models.Event)}
}

// Append stores an event. It fails with sentinel.ErrConflict when the subject
// already has an event with the same TsUlid or PrevHash.
func (s *InMemory) Append(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := s.events[event.SubjectID]
	for i := range chain {
		if chain[i].TsUlid == event.TsUlid {
			return fmt.Errorf("append audit event %s: %w", event.TsUlid, sentinel.ErrConflict)
		}
		if chain[i].PrevHash == event.PrevHash {
			return fmt.Errorf("append audit event: prev_hash already linked: %w", sentinel.ErrConflict)
		}
	}

	idx := sort.Search(len(chain), func(i int) bool { return chain[i].TsUlid > event.TsUlid })
	chain = append(chain, models.Event{})
	copy(chain[idx+1:], chain[idx:])
	chain[idx] = cloneEvent(event)
	s.events[event.SubjectID] = chain
	return nil
}

func (s *InMemory) FindLatest(_ context.Context, subjectID string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.events[subjectID]
	if len(chain) == 0 {
		return nil, sentinel.ErrNotFound
	}
	e := cloneEvent(&chain[len(chain)-1])
	return &e, nil
}

func (s *InMemory) ListBySubject(_ context.Context, subjectID string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.events[subjectID]
	out := make([]models.Event, len(chain))
	for i := range chain {
		out[i] = cloneEvent(&chain[i])
	}
	return out, nil
}

// FindOlderThan returns events with Timestamp < cutoffMillis across all subjects.
func (s *InMemory) FindOlderThan(_ context.Context, cutoffMillis int64) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Event
	for _, chain := range s.events {
		for i := range chain {
			if chain[i].Timestamp < cutoffMillis {
				out = append(out, cloneEvent(&chain[i]))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, subjectID, tsUlid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chain := s.events[subjectID]
	for i := range chain {
		if chain[i].TsUlid == tsUlid {
			s.events[subjectID] = append(chain[:i], chain[i+1:]...)
			if len(s.events[subjectID]) == 0 {
				delete(s.events, subjectID)
			}
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// ListSubjects returns every subject with at least one event, sorted.
func (s *InMemory) ListSubjects(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.events))
	for id := range s.events {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func cloneEvent(e *models.Event) models.Event {
	out := *e
	if e.Details != nil {
		out.Details = maps.Clone(e.Details)
	}
	return out
}
