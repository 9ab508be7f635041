package store

import (
	"context"
	"fmt"
	"sync"

	"gdprkv/internal/subject/models"
	"gdprkv/pkg/platform/sentinel"
)

// InMemory is a subject store for tests and single-process deployments.
type InMemory struct {
	mu       sync.RWMutex
	subjects map[string]models.Subject
}

func NewInMemory() *InMemory {
	return &InMemory{subjects: make(map[string]models.Subject)}
}

func (s *InMemory) FindByID(_ context.Context, subjectID string) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subj, ok := s.subjects[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := subj.Clone()
	return &out, nil
}

func (s *InMemory) Exists(_ context.Context, subjectID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subjects[subjectID]
	return ok, nil
}

// Create fails with sentinel.ErrAlreadyExists when the id is taken.
func (s *InMemory) Create(_ context.Context, subj *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[subj.SubjectID]; ok {
		return fmt.Errorf("create subject %s: %w", subj.SubjectID, sentinel.ErrAlreadyExists)
	}
	s.subjects[subj.SubjectID] = subj.Clone()
	return nil
}

// Update replaces the subject if it is still at expectedVersion.
func (s *InMemory) Update(_ context.Context, subj *models.Subject, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.subjects[subj.SubjectID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("update subject %s: version %d, expected %d: %w", subj.SubjectID, cur.Version, expectedVersion, sentinel.ErrConflict)
	}
	s.subjects[subj.SubjectID] = subj.Clone()
	return nil
}
