package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gdprkv/internal/record/models"
	"gdprkv/pkg/platform/sentinel"
)

type recordKey struct {
	subjectID string
	key       string
}

// InMemory keeps records in a map and answers the purge-due query with a scan.
type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[recordKey]models.Record)}
}

func (s *InMemory) FindByKey(_ context.Context, subjectID, key string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[recordKey{subjectID, key}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := r.Clone()
	return &out, nil
}

// FindAllBySubject returns the subject's records ordered by key.
func (s *InMemory) FindAllBySubject(_ context.Context, subjectID string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Record
	for k, r := range s.records {
		if k.subjectID == subjectID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordKey < out[j].RecordKey })
	return out, nil
}

// FindDueForPurge returns records in bucket with PurgeDueAt <= cutoff.
func (s *InMemory) FindDueForPurge(_ context.Context, bucket string, cutoff int64) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Record
	for _, r := range s.records {
		if r.PurgeBucket == bucket && r.PurgeDueAt != nil && *r.PurgeDueAt <= cutoff {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].PurgeDueAt < *out[j].PurgeDueAt })
	return out, nil
}

// Save writes rec if the stored version equals expectedVersion. An
// expectedVersion of 0 requires that no record exists yet.
func (s *InMemory) Save(_ context.Context, rec *models.Record, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey{rec.SubjectID, rec.RecordKey}
	current, exists := s.records[k]
	switch {
	case expectedVersion == 0 && exists:
		return fmt.Errorf("save record %s/%s: %w", rec.SubjectID, rec.RecordKey, sentinel.ErrConflict)
	case expectedVersion != 0 && (!exists || current.Version != expectedVersion):
		return fmt.Errorf("save record %s/%s: expected version %d: %w", rec.SubjectID, rec.RecordKey, expectedVersion, sentinel.ErrConflict)
	}
	s.records[k] = rec.Clone()
	return nil
}

// Delete removes rec if it is still at rec.Version.
func (s *InMemory) Delete(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := recordKey{rec.SubjectID, rec.RecordKey}
	current, exists := s.records[k]
	if !exists {
		return sentinel.ErrNotFound
	}
	if current.Version != rec.Version {
		return fmt.Errorf("delete record %s/%s: %w", rec.SubjectID, rec.RecordKey, sentinel.ErrConflict)
	}
	delete(s.records, k)
	return nil
}
