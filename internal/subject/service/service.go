// Package service creates subjects and orchestrates subject erasure.
//
// Erasure marks the subject and then tombstones each of its live records
// through the record lifecycle. The loop is not transactional: a failure on
// one record leaves the earlier ones tombstoned and the subject marked. Each
// tombstone is idempotent, so the caller recovers by repeating the request.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	recordmodels "gdprkv/internal/record/models"
	"gdprkv/internal/subject/metrics"
	"gdprkv/internal/subject/models"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/sentinel"
	"gdprkv/pkg/requestcontext"
)

// Store persists subjects. Create returns sentinel.ErrAlreadyExists for a
// taken id; Update returns sentinel.ErrConflict when the stored version is
// not expectedVersion.
type Store interface {
	FindByID(ctx context.Context, subjectID string) (*models.Subject, error)
	Exists(ctx context.Context, subjectID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject, expectedVersion int64) error
}

// Records is the part of the record lifecycle erasure drives.
type Records interface {
	ListRecords(ctx context.Context, subjectID string) ([]recordmodels.Record, error)
	DeleteRecord(ctx context.Context, subjectID, recordKey, requestID string) (*recordmodels.Record, bool, error)
}

type Service struct {
	subjects Store
	records  Records
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the request time taken from the context.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func New(subjects Store, records Records, opts ...Option) *Service {
	s := &Service{
		subjects: subjects,
		records:  records,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now(ctx context.Context) int64 {
	if s.clock != nil {
		return s.clock().UnixMilli()
	}
	return requestcontext.Now(ctx).UnixMilli()
}

// CreateSubject registers a new subject at version 1. Subjects are created
// once; a second create for the same id is SUBJECT_ALREADY_EXISTS.
func (s *Service) CreateSubject(ctx context.Context, subjectID, residency, requestID string) (*models.Subject, error) {
	subj, err := models.NewSubject(subjectID, residency, requestID, s.now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.subjects.Create(ctx, subj); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeSubjectAlreadyExists, "subject already exists: "+subj.SubjectID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create subject")
	}
	s.metrics.IncrementCreated()
	return subj, nil
}

func (s *Service) GetSubject(ctx context.Context, subjectID string) (*models.Subject, error) {
	subj, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found: "+subjectID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	return subj, nil
}

func (s *Service) Exists(ctx context.Context, subjectID string) (bool, error) {
	return s.subjects.Exists(ctx, subjectID)
}

// ErasureResult is the outcome of DeleteSubject.
type ErasureResult struct {
	Subject        *models.Subject
	RecordsDeleted int
	TotalRecords   int
}

// DeleteSubject marks the subject for erasure and tombstones every live
// record. Already tombstoned records count toward TotalRecords only.
func (s *Service) DeleteSubject(ctx context.Context, subjectID, requestID string) (result *ErasureResult, err error) {
	tombstoned := 0
	defer func() { s.metrics.ObserveErasure(tombstoned, err) }()

	subj, err := s.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	updated := subj.Clone()
	updated.MarkErasure(s.now(ctx), requestID)
	if err := s.subjects.Update(ctx, &updated, subj.Version); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found: "+subjectID)
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.Wrap(err, dErrors.CodeVersionConflict, "subject changed concurrently")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark subject for erasure")
	}

	recs, err := s.records.ListRecords(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if rec.Tombstoned {
			continue
		}
		if _, _, err := s.records.DeleteRecord(ctx, subjectID, rec.RecordKey, requestID); err != nil {
			s.logger.ErrorContext(ctx, "subject erasure stopped",
				"request_id", requestID,
				"subject_id", subjectID,
				"record_key", rec.RecordKey,
				"tombstoned", tombstoned,
				"total_records", len(recs),
				"error", err,
			)
			return nil, fmt.Errorf("tombstone record %s: %w", rec.RecordKey, err)
		}
		tombstoned++
	}

	s.logger.InfoContext(ctx, "subject marked for erasure",
		"request_id", requestID,
		"subject_id", subjectID,
		"tombstoned", tombstoned,
		"total_records", len(recs),
	)
	return &ErasureResult{
		Subject:        &updated,
		RecordsDeleted: tombstoned,
		TotalRecords:   len(recs),
	}, nil
}
