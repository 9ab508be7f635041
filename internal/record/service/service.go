package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	policymodels "gdprkv/internal/policy/models"
	"gdprkv/internal/record/metrics"
	"gdprkv/internal/record/models"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/sentinel"
	"gdprkv/pkg/requestcontext"
)

// Store persists records. Save must fail with sentinel.ErrConflict when the
// stored version differs from expectedVersion (0: record must not exist).
type Store interface {
	FindByKey(ctx context.Context, subjectID, recordKey string) (*models.Record, error)
	FindAllBySubject(ctx context.Context, subjectID string) ([]models.Record, error)
	Save(ctx context.Context, record *models.Record, expectedVersion int64) error
}

// SubjectChecker reports whether a subject exists.
type SubjectChecker interface {
	Exists(ctx context.Context, subjectID string) (bool, error)
}

// PolicyLookup resolves a purpose to its retention policy, returning
// sentinel.ErrNotFound for unknown purposes.
type PolicyLookup interface {
	FindByPurpose(ctx context.Context, purpose string) (*policymodels.Policy, error)
}

// Lifecycle applies retention policy to record writes and performs the
// tombstone transition. It does not write audit events; callers bracket
// each operation with requested and outcome events.
type Lifecycle struct {
	records  Store
	subjects SubjectChecker
	policies PolicyLookup
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

type Option func(*Lifecycle)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Lifecycle) {
		l.metrics = m
	}
}

// WithClock fixes the time source. Without it the request time from the
// context is used.
func WithClock(clock func() time.Time) Option {
	return func(l *Lifecycle) {
		l.clock = clock
	}
}

func New(records Store, subjects SubjectChecker, policies PolicyLookup, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		records:  records,
		subjects: subjects,
		policies: policies,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lifecycle) now(ctx context.Context) int64 {
	if l.clock != nil {
		return l.clock().UnixMilli()
	}
	return requestcontext.Now(ctx).UnixMilli()
}

// PutInput is a record write.
type PutInput struct {
	SubjectID string
	RecordKey string
	Purpose   string
	Value     json.RawMessage
	RequestID string
}

func (in *PutInput) Validate() error {
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.RecordKey = strings.TrimSpace(in.RecordKey)
	in.Purpose = strings.TrimSpace(in.Purpose)
	switch {
	case in.SubjectID == "":
		return dErrors.New(dErrors.CodeValidation, "subject id is required")
	case in.RecordKey == "":
		return dErrors.New(dErrors.CodeValidation, "record key is required")
	case in.Purpose == "":
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	case strings.TrimSpace(in.RequestID) == "":
		return dErrors.New(dErrors.CodeValidation, "request id is required")
	}
	if len(in.Value) == 0 {
		in.Value = json.RawMessage("null")
	}
	if !json.Valid(in.Value) {
		return dErrors.New(dErrors.CodeValidation, "value must be valid JSON")
	}
	return nil
}

// PutRecord creates the record at version 1 or writes the next version.
// Retention comes from the policy in force now. A tombstoned record is
// brought back to active.
func (l *Lifecycle) PutRecord(ctx context.Context, in PutInput) (*models.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := l.requireSubject(ctx, in.SubjectID); err != nil {
		return nil, err
	}
	policy, err := l.resolvePolicy(ctx, in.Purpose)
	if err != nil {
		return nil, err
	}

	existing, err := l.records.FindByKey(ctx, in.SubjectID, in.RecordKey)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}

	now := l.now(ctx)
	var (
		next            models.Record
		expectedVersion int64
	)
	if existing != nil {
		next = existing.Clone()
		expectedVersion = existing.Version
	} else {
		next = models.Record{
			SubjectID: in.SubjectID,
			RecordKey: in.RecordKey,
			CreatedAt: now,
		}
	}
	next.Purpose = in.Purpose
	next.Value = in.Value
	next.UpdatedAt = now
	next.Version = expectedVersion + 1
	next.RequestID = in.RequestID
	next.RetentionDays = policy.RetentionDays
	next.ClearTombstone()

	if err := l.save(ctx, &next, expectedVersion); err != nil {
		return nil, err
	}
	l.metrics.IncrementWritten(expectedVersion == 0)
	return &next, nil
}

// DeleteRecord tombstones the record. A record that is already tombstoned
// is returned unchanged and tombstoned reports false.
func (l *Lifecycle) DeleteRecord(ctx context.Context, subjectID, recordKey, requestID string) (rec *models.Record, tombstoned bool, err error) {
	subjectID = strings.TrimSpace(subjectID)
	recordKey = strings.TrimSpace(recordKey)
	if subjectID == "" || recordKey == "" || strings.TrimSpace(requestID) == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "subject id, record key and request id are required")
	}
	if err := l.requireSubject(ctx, subjectID); err != nil {
		return nil, false, err
	}

	existing, err := l.GetRecord(ctx, subjectID, recordKey)
	if err != nil {
		return nil, false, err
	}
	if existing.Tombstoned {
		return existing, false, nil
	}

	policy, err := l.resolvePolicy(ctx, existing.Purpose)
	if err != nil {
		return nil, false, err
	}

	next := existing.Clone()
	next.Tombstone(l.now(ctx), policy.RetentionDays, requestID)
	if err := l.save(ctx, &next, existing.Version); err != nil {
		return nil, false, err
	}
	l.metrics.IncrementTombstoned()
	return &next, true, nil
}

// GetRecord returns one record, tombstoned or not.
func (l *Lifecycle) GetRecord(ctx context.Context, subjectID, recordKey string) (*models.Record, error) {
	rec, err := l.records.FindByKey(ctx, subjectID, recordKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeRecordNotFound, "record not found: "+subjectID+"/"+recordKey)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}
	return rec, nil
}

// ListRecords returns the subject's records ordered by key.
func (l *Lifecycle) ListRecords(ctx context.Context, subjectID string) ([]models.Record, error) {
	if err := l.requireSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	recs, err := l.records.FindAllBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	return recs, nil
}

func (l *Lifecycle) requireSubject(ctx context.Context, subjectID string) error {
	ok, err := l.subjects.Exists(ctx, subjectID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	if !ok {
		return dErrors.New(dErrors.CodeSubjectNotFound, "subject not found: "+subjectID)
	}
	return nil
}

func (l *Lifecycle) resolvePolicy(ctx context.Context, purpose string) (*policymodels.Policy, error) {
	policy, err := l.policies.FindByPurpose(ctx, purpose)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidPurpose, "no retention policy for purpose: "+purpose)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve retention policy")
	}
	return policy, nil
}

func (l *Lifecycle) save(ctx context.Context, rec *models.Record, expectedVersion int64) error {
	err := l.records.Save(ctx, rec, expectedVersion)
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrConflict) {
		l.metrics.IncrementVersionConflict()
		l.logger.WarnContext(ctx, "record version conflict",
			"subject_id", rec.SubjectID,
			"record_key", rec.RecordKey,
			"expected_version", expectedVersion,
		)
		return dErrors.Wrap(err, dErrors.CodeVersionConflict, "record was modified concurrently")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save record")
}
