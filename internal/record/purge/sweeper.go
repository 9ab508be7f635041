// Package purge physically deletes tombstoned records whose retention has
// elapsed.
//
// Each run scans the purge-due index one hourly bucket at a time, covering
// the current hour and the previous lookbackHours hours, so a missed run is
// caught up by the next one as long as the gap is within the lookback.
// Candidates are re-validated before deletion; the index only nominates.
package purge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gdprkv/internal/record/metrics"
	"gdprkv/internal/record/models"
)

const jobRequestIDPrefix = "purge-job-"

// ErrAlreadyRunning is returned when Run is called while a run is in flight.
var ErrAlreadyRunning = errors.New("purge sweeper already running")

// Store is the slice of the record store the sweeper needs. Delete must not
// remove a record whose version differs from the one passed in.
type Store interface {
	FindDueForPurge(ctx context.Context, bucket string, cutoff int64) ([]models.Record, error)
	Delete(ctx context.Context, record *models.Record) error
}

// Auditor writes the purge events to the subject's audit chain.
type Auditor interface {
	RecordPurgeCandidateIdentified(ctx context.Context, subjectID, recordKey, purpose, jobRequestID string, purgeDueAt int64) error
	RecordPurgeCandidateSuccessful(ctx context.Context, subjectID, recordKey, purpose, jobRequestID string) error
	RecordPurgeCandidateFailed(ctx context.Context, subjectID, recordKey, purpose, jobRequestID string, cause error) error
}

// BucketResult counts what happened in one bucket.
type BucketResult struct {
	Bucket     string `json:"bucket"`
	Candidates int    `json:"candidates"`
	Skipped    int    `json:"skipped"`
	Purged     int    `json:"purged"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

// RunResult summarizes one sweep.
type RunResult struct {
	JobRequestID string         `json:"job_request_id"`
	Buckets      int            `json:"buckets"`
	Candidates   int            `json:"candidates"`
	Skipped      int            `json:"skipped"`
	Purged       int            `json:"purged"`
	Failed       int            `json:"failed"`
	Duration     time.Duration  `json:"duration_ns"`
	PerBucket    []BucketResult `json:"per_bucket"`
}

// Sweeper runs purge passes. Runs never overlap.
type Sweeper struct {
	store         Store
	audit         Auditor
	lookbackHours int
	logger        *slog.Logger
	metrics       *metrics.Metrics
	clock         func() time.Time
	running       atomic.Bool
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		s.clock = clock
	}
}

func New(store Store, audit Auditor, lookbackHours int, opts ...Option) (*Sweeper, error) {
	if store == nil || audit == nil {
		return nil, errors.New("purge sweeper requires a record store and an auditor")
	}
	if lookbackHours < 0 {
		return nil, fmt.Errorf("lookback hours must not be negative, got %d", lookbackHours)
	}
	s := &Sweeper{
		store:         store,
		audit:         audit,
		lookbackHours: lookbackHours,
		logger:        slog.Default(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run performs one sweep. Failures on a bucket or a record are logged and
// counted; the sweep always visits every bucket.
func (s *Sweeper) Run(ctx context.Context) (RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return RunResult{}, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, span := otel.Tracer("gdprkv/internal/record").Start(ctx, "purge.sweep")
	defer span.End()

	start := s.clock()
	now := start.UnixMilli()
	buckets := models.LookbackBuckets(now, s.lookbackHours)
	result := RunResult{
		JobRequestID: jobRequestIDPrefix + uuid.NewString(),
		Buckets:      len(buckets),
		PerBucket:    make([]BucketResult, 0, len(buckets)),
	}
	logger := s.logger.With("job_request_id", result.JobRequestID)

	logger.InfoContext(ctx, "starting purge sweep",
		"lookback_hours", s.lookbackHours,
		"buckets", len(buckets),
	)

	for _, bucket := range buckets {
		br := s.sweepBucket(ctx, logger, bucket, now, result.JobRequestID)
		result.Candidates += br.Candidates
		result.Skipped += br.Skipped
		result.Purged += br.Purged
		result.Failed += br.Failed
		result.PerBucket = append(result.PerBucket, br)
	}

	result.Duration = s.clock().Sub(start)
	s.metrics.ObservePurgeRun(result.Candidates, result.Skipped, result.Purged, result.Failed, result.Duration)
	span.SetAttributes(
		attribute.String("job_request_id", result.JobRequestID),
		attribute.Int("candidates", result.Candidates),
		attribute.Int("purged", result.Purged),
		attribute.Int("failed", result.Failed),
	)
	logger.InfoContext(ctx, "completed purge sweep",
		"candidates", result.Candidates,
		"skipped", result.Skipped,
		"purged", result.Purged,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *Sweeper) sweepBucket(ctx context.Context, logger *slog.Logger, bucket string, now int64, jobID string) BucketResult {
	br := BucketResult{Bucket: bucket}

	candidates, err := s.store.FindDueForPurge(ctx, bucket, now)
	if err != nil {
		br.Error = err.Error()
		logger.ErrorContext(ctx, "failed to query purge bucket", "bucket", bucket, "error", err)
		return br
	}
	br.Candidates = len(candidates)
	if len(candidates) == 0 {
		logger.DebugContext(ctx, "no records due in bucket", "bucket", bucket)
		return br
	}
	logger.InfoContext(ctx, "records due for purge", "bucket", bucket, "candidates", len(candidates))

	for i := range candidates {
		rec := &candidates[i]
		if !rec.Purgeable(now) {
			br.Skipped++
			logger.WarnContext(ctx, "skipping purge candidate that is not safe to delete",
				"bucket", bucket,
				"subject_id", rec.SubjectID,
				"record_key", rec.RecordKey,
				"tombstoned", rec.Tombstoned,
				"purge_due_at", rec.PurgeDueAt,
			)
			continue
		}
		if err := s.purgeOne(ctx, rec, jobID); err != nil {
			br.Failed++
			logger.ErrorContext(ctx, "failed to purge record",
				"bucket", bucket,
				"subject_id", rec.SubjectID,
				"record_key", rec.RecordKey,
				"error", err,
			)
			continue
		}
		br.Purged++
	}
	return br
}

// purgeOne audits, deletes and audits again. Without the "identified" event
// the record is left in place so the chain never misses a deletion.
func (s *Sweeper) purgeOne(ctx context.Context, rec *models.Record, jobID string) error {
	if err := s.audit.RecordPurgeCandidateIdentified(ctx, rec.SubjectID, rec.RecordKey, rec.Purpose, jobID, *rec.PurgeDueAt); err != nil {
		return fmt.Errorf("audit purge candidate: %w", err)
	}

	if err := s.store.Delete(ctx, rec); err != nil {
		if auditErr := s.audit.RecordPurgeCandidateFailed(ctx, rec.SubjectID, rec.RecordKey, rec.Purpose, jobID, err); auditErr != nil {
			s.logger.ErrorContext(ctx, "failed to audit purge failure",
				"subject_id", rec.SubjectID,
				"record_key", rec.RecordKey,
				"error", auditErr,
			)
		}
		return fmt.Errorf("delete record: %w", err)
	}

	if err := s.audit.RecordPurgeCandidateSuccessful(ctx, rec.SubjectID, rec.RecordKey, rec.Purpose, jobID); err != nil {
		// the record is gone; only the outcome event is missing
		s.logger.ErrorContext(ctx, "failed to audit purge success",
			"subject_id", rec.SubjectID,
			"record_key", rec.RecordKey,
			"job_request_id", jobID,
			"error", err,
		)
	}
	return nil
}
