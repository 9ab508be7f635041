// Package retention prunes audit events older than the configured window.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gdprkv/internal/audit/metrics"
	"gdprkv/internal/audit/models"
)

const millisPerDay = int64(86_400_000)

// ErrAlreadyRunning is returned when Run is called while a run is in flight.
var ErrAlreadyRunning = errors.New("audit retention already running")

// Store is the slice of the audit store the job needs.
type Store interface {
	FindOlderThan(ctx context.Context, cutoffMillis int64) ([]models.Event, error)
	Delete(ctx context.Context, subjectID, tsUlid string) error
}

// Result summarizes one run.
type Result struct {
	Cutoff   int64         `json:"cutoff"`
	Found    int           `json:"found"`
	Deleted  int           `json:"deleted"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// Job deletes audit events with timestamp < now - retentionDays.
type Job struct {
	store         Store
	retentionDays int
	logger        *slog.Logger
	metrics       *metrics.Metrics
	clock         func() time.Time
	running       atomic.Bool
}

type Option func(*Job)

func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) {
		j.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(j *Job) {
		j.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(j *Job) {
		j.clock = clock
	}
}

func New(store Store, retentionDays int, opts ...Option) (*Job, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}
	j := &Job{
		store:         store,
		retentionDays: retentionDays,
		logger:        slog.Default(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Run performs one pruning pass. Per-event delete failures are logged and
// counted; only the initial query failing aborts the run.
func (j *Job) Run(ctx context.Context) (Result, error) {
	if !j.running.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRunning
	}
	defer j.running.Store(false)

	ctx, span := otel.Tracer("gdprkv/internal/audit").Start(ctx, "audit.retention")
	defer span.End()

	start := j.clock()
	result := Result{Cutoff: start.UnixMilli() - int64(j.retentionDays)*millisPerDay}

	j.logger.InfoContext(ctx, "starting audit retention run",
		"retention_days", j.retentionDays,
		"cutoff", result.Cutoff,
	)

	events, err := j.store.FindOlderThan(ctx, result.Cutoff)
	if err != nil {
		return result, fmt.Errorf("find expired audit events: %w", err)
	}
	result.Found = len(events)

	for i := range events {
		e := &events[i]
		if err := j.store.Delete(ctx, e.SubjectID, e.TsUlid); err != nil {
			result.Failed++
			j.logger.WarnContext(ctx, "failed to delete audit event",
				"subject_id", e.SubjectID,
				"ts_ulid", e.TsUlid,
				"error", err,
			)
			continue
		}
		result.Deleted++
	}

	result.Duration = j.clock().Sub(start)
	j.metrics.ObserveRetention(result.Deleted, result.Failed, start)
	span.SetAttributes(
		attribute.Int("deleted", result.Deleted),
		attribute.Int("failed", result.Failed),
	)
	j.logger.InfoContext(ctx, "completed audit retention run",
		"found", result.Found,
		"deleted", result.Deleted,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
