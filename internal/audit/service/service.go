package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"gdprkv/internal/audit/metrics"
	"gdprkv/internal/audit/models"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/sentinel"
)

// Store persists audit events. Append must reject a second event for the
// same (subject, prevHash) with sentinel.ErrConflict.
type Store interface {
	Append(ctx context.Context, event *models.Event) error
	FindLatest(ctx context.Context, subjectID string) (*models.Event, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.Event, error)
}

// Locker serializes appends for one subject.
type Locker interface {
	Lock(ctx context.Context, subjectID string) (unlock func(), err error)
}

// Publisher receives events after they are persisted.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

const defaultMaxAttempts = 3

var tracer = otel.Tracer("gdprkv/internal/audit")

// Chain appends to and reads per-subject audit hash chains.
type Chain struct {
	store       Store
	locker      Locker
	publisher   Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	clock       func() time.Time
	maxAttempts int
}

type Option func(*Chain)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

func WithLocker(l Locker) Option {
	return func(c *Chain) {
		c.locker = l
	}
}

func WithPublisher(p Publisher) Option {
	return func(c *Chain) {
		c.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Chain) {
		c.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Chain) {
		c.clock = clock
	}
}

// WithMaxAttempts bounds retries after losing the chain head to another writer.
func WithMaxAttempts(n int) Option {
	return func(c *Chain) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// New constructs a Chain. Without WithLocker appends are not serialized and
// only the store's link constraint protects the chain.
func New(store Store, opts ...Option) *Chain {
	c := &Chain{
		store:       store,
		logger:      slog.Default(),
		clock:       time.Now,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendInput describes one event to add to a subject's chain.
type AppendInput struct {
	SubjectID string
	EventType models.EventType
	RequestID string
	ItemKey   string
	Purpose   string
	Details   map[string]any
}

// Append links a new event to the subject's latest event (or the genesis
// zero hash) and persists it.
func (c *Chain) Append(ctx context.Context, in AppendInput) (*models.Event, error) {
	if strings.TrimSpace(in.SubjectID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "subject id is required")
	}
	if in.EventType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event type is required")
	}
	if strings.TrimSpace(in.RequestID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "request id is required")
	}

	ctx, span := tracer.Start(ctx, "audit.append")
	defer span.End()
	span.SetAttributes(
		attribute.String("subject_id", in.SubjectID),
		attribute.String("event_type", string(in.EventType)),
	)

	event, err := c.appendLocked(ctx, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.metrics.IncrementAppended(string(event.EventType))
	// published after the subject lock is released; consumers order by ts_ulid
	c.publish(ctx, *event)
	return event, nil
}

// appendLocked holds the subject's lock while it reads the head and stores
// the next event, retrying when the head moved underneath it.
func (c *Chain) appendLocked(ctx context.Context, in AppendInput) (*models.Event, error) {
	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, in.SubjectID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock audit chain")
		}
		defer unlock()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		event, err := c.appendOnce(ctx, in)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit event")
		}
		lastErr = err
		c.metrics.IncrementConflict()
		c.logger.WarnContext(ctx, "audit chain head moved, retrying append",
			"subject_id", in.SubjectID,
			"event_type", in.EventType,
			"attempt", attempt,
		)
	}
	return nil, dErrors.Wrap(lastErr, dErrors.CodeInternal, "audit chain contention")
}

func (c *Chain) appendOnce(ctx context.Context, in AppendInput) (*models.Event, error) {
	latest, err := c.store.FindLatest(ctx, in.SubjectID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		latest = nil
	}

	prevHash := models.ZeroHash
	if latest != nil {
		prevHash = latest.Hash
	}
	ts, tsUlid := models.NextTsUlid(c.clock().UnixMilli(), latest)

	event := &models.Event{
		SubjectID: in.SubjectID,
		TsUlid:    tsUlid,
		EventType: in.EventType,
		RequestID: in.RequestID,
		Timestamp: ts,
		PrevHash:  prevHash,
		ItemKey:   in.ItemKey,
		Purpose:   in.Purpose,
		Details:   in.Details,
	}
	if err := event.Seal(); err != nil {
		return nil, err
	}
	if err := c.store.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (c *Chain) publish(ctx context.Context, event models.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.metrics.IncrementPublishFailure()
		c.logger.ErrorContext(ctx, "failed to publish audit event",
			"subject_id", event.SubjectID,
			"ts_ulid", event.TsUlid,
			"event_type", event.EventType,
			"error", err,
		)
	}
}

// List returns the subject's events in chain order.
func (c *Chain) List(ctx context.Context, subjectID string) ([]models.Event, error) {
	events, err := c.store.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	return events, nil
}

// Verify replays the subject's chain.
func (c *Chain) Verify(ctx context.Context, subjectID string) (*models.VerifyReport, error) {
	ctx, span := tracer.Start(ctx, "audit.verify")
	defer span.End()

	events, err := c.List(ctx, subjectID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	report := models.VerifyChain(subjectID, events)
	span.SetAttributes(
		attribute.Int("events", report.Events),
		attribute.Bool("valid", report.Valid),
	)
	return &report, nil
}
