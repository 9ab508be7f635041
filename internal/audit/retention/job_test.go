package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"gdprkv/internal/audit/metrics"
	"gdprkv/internal/audit/models"
	"gdprkv/internal/audit/store"
	pkgtestutil "gdprkv/pkg/testutil"
)

const day = int64(86_400_000)

type JobSuite struct {
	suite.Suite
	store  *store.InMemory
	clock  *pkgtestutil.ManualClock
	logger *slog.Logger
}

func TestJobSuite(t *testing.T) {
	suite.Run(t, new(JobSuite))
}

func (s *JobSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.clock = pkgtestutil.NewManualClockMillis(1000 * day)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *JobSuite) seed(subjectID string, timestamps ...int64) {
	prev := models.ZeroHash
	for _, ts := range timestamps {
		e := &models.Event{
			SubjectID: subjectID,
			TsUlid:    models.NewTsUlid(ts),
			EventType: models.EventPutRequested,
			RequestID: "r",
			Timestamp: ts,
			PrevHash:  prev,
		}
		s.Require().NoError(e.Seal())
		s.Require().NoError(s.store.Append(context.Background(), e))
		prev = e.Hash
	}
}

func (s *JobSuite) TestNewValidation() {
	_, err := New(nil, 30)
	s.Error(err)
	_, err = New(s.store, 0)
	s.Error(err)
}

func (s *JobSuite) TestDeletesOnlyEventsBeforeCutoff() {
	now := s.clock.Now().UnixMilli()
	cutoff := now - 30*day
	s.seed("s1", cutoff-2, cutoff-1, cutoff, cutoff+1)
	s.seed("s2", cutoff-5)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	job, err := New(s.store, 30, WithClock(s.clock.Now), WithLogger(s.logger), WithMetrics(m))
	s.Require().NoError(err)

	result, err := job.Run(context.Background())
	s.Require().NoError(err)
	s.Equal(cutoff, result.Cutoff)
	s.Equal(3, result.Found)
	s.Equal(3, result.Deleted)
	s.Equal(0, result.Failed)

	remaining, err := s.store.ListBySubject(context.Background(), "s1")
	s.Require().NoError(err)
	s.Require().Len(remaining, 2)
	s.Equal(cutoff, remaining[0].Timestamp)

	gone, err := s.store.ListBySubject(context.Background(), "s2")
	s.Require().NoError(err)
	s.Empty(gone)

	s.Equal(3.0, testutil.ToFloat64(m.RetentionDeleted))

	report := models.VerifyChain("s1", remaining)
	s.True(report.Valid)
	s.False(report.Anchored)
}

type flakyStore struct {
	*store.InMemory
	failFor string
}

func (f *flakyStore) Delete(ctx context.Context, subjectID, tsUlid string) error {
	if subjectID == f.failFor {
		return errors.New("throttled")
	}
	return f.InMemory.Delete(ctx, subjectID, tsUlid)
}

func (s *JobSuite) TestDeleteFailuresDoNotAbort() {
	now := s.clock.Now().UnixMilli()
	s.seed("bad", now-40*day)
	s.seed("good", now-40*day, now-39*day)

	job, err := New(&flakyStore{InMemory: s.store, failFor: "bad"}, 30, WithClock(s.clock.Now), WithLogger(s.logger))
	s.Require().NoError(err)

	result, err := job.Run(context.Background())
	s.Require().NoError(err)
	s.Equal(3, result.Found)
	s.Equal(2, result.Deleted)
	s.Equal(1, result.Failed)
}

type blockingStore struct {
	*store.InMemory
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) FindOlderThan(ctx context.Context, cutoff int64) ([]models.Event, error) {
	close(b.entered)
	<-b.release
	return b.InMemory.FindOlderThan(ctx, cutoff)
}

func (s *JobSuite) TestSingleFlight() {
	bs := &blockingStore{InMemory: s.store, entered: make(chan struct{}), release: make(chan struct{})}
	job, err := New(bs, 30, WithClock(s.clock.Now), WithLogger(s.logger))
	s.Require().NoError(err)

	done := make(chan error, 1)
	go func() {
		_, err := job.Run(context.Background())
		done <- err
	}()
	<-bs.entered

	_, err = job.Run(context.Background())
	s.ErrorIs(err, ErrAlreadyRunning)

	close(bs.release)
	s.NoError(<-done)
}
