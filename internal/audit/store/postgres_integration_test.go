//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gdprkv/internal/audit/models"
	"gdprkv/internal/audit/service"
	"gdprkv/internal/audit/store"
	"gdprkv/pkg/platform/sentinel"
	txcontext "gdprkv/pkg/platform/tx"
	"gdprkv/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "audit_events")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newEvent(subjectID string, ts int64, prev *models.Event) *models.Event {
	prevHash := models.ZeroHash
	if prev != nil {
		prevHash = prev.Hash
	}
	ts, tsUlid := models.NextTsUlid(ts, prev)
	e := &models.Event{
		SubjectID: subjectID,
		TsUlid:    tsUlid,
		EventType: models.EventDeleteItemSuccessful,
		RequestID: "req-1",
		Timestamp: ts,
		PrevHash:  prevHash,
		ItemKey:   "email",
		Purpose:   "MARKETING",
		Details:   map[string]any{"version": 3, "purge_due_at": int64(1756335600000)},
	}
	s.Require().NoError(e.Seal())
	return e
}

func (s *PostgresStoreSuite) TestRoundTripPreservesHash() {
	ctx := context.Background()
	first := s.newEvent("s1", 1000, nil)
	s.Require().NoError(s.store.Append(ctx, first))

	latest, err := s.store.FindLatest(ctx, "s1")
	s.Require().NoError(err)

	recomputed, err := models.ComputeHash(latest)
	s.Require().NoError(err)
	s.Equal(first.Hash, recomputed)
	s.Equal("email", latest.ItemKey)
}

func (s *PostgresStoreSuite) TestLinkConstraint() {
	ctx := context.Background()
	head := s.newEvent("s1", 1000, nil)
	s.Require().NoError(s.store.Append(ctx, head))

	s.Require().NoError(s.store.Append(ctx, s.newEvent("s1", 2000, head)))
	err := s.store.Append(ctx, s.newEvent("s1", 3000, head))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestOrderingAndRetention() {
	ctx := context.Background()
	a := s.newEvent("s1", 1000, nil)
	b := s.newEvent("s1", 1000, a)
	c := s.newEvent("s1", 9000, b)
	for _, e := range []*models.Event{a, b, c} {
		s.Require().NoError(s.store.Append(ctx, e))
	}

	events, err := s.store.ListBySubject(ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(a.TsUlid, events[0].TsUlid)
	s.Equal(c.TsUlid, events[2].TsUlid)

	old, err := s.store.FindOlderThan(ctx, 5000)
	s.Require().NoError(err)
	s.Len(old, 2)

	s.Require().NoError(s.store.Delete(ctx, "s1", a.TsUlid))
	s.ErrorIs(s.store.Delete(ctx, "s1", a.TsUlid), sentinel.ErrNotFound)

	report := models.VerifyChain("s1", mustList(s, ctx))
	s.True(report.Valid)
	s.False(report.Anchored)
}

func (s *PostgresStoreSuite) TestAppendInsideTransaction() {
	ctx := context.Background()
	tx, err := s.postgres.DB.BeginTx(ctx, &sql.TxOptions{})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Append(txcontext.WithTx(ctx, tx), s.newEvent("s1", 1000, nil)))
	s.Require().NoError(tx.Rollback())

	_, err = s.store.FindLatest(ctx, "s1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// Concurrent writers without a lock must still produce a single linear chain.
func (s *PostgresStoreSuite) TestConcurrentAppendsStayLinear() {
	ctx := context.Background()
	chain := service.New(s.store, service.WithMaxAttempts(50))

	const writers = 20
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := chain.Append(ctx, service.AppendInput{
				SubjectID: "s1",
				EventType: models.EventPutRequested,
				RequestID: "req",
			})
			if err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Zero(failures.Load())
	events := mustList(s, ctx)
	s.Len(events, writers)
	report := models.VerifyChain("s1", events)
	s.True(report.Valid, "problems: %v", report.Problems)
	s.True(report.Anchored)
}

func mustList(s *PostgresStoreSuite, ctx context.Context) []models.Event {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	events, err := s.store.ListBySubject(ctx, "s1")
	s.Require().NoError(err)
	return events
}
