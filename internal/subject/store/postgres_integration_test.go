//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"gdprkv/internal/subject/models"
	"gdprkv/internal/subject/store"
	"gdprkv/pkg/platform/sentinel"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "subjects"))
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	subj, err := models.NewSubject("s1", "EU", "r1", 1756329300000)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, subj))

	got, err := s.store.FindByID(ctx, "s1")
	s.Require().NoError(err)
	s.Equal(*subj, *got)

	err = s.store.Create(ctx, subj)
	s.ErrorIs(err, sentinel.ErrAlreadyExists)

	exists, err := s.store.Exists(ctx, "s1")
	s.Require().NoError(err)
	s.True(exists)

	_, err = s.store.FindByID(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateIsConditional() {
	ctx := context.Background()
	subj, err := models.NewSubject("s1", "", "r1", 1000)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, subj))

	next := subj.Clone()
	next.MarkErasure(2000, "r2")
	s.Require().NoError(s.store.Update(ctx, &next, 1))

	stale := subj.Clone()
	stale.MarkErasure(3000, "r3")
	s.ErrorIs(s.store.Update(ctx, &stale, 1), sentinel.ErrConflict)

	ghost := models.Subject{SubjectID: "ghost", Version: 2}
	s.ErrorIs(s.store.Update(ctx, &ghost, 1), sentinel.ErrNotFound)

	got, err := s.store.FindByID(ctx, "s1")
	s.Require().NoError(err)
	s.True(got.ErasureInProgress)
	s.Require().NotNil(got.ErasureRequestedAt)
	s.Equal(int64(2000), *got.ErasureRequestedAt)
	s.Equal("r2", got.RequestID)
	s.Empty(got.Residency)
}
