//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"gdprkv/internal/policy/models"
	"gdprkv/internal/policy/store"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "policies"))
}

func (s *PostgresStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()

	_, err := s.store.FindByPurpose(ctx, "FULFILLMENT")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Upsert(ctx, &models.Policy{Purpose: "FULFILLMENT", RetentionDays: 30, Description: "orders", LastUpdatedAt: 1}))
	s.Require().NoError(s.store.Upsert(ctx, &models.Policy{Purpose: "FULFILLMENT", RetentionDays: 45, Description: "orders v2", LastUpdatedAt: 2}))

	p, err := s.store.FindByPurpose(ctx, "FULFILLMENT")
	s.Require().NoError(err)
	s.Equal(45, p.RetentionDays)
	s.Equal("orders v2", p.Description)
	s.Equal(int64(2), p.LastUpdatedAt)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PostgresStoreSuite) TestRejectsNonPositiveRetention() {
	err := s.store.Upsert(context.Background(), &models.Policy{Purpose: "BAD", RetentionDays: 0, LastUpdatedAt: 1})
	s.Error(err)
}
