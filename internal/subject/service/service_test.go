package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Records

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	policymodels "gdprkv/internal/policy/models"
	policystore "gdprkv/internal/policy/store"
	recordmodels "gdprkv/internal/record/models"
	recordservice "gdprkv/internal/record/service"
	recordstore "gdprkv/internal/record/store"
	"gdprkv/internal/subject/metrics"
	"gdprkv/internal/subject/models"
	"gdprkv/internal/subject/service/mocks"
	"gdprkv/internal/subject/store"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/sentinel"
	pkgtestutil "gdprkv/pkg/testutil"
)

// Erasure runs against the real record lifecycle over in-memory stores;
// store failures and partial erasure use mocks.
type SubjectServiceSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *pkgtestutil.ManualClock
	subjects  *store.InMemory
	records   *recordstore.InMemory
	lifecycle *recordservice.Lifecycle
	metrics   *metrics.Metrics
	svc       *Service
	logger    *slog.Logger
}

func TestSubjectServiceSuite(t *testing.T) {
	suite.Run(t, new(SubjectServiceSuite))
}

func (s *SubjectServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = pkgtestutil.NewManualClock(time.Date(2025, 8, 27, 21, 15, 0, 0, time.UTC))
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.subjects = store.NewInMemory()
	s.records = recordstore.NewInMemory()
	policies := policystore.NewInMemory()
	s.Require().NoError(policies.Upsert(s.ctx, &policymodels.Policy{Purpose: "FULFILLMENT", RetentionDays: 30}))
	s.lifecycle = recordservice.New(s.records, s.subjects, policies, recordservice.WithClock(s.clock.Now))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = New(s.subjects, s.lifecycle, WithClock(s.clock.Now), WithMetrics(s.metrics), WithLogger(s.logger))
}

func (s *SubjectServiceSuite) putRecord(subjectID, key string) *recordmodels.Record {
	rec, err := s.lifecycle.PutRecord(s.ctx, recordservice.PutInput{
		SubjectID: subjectID,
		RecordKey: key,
		Purpose:   "FULFILLMENT",
		Value:     json.RawMessage(`"v"`),
		RequestID: "put-" + key,
	})
	s.Require().NoError(err)
	return rec
}

func (s *SubjectServiceSuite) TestCreateSubject() {
	s.Run("creates at version 1", func() {
		subj, err := s.svc.CreateSubject(s.ctx, "s1", "EU", "r1")
		s.Require().NoError(err)
		s.Equal(int64(1), subj.Version)
		s.Equal(s.clock.Now().UnixMilli(), subj.CreatedAt)
		s.Equal("EU", subj.Residency)

		ok, err := s.svc.Exists(s.ctx, "s1")
		s.Require().NoError(err)
		s.True(ok)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SubjectsCreated))
	})

	s.Run("second create conflicts", func() {
		_, err := s.svc.CreateSubject(s.ctx, "s1", "", "r2")
		s.True(dErrors.HasCode(err, dErrors.CodeSubjectAlreadyExists))
	})

	s.Run("blank id", func() {
		_, err := s.svc.CreateSubject(s.ctx, " ", "", "r3")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *SubjectServiceSuite) TestGetSubject() {
	_, err := s.svc.GetSubject(s.ctx, "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeSubjectNotFound))

	_, err = s.svc.CreateSubject(s.ctx, "s1", "", "r1")
	s.Require().NoError(err)
	subj, err := s.svc.GetSubject(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal("s1", subj.SubjectID)
}

func (s *SubjectServiceSuite) TestDeleteSubjectTombstonesLiveRecords() {
	_, err := s.svc.CreateSubject(s.ctx, "s1", "", "r1")
	s.Require().NoError(err)
	s.putRecord("s1", "a")
	s.putRecord("s1", "b")
	s.putRecord("s1", "c")
	_, _, err = s.lifecycle.DeleteRecord(s.ctx, "s1", "b", "earlier")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	result, err := s.svc.DeleteSubject(s.ctx, "s1", "erase-1")
	s.Require().NoError(err)

	s.Equal(2, result.RecordsDeleted)
	s.Equal(3, result.TotalRecords)
	s.True(result.Subject.ErasureInProgress)
	s.Require().NotNil(result.Subject.ErasureRequestedAt)
	s.Equal(s.clock.Now().UnixMilli(), *result.Subject.ErasureRequestedAt)
	s.Equal(int64(2), result.Subject.Version)

	recs, err := s.records.FindAllBySubject(s.ctx, "s1")
	s.Require().NoError(err)
	for _, rec := range recs {
		s.True(rec.Tombstoned, rec.RecordKey)
	}
	s.Equal("erase-1", recs[0].RequestID)
	s.Equal("earlier", recs[1].RequestID)

	stored, err := s.subjects.FindByID(s.ctx, "s1")
	s.Require().NoError(err)
	s.True(stored.ErasureInProgress)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Erasures.WithLabelValues("completed")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.ErasureTombstoned))
}

func (s *SubjectServiceSuite) TestRepeatedErasureConverges() {
	_, err := s.svc.CreateSubject(s.ctx, "s1", "", "r1")
	s.Require().NoError(err)
	s.putRecord("s1", "a")

	_, err = s.svc.DeleteSubject(s.ctx, "s1", "erase-1")
	s.Require().NoError(err)
	again, err := s.svc.DeleteSubject(s.ctx, "s1", "erase-2")
	s.Require().NoError(err)

	s.Zero(again.RecordsDeleted)
	s.Equal(1, again.TotalRecords)
	s.Equal(int64(3), again.Subject.Version)
}

func (s *SubjectServiceSuite) TestDeleteSubjectWithoutRecords() {
	_, err := s.svc.CreateSubject(s.ctx, "s1", "", "r1")
	s.Require().NoError(err)

	result, err := s.svc.DeleteSubject(s.ctx, "s1", "erase-1")
	s.Require().NoError(err)
	s.Zero(result.RecordsDeleted)
	s.Zero(result.TotalRecords)
	s.True(result.Subject.ErasureInProgress)
}

func (s *SubjectServiceSuite) TestDeleteUnknownSubject() {
	_, err := s.svc.DeleteSubject(s.ctx, "ghost", "erase-1")
	s.True(dErrors.HasCode(err, dErrors.CodeSubjectNotFound))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Erasures.WithLabelValues("failed")))
}

func (s *SubjectServiceSuite) TestPartialErasureLeavesSubjectMarked() {
	ctrl := gomock.NewController(s.T())
	records := mocks.NewMockRecords(ctrl)
	svc := New(s.subjects, records, WithClock(s.clock.Now), WithLogger(s.logger))
	_, err := svc.CreateSubject(s.ctx, "s1", "", "r1")
	s.Require().NoError(err)

	cause := dErrors.New(dErrors.CodeVersionConflict, "record changed concurrently")
	records.EXPECT().ListRecords(gomock.Any(), "s1").Return([]recordmodels.Record{
		{SubjectID: "s1", RecordKey: "a"},
		{SubjectID: "s1", RecordKey: "b"},
		{SubjectID: "s1", RecordKey: "c"},
	}, nil)
	gomock.InOrder(
		records.EXPECT().DeleteRecord(gomock.Any(), "s1", "a", "erase-1").Return(&recordmodels.Record{}, true, nil),
		records.EXPECT().DeleteRecord(gomock.Any(), "s1", "b", "erase-1").Return(nil, false, cause),
	)

	_, err = svc.DeleteSubject(s.ctx, "s1", "erase-1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVersionConflict))

	stored, err := s.subjects.FindByID(s.ctx, "s1")
	s.Require().NoError(err)
	s.True(stored.ErasureInProgress)
}

func (s *SubjectServiceSuite) TestStoreErrorTranslation() {
	ctrl := gomock.NewController(s.T())
	subjects := mocks.NewMockStore(ctrl)
	records := mocks.NewMockRecords(ctrl)
	svc := New(subjects, records, WithClock(s.clock.Now), WithLogger(s.logger))
	existing := &models.Subject{SubjectID: "s1", Version: 4, CreatedAt: 1}

	s.Run("concurrent subject update", func() {
		subjects.EXPECT().FindByID(gomock.Any(), "s1").Return(existing, nil)
		subjects.EXPECT().Update(gomock.Any(), gomock.Any(), int64(4)).Return(sentinel.ErrConflict)

		_, err := svc.DeleteSubject(s.ctx, "s1", "erase-1")
		s.True(dErrors.HasCode(err, dErrors.CodeVersionConflict))
	})

	s.Run("store failure is internal", func() {
		subjects.EXPECT().FindByID(gomock.Any(), "s1").Return(nil, errors.New("connection reset"))

		_, err := svc.DeleteSubject(s.ctx, "s1", "erase-1")
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})

	s.Run("create failure is internal", func() {
		subjects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := svc.CreateSubject(s.ctx, "s2", "", "r1")
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}
