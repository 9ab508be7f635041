package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gdprkv/internal/audit/handler/mocks"
	"gdprkv/internal/audit/models"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type AuditHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestAuditHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuditHandlerSuite))
}

func (s *AuditHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *AuditHandlerSuite) TestList() {
	s.Run("returns events in chain order", func() {
		events := []models.Event{
			{SubjectID: "s1", TsUlid: "1000_00000000000000000000000000000001", EventType: models.EventPutRequested, RequestID: "r1", Timestamp: 1000, PrevHash: models.ZeroHash, Hash: "a"},
			{SubjectID: "s1", TsUlid: "1001_00000000000000000000000000000001", EventType: models.EventPutNewItemSuccess, RequestID: "r1", Timestamp: 1001, PrevHash: "a", Hash: "b"},
		}
		s.service.EXPECT().List(gomock.Any(), "s1").Return(events, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/subjects/s1/audit-events"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ListResponse](s.T(), rr)
		s.Equal("s1", resp.SubjectID)
		s.Equal(2, resp.Count)
		require.Len(s.T(), resp.Events, 2)
		s.Equal(models.EventPutRequested, resp.Events[0].EventType)
		s.Equal("a", resp.Events[1].PrevHash)
	})

	s.Run("empty chain renders an empty list", func() {
		s.service.EXPECT().List(gomock.Any(), "nobody").Return(nil, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/subjects/nobody/audit-events"))

		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"subject_id":"nobody","count":0,"events":[]}`, rr.Body.String())
	})

	s.Run("store failure does not leak details", func() {
		s.service.EXPECT().List(gomock.Any(), "s1").
			Return(nil, dErrors.Wrap(errors.New("connection refused"), dErrors.CodeInternal, "failed to list audit events"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/subjects/s1/audit-events"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
		assert.NotContains(s.T(), rr.Body.String(), "connection refused")
	})
}

func (s *AuditHandlerSuite) TestVerify() {
	s.Run("valid chain", func() {
		s.service.EXPECT().Verify(gomock.Any(), "s1").Return(&models.VerifyReport{
			SubjectID: "s1",
			Events:    3,
			Valid:     true,
			Anchored:  true,
			HeadHash:  "c",
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/subjects/s1/audit-events/verify"))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "valid", true)
	})

	s.Run("broken chain is still a 200 with problems", func() {
		s.service.EXPECT().Verify(gomock.Any(), "s1").Return(&models.VerifyReport{
			SubjectID: "s1",
			Events:    2,
			Valid:     false,
			Anchored:  true,
			Problems: []models.Problem{
				{Index: 1, TsUlid: "x", Kind: models.ProblemBrokenLink, Detail: "prev_hash does not match"},
			},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/subjects/s1/audit-events/verify"))

		testutil.AssertStatusOK(s.T(), rr)
		report := testutil.UnmarshalResponse[models.VerifyReport](s.T(), rr)
		s.False(report.Valid)
		s.Require().Len(report.Problems, 1)
		s.Equal(models.ProblemBrokenLink, report.Problems[0].Kind)
	})
}
