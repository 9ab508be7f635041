package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gdprkv/internal/platform/middleware"
	"gdprkv/internal/subject/handler/mocks"
	"gdprkv/internal/subject/models"
	"gdprkv/internal/subject/service"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Auditor
type SubjectHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	audit   *mocks.MockAuditor
	router  chi.Router
}

func TestSubjectHandlerSuite(t *testing.T) {
	suite.Run(t, new(SubjectHandlerSuite))
}

const reqID = "req-7"

func (s *SubjectHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.audit = mocks.NewMockAuditor(ctrl)
	s.router = chi.NewRouter()
	s.router.Use(middleware.RequestID)
	New(s.service, s.audit, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *SubjectHandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(middleware.RequestIDHeader, reqID)
	return testutil.DoRequest(s.router, req)
}

func (s *SubjectHandlerSuite) TestCreate() {
	s.Run("with residency", func() {
		gomock.InOrder(
			s.audit.EXPECT().RecordCreateSubjectRequested(gomock.Any(), "s1", reqID).Return(nil),
			s.service.EXPECT().CreateSubject(gomock.Any(), "s1", "EU", reqID).
				Return(&models.Subject{SubjectID: "s1", CreatedAt: 1000, Version: 1, Residency: "EU"}, nil),
			s.audit.EXPECT().RecordCreateSubjectSuccess(gomock.Any(), "s1", reqID).Return(nil),
		)

		rr := s.do(testutil.NewRequestWithBody(s.T(), http.MethodPut, "/subjects/s1", `{"residency":"EU"}`))

		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"subject_id":"s1","created_at":1000,"residency":"EU","erasure_in_progress":false}`, rr.Body.String())
		s.Equal(reqID, rr.Header().Get(middleware.RequestIDHeader))
	})

	s.Run("without a body", func() {
		s.audit.EXPECT().RecordCreateSubjectRequested(gomock.Any(), "s2", reqID).Return(nil)
		s.service.EXPECT().CreateSubject(gomock.Any(), "s2", "", reqID).
			Return(&models.Subject{SubjectID: "s2", CreatedAt: 1000, Version: 1}, nil)
		s.audit.EXPECT().RecordCreateSubjectSuccess(gomock.Any(), "s2", reqID).Return(nil)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodPut, "/subjects/s2"))

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("already exists", func() {
		cause := dErrors.New(dErrors.CodeSubjectAlreadyExists, "subject already exists: s1")
		gomock.InOrder(
			s.audit.EXPECT().RecordCreateSubjectRequested(gomock.Any(), "s1", reqID).Return(nil),
			s.service.EXPECT().CreateSubject(gomock.Any(), "s1", "", reqID).Return(nil, cause),
			s.audit.EXPECT().RecordCreateSubjectFailure(gomock.Any(), "s1", reqID, cause).Return(nil),
		)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodPut, "/subjects/s1"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "subject_already_exists")
	})

	s.Run("malformed body", func() {
		rr := s.do(testutil.NewRequestWithBody(s.T(), http.MethodPut, "/subjects/s1", `{"residency":`))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *SubjectHandlerSuite) TestGet() {
	s.Run("found", func() {
		due := int64(5000)
		s.service.EXPECT().GetSubject(gomock.Any(), "s1").
			Return(&models.Subject{SubjectID: "s1", CreatedAt: 1000, Version: 2, ErasureInProgress: true, ErasureRequestedAt: &due}, nil)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/subjects/s1"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[SubjectResponse](s.T(), rr)
		s.True(resp.ErasureInProgress)
		s.Equal(int64(5000), *resp.ErasureRequestedAt)
	})

	s.Run("missing", func() {
		s.service.EXPECT().GetSubject(gomock.Any(), "ghost").
			Return(nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found: ghost"))

		rr := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/subjects/ghost"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "subject_not_found")
	})
}

func (s *SubjectHandlerSuite) TestDelete() {
	s.Run("audits requested, started and completed", func() {
		requestedAt := int64(2000)
		result := &service.ErasureResult{
			Subject:        &models.Subject{SubjectID: "s1", CreatedAt: 1000, Version: 2, ErasureInProgress: true, ErasureRequestedAt: &requestedAt},
			RecordsDeleted: 2,
			TotalRecords:   3,
		}
		gomock.InOrder(
			s.audit.EXPECT().RecordSubjectErasureRequested(gomock.Any(), "s1", reqID).Return(nil),
			s.service.EXPECT().DeleteSubject(gomock.Any(), "s1", reqID).Return(result, nil),
			s.audit.EXPECT().RecordSubjectErasureStarted(gomock.Any(), "s1", reqID, 3).Return(nil),
			s.audit.EXPECT().RecordSubjectErasureCompleted(gomock.Any(), "s1", reqID, 2).Return(nil),
		)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/subjects/s1"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[DeletionResponse](s.T(), rr)
		s.Equal(2, resp.RecordsDeleted)
		s.Equal(3, resp.TotalRecords)
		s.True(resp.Subject.ErasureInProgress)
	})

	s.Run("unknown subject is audited as a failure", func() {
		cause := dErrors.New(dErrors.CodeSubjectNotFound, "subject not found: ghost")
		gomock.InOrder(
			s.audit.EXPECT().RecordSubjectErasureRequested(gomock.Any(), "ghost", reqID).Return(nil),
			s.service.EXPECT().DeleteSubject(gomock.Any(), "ghost", reqID).Return(nil, cause),
			s.audit.EXPECT().RecordSubjectErasureFailure(gomock.Any(), "ghost", reqID, cause).Return(nil),
		)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/subjects/ghost"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "subject_not_found")
	})

	s.Run("requested audit failure prevents erasure", func() {
		s.audit.EXPECT().RecordSubjectErasureRequested(gomock.Any(), "s1", reqID).Return(errors.New("audit down"))
		s.service.EXPECT().DeleteSubject(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rr := s.do(testutil.NewRequest(s.T(), http.MethodDelete, "/subjects/s1"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	})
}
