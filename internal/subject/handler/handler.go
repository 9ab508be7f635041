package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gdprkv/internal/platform/middleware"
	"gdprkv/internal/subject/models"
	"gdprkv/internal/subject/service"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/httputil"
)

const maxBodyBytes = 64 << 10

// Service defines the subject operations used by the handler.
type Service interface {
	CreateSubject(ctx context.Context, subjectID, residency, requestID string) (*models.Subject, error)
	GetSubject(ctx context.Context, subjectID string) (*models.Subject, error)
	DeleteSubject(ctx context.Context, subjectID, requestID string) (*service.ErasureResult, error)
}

// Auditor appends subject lifecycle events to the subject's audit chain.
type Auditor interface {
	RecordCreateSubjectRequested(ctx context.Context, subjectID, requestID string) error
	RecordCreateSubjectSuccess(ctx context.Context, subjectID, requestID string) error
	RecordCreateSubjectFailure(ctx context.Context, subjectID, requestID string, cause error) error
	RecordSubjectErasureRequested(ctx context.Context, subjectID, requestID string) error
	RecordSubjectErasureStarted(ctx context.Context, subjectID, requestID string, recordCount int) error
	RecordSubjectErasureCompleted(ctx context.Context, subjectID, requestID string, recordsDeleted int) error
	RecordSubjectErasureFailure(ctx context.Context, subjectID, requestID string, cause error) error
}

// Handler serves subject creation, lookup and erasure.
type Handler struct {
	logger   *slog.Logger
	subjects Service
	audit    Auditor
}

// New creates a new subject Handler.
func New(subjects Service, audit Auditor, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		subjects: subjects,
		audit:    audit,
	}
}

// Register registers the subject routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/subjects/{subjectId}", h.HandleCreate)
	r.Get("/subjects/{subjectId}", h.HandleGet)
	r.Delete("/subjects/{subjectId}", h.HandleDelete)
}

// CreateRequest is the optional body of PUT /subjects/{subjectId}.
type CreateRequest struct {
	Residency string `json:"residency"`
}

type SubjectResponse struct {
	SubjectID          string `json:"subject_id"`
	CreatedAt          int64  `json:"created_at"`
	Residency          string `json:"residency,omitempty"`
	ErasureInProgress  bool   `json:"erasure_in_progress"`
	ErasureRequestedAt *int64 `json:"erasure_requested_at,omitempty"`
}

// DeletionResponse is the body of DELETE /subjects/{subjectId}.
type DeletionResponse struct {
	Subject        SubjectResponse `json:"subject"`
	RecordsDeleted int             `json:"records_deleted"`
	TotalRecords   int             `json:"total_records"`
}

func toResponse(s *models.Subject) SubjectResponse {
	return SubjectResponse{
		SubjectID:          s.SubjectID,
		CreatedAt:          s.CreatedAt,
		Residency:          s.Residency,
		ErasureInProgress:  s.ErasureInProgress,
		ErasureRequestedAt: s.ErasureRequestedAt,
	}
}

// decodeOptional decodes an optional JSON body; an empty body yields the
// zero value.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// HandleCreate creates a subject.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectId"))

	var req CreateRequest
	if err := decodeOptional(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid json payload"))
		return
	}

	if err := h.audit.RecordCreateSubjectRequested(ctx, subjectID, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "create requested", err)
		return
	}

	subj, err := h.subjects.CreateSubject(ctx, subjectID, req.Residency, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create subject",
			"request_id", requestID,
			"subject_id", subjectID,
			"error", err,
		)
		if auditErr := h.audit.RecordCreateSubjectFailure(ctx, subjectID, requestID, err); auditErr != nil {
			h.logAuditError(ctx, requestID, "create failure", auditErr)
		}
		httputil.WriteError(w, err)
		return
	}

	if err := h.audit.RecordCreateSubjectSuccess(ctx, subj.SubjectID, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "create success", err)
		return
	}

	h.logger.InfoContext(ctx, "subject created",
		"request_id", requestID,
		"subject_id", subj.SubjectID,
	)
	httputil.WriteJSON(w, http.StatusOK, toResponse(subj))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectId"))

	subj, err := h.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(subj))
}

// HandleDelete runs subject erasure. A failure part way leaves the subject
// marked and some records tombstoned; repeating the request finishes it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectId"))

	if err := h.audit.RecordSubjectErasureRequested(ctx, subjectID, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "erasure requested", err)
		return
	}

	result, err := h.subjects.DeleteSubject(ctx, subjectID, requestID)
	if err == nil {
		err = h.audit.RecordSubjectErasureStarted(ctx, subjectID, requestID, result.TotalRecords)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "subject erasure failed",
			"request_id", requestID,
			"subject_id", subjectID,
			"error", err,
		)
		if auditErr := h.audit.RecordSubjectErasureFailure(ctx, subjectID, requestID, err); auditErr != nil {
			h.logAuditError(ctx, requestID, "erasure failure", auditErr)
		}
		httputil.WriteError(w, err)
		return
	}

	if err := h.audit.RecordSubjectErasureCompleted(ctx, subjectID, requestID, result.RecordsDeleted); err != nil {
		h.auditFailed(ctx, w, requestID, "erasure completed", err)
		return
	}

	h.logger.InfoContext(ctx, "subject erasure completed",
		"request_id", requestID,
		"subject_id", subjectID,
		"records_deleted", result.RecordsDeleted,
		"total_records", result.TotalRecords,
	)
	httputil.WriteJSON(w, http.StatusOK, DeletionResponse{
		Subject:        toResponse(result.Subject),
		RecordsDeleted: result.RecordsDeleted,
		TotalRecords:   result.TotalRecords,
	})
}

func (h *Handler) auditFailed(ctx context.Context, w http.ResponseWriter, requestID, stage string, err error) {
	h.logAuditError(ctx, requestID, stage, err)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write audit event"))
}

func (h *Handler) logAuditError(ctx context.Context, requestID, stage string, err error) {
	h.logger.ErrorContext(ctx, "failed to append audit event",
		"request_id", requestID,
		"stage", stage,
		"error", err,
	)
}
