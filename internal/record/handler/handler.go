package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gdprkv/internal/platform/middleware"
	"gdprkv/internal/record/models"
	"gdprkv/internal/record/service"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/httputil"
)

// Service defines the record operations used by the handler.
type Service interface {
	PutRecord(ctx context.Context, in service.PutInput) (*models.Record, error)
	GetRecord(ctx context.Context, subjectID, recordKey string) (*models.Record, error)
	ListRecords(ctx context.Context, subjectID string) ([]models.Record, error)
	DeleteRecord(ctx context.Context, subjectID, recordKey, requestID string) (*models.Record, bool, error)
}

// Auditor appends the record events to the subject's audit chain.
type Auditor interface {
	RecordPutRequested(ctx context.Context, subjectID, recordKey, purpose, requestID string) error
	RecordPutSuccess(ctx context.Context, subjectID, recordKey, purpose, requestID string, version int64) error
	RecordPutFailure(ctx context.Context, subjectID, recordKey, purpose, requestID string, cause error) error
	RecordGetRequested(ctx context.Context, subjectID, recordKey, requestID string) error
	RecordGetSuccess(ctx context.Context, subjectID, recordKey, purpose, requestID string) error
	RecordGetFailure(ctx context.Context, subjectID, recordKey, requestID string, cause error) error
	RecordDeleteRequested(ctx context.Context, subjectID, recordKey, requestID string) error
	RecordDeleteSuccess(ctx context.Context, subjectID, recordKey, purpose, requestID string, version, purgeDueAt int64) error
	RecordDeleteAlreadyTombstoned(ctx context.Context, subjectID, recordKey, requestID string) error
	RecordDeleteFailure(ctx context.Context, subjectID, recordKey, requestID string, cause error) error
}

// Handler serves record reads and writes. Every mutation and single-record
// read is bracketed by audit events.
type Handler struct {
	logger  *slog.Logger
	records Service
	audit   Auditor
}

// New creates a new record Handler.
func New(records Service, audit Auditor, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		records: records,
		audit:   audit,
	}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/subjects/{subjectId}/records", h.HandleList)
	r.Put("/subjects/{subjectId}/records/{recordKey}", h.HandlePut)
	r.Get("/subjects/{subjectId}/records/{recordKey}", h.HandleGet)
	r.Delete("/subjects/{subjectId}/records/{recordKey}", h.HandleDelete)
}

// PutRequest is the body of PUT /subjects/{subjectId}/records/{recordKey}.
type PutRequest struct {
	Purpose string          `json:"purpose"`
	Value   json.RawMessage `json:"value"`
}

func (r *PutRequest) Validate() error {
	r.Purpose = strings.TrimSpace(r.Purpose)
	if r.Purpose == "" {
		return dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	return nil
}

// RecordResponse is the wire form of a record.
type RecordResponse struct {
	SubjectID     string          `json:"subject_id"`
	RecordKey     string          `json:"record_key"`
	Purpose       string          `json:"purpose"`
	Value         json.RawMessage `json:"value"`
	Version       int64           `json:"version"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`
	RetentionDays int             `json:"retention_days"`
	Tombstoned    bool            `json:"tombstoned,omitempty"`
	PurgeDueAt    *int64          `json:"purge_due_at,omitempty"`
}

// ListResponse is the body of GET /subjects/{subjectId}/records.
type ListResponse struct {
	SubjectID string           `json:"subject_id"`
	Count     int              `json:"count"`
	Records   []RecordResponse `json:"records"`
}

func toResponse(rec *models.Record) RecordResponse {
	return RecordResponse{
		SubjectID:     rec.SubjectID,
		RecordKey:     rec.RecordKey,
		Purpose:       rec.Purpose,
		Value:         rec.Value,
		Version:       rec.Version,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		RetentionDays: rec.RetentionDays,
		Tombstoned:    rec.Tombstoned,
		PurgeDueAt:    rec.PurgeDueAt,
	}
}

func writeRecord(w http.ResponseWriter, rec *models.Record) {
	w.Header().Set("ETag", strconv.FormatInt(rec.Version, 10))
	httputil.WriteJSON(w, http.StatusOK, toResponse(rec))
}

func pathParams(r *http.Request) (string, string) {
	return strings.TrimSpace(chi.URLParam(r, "subjectId")), strings.TrimSpace(chi.URLParam(r, "recordKey"))
}

// HandlePut creates or updates a record.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID, recordKey := pathParams(r)

	req, ok := httputil.DecodeAndPrepare[PutRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.audit.RecordPutRequested(ctx, subjectID, recordKey, req.Purpose, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "put requested", err)
		return
	}

	rec, err := h.records.PutRecord(ctx, service.PutInput{
		SubjectID: subjectID,
		RecordKey: recordKey,
		Purpose:   req.Purpose,
		Value:     req.Value,
		RequestID: requestID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to put record",
			"request_id", requestID,
			"subject_id", subjectID,
			"record_key", recordKey,
			"error", err,
		)
		if auditErr := h.audit.RecordPutFailure(ctx, subjectID, recordKey, req.Purpose, requestID, err); auditErr != nil {
			h.logAuditError(ctx, requestID, "put failure", auditErr)
		}
		httputil.WriteError(w, err)
		return
	}

	if err := h.audit.RecordPutSuccess(ctx, rec.SubjectID, rec.RecordKey, rec.Purpose, requestID, rec.Version); err != nil {
		h.auditFailed(ctx, w, requestID, "put success", err)
		return
	}

	h.logger.InfoContext(ctx, "record written",
		"request_id", requestID,
		"subject_id", rec.SubjectID,
		"record_key", rec.RecordKey,
		"version", rec.Version,
	)
	writeRecord(w, rec)
}

// HandleGet returns one live record. Tombstoned records are not served.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID, recordKey := pathParams(r)

	if err := h.audit.RecordGetRequested(ctx, subjectID, recordKey, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "get requested", err)
		return
	}

	rec, err := h.records.GetRecord(ctx, subjectID, recordKey)
	if err == nil && rec.Tombstoned {
		err = dErrors.New(dErrors.CodeRecordNotFound, "record not found: "+subjectID+"/"+recordKey)
	}
	if err != nil {
		if auditErr := h.audit.RecordGetFailure(ctx, subjectID, recordKey, requestID, err); auditErr != nil {
			h.logAuditError(ctx, requestID, "get failure", auditErr)
		}
		httputil.WriteError(w, err)
		return
	}

	if err := h.audit.RecordGetSuccess(ctx, subjectID, recordKey, rec.Purpose, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "get success", err)
		return
	}
	writeRecord(w, rec)
}

// HandleList returns every record of the subject ordered by key, including
// tombstoned ones awaiting purge.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID, _ := pathParams(r)

	recs, err := h.records.ListRecords(ctx, subjectID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to list records",
			"request_id", requestID,
			"subject_id", subjectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]RecordResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toResponse(&recs[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		SubjectID: subjectID,
		Count:     len(out),
		Records:   out,
	})
}

// HandleDelete tombstones a record. Deleting a record that an earlier
// request already tombstoned succeeds and is audited as such.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID, recordKey := pathParams(r)

	if err := h.audit.RecordDeleteRequested(ctx, subjectID, recordKey, requestID); err != nil {
		h.auditFailed(ctx, w, requestID, "delete requested", err)
		return
	}

	rec, tombstoned, err := h.records.DeleteRecord(ctx, subjectID, recordKey, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to delete record",
			"request_id", requestID,
			"subject_id", subjectID,
			"record_key", recordKey,
			"error", err,
		)
		if auditErr := h.audit.RecordDeleteFailure(ctx, subjectID, recordKey, requestID, err); auditErr != nil {
			h.logAuditError(ctx, requestID, "delete failure", auditErr)
		}
		httputil.WriteError(w, err)
		return
	}

	if !tombstoned {
		err = h.audit.RecordDeleteAlreadyTombstoned(ctx, subjectID, recordKey, requestID)
	} else {
		var due int64
		if rec.PurgeDueAt != nil {
			due = *rec.PurgeDueAt
		}
		err = h.audit.RecordDeleteSuccess(ctx, subjectID, recordKey, rec.Purpose, requestID, rec.Version, due)
	}
	if err != nil {
		h.auditFailed(ctx, w, requestID, "delete outcome", err)
		return
	}
	writeRecord(w, rec)
}

// auditFailed reports an audit append failure. The operation's outcome is
// not acknowledged without its audit event.
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
