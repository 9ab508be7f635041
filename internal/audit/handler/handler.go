package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gdprkv/internal/audit/models"
	"gdprkv/internal/platform/middleware"
	dErrors "gdprkv/pkg/domain-errors"
	"gdprkv/pkg/platform/httputil"
)

// Service defines the read side of the audit chain.
type Service interface {
	List(ctx context.Context, subjectID string) ([]models.Event, error)
	Verify(ctx context.Context, subjectID string) (*models.VerifyReport, error)
}

// Handler serves audit chain reads.
type Handler struct {
	logger *slog.Logger
	audit  Service
}

// New creates a new audit Handler.
func New(audit Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		audit:  audit,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/subjects/{subjectId}/audit-events", h.HandleList)
	r.Get("/subjects/{subjectId}/audit-events/verify", h.HandleVerify)
}

// ListResponse is the body of GET /subjects/{subjectId}/audit-events.
type ListResponse struct {
	SubjectID string         `json:"subject_id"`
	Count     int            `json:"count"`
	Events    []models.Event `json:"events"`
}

// HandleList returns the subject's events oldest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectId"))
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "subject id is required"))
		return
	}

	events, err := h.audit.List(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestID,
			"subject_id", subjectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		SubjectID: subjectID,
		Count:     len(events),
		Events:    events,
	})
}

// HandleVerify replays the subject's chain and reports what it found.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	subjectID := strings.TrimSpace(chi.URLParam(r, "subjectId"))
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "subject id is required"))
		return
	}

	report, err := h.audit.Verify(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify audit chain",
			"request_id", requestID,
			"subject_id", subjectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if !report.Valid {
		h.logger.WarnContext(ctx, "audit chain verification failed",
			"request_id", requestID,
			"subject_id", subjectID,
			"problems", len(report.Problems),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
