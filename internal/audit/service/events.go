package service

import (
	"context"

	"gdprkv/internal/audit/models"
)

// Typed helpers for the events emitted around record, subject and purge
// operations. Each appends exactly one event.

func errorDetails(err error) map[string]any {
	if err == nil {
		return nil
	}
	return map[string]any{"error": err.Error()}
}

func (c *Chain) record(ctx context.Context, subjectID, itemKey, purpose, requestID string, t models.EventType, details map[string]any) error {
	_, err := c.Append(ctx, AppendInput{
		SubjectID: subjectID,
		EventType: t,
		RequestID: requestID,
		ItemKey:   itemKey,
		Purpose:   purpose,
		Details:   details,
	})
	return err
}

func (c *Chain) subject(ctx context.Context, subjectID, requestID string, t models.EventType, details map[string]any) error {
	return c.record(ctx, subjectID, "", "", requestID, t, details)
}

func (c *Chain) RecordPutRequested(ctx context.Context, subjectID, recordKey, purpose, requestID string) error {
	return c.record(ctx, subjectID, recordKey, purpose, requestID, models.EventPutRequested, nil)
}

// RecordPutSuccess distinguishes first writes from updates by version.
func (c *Chain) RecordPutSuccess(ctx context.Context, subjectID, recordKey, purpose, requestID string, version int64) error {
	t := models.EventPutNewItemSuccess
	if version > 1 {
		t = models.EventPutUpdateItemSuccess
	}
	return c.record(ctx, subjectID, recordKey, purpose, requestID, t, map[string]any{"version": version})
}

func (c *Chain) RecordPutFailure(ctx context.Context, subjectID, recordKey, purpose, requestID string, cause error) error {
	return c.record(ctx, subjectID, recordKey, purpose, requestID, models.EventPutFailed, errorDetails(cause))
}

func (c *Chain) RecordGetRequested(ctx context.Context, subjectID, recordKey, requestID string) error {
	return c.record(ctx, subjectID, recordKey, "", requestID, models.EventGetRequested, nil)
}

func (c *Chain) RecordGetSuccess(ctx context.Context, subjectID, recordKey, purpose, requestID string) error {
	return c.record(ctx, subjectID, recordKey, purpose, requestID, models.EventGetSuccess, nil)
}

func (c *Chain) RecordGetFailure(ctx context.Context, subjectID, recordKey, requestID string, cause error) error {
	return c.record(ctx, subjectID, recordKey, "", requestID, models.EventGetFailure, errorDetails(cause))
}

func (c *Chain) RecordCreateSubjectRequested(ctx context.Context, subjectID, requestID string) error {
	return c.subject(ctx, subjectID, requestID, models.EventCreateSubjectRequested, nil)
}

func (c *Chain) RecordCreateSubjectSuccess(ctx context.Context, subjectID, requestID string) error {
	return c.subject(ctx, subjectID, requestID, models.EventCreateSubjectCompleted, nil)
}

func (c *Chain) RecordCreateSubjectFailure(ctx context.Context, subjectID, requestID string, cause error) error {
	return c.subject(ctx, subjectID, requestID, models.EventCreateSubjectFailed, errorDetails(cause))
}

func (c *Chain) RecordDeleteRequested(ctx context.Context, subjectID, recordKey, requestID string) error {
	return c.record(ctx, subjectID, recordKey, "", requestID, models.EventDeleteItemRequested, nil)
}

func (c *Chain) RecordDeleteSuccess(ctx context.Context, subjectID, recordKey, purpose, requestID string, version, purgeDueAt int64) error {
	return c.record(ctx, subjectID, recordKey, purpose, requestID, models.EventDeleteItemSuccessful, map[string]any{
		"version":      version,
		"purge_due_at": purgeDueAt,
	})
}

func (c *Chain) RecordDeleteAlreadyTombstoned(ctx context.Context, subjectID, recordKey, requestID string) error {
	return c.record(ctx, subjectID, recordKey, "", requestID, models.EventDeleteItemAlreadyTombstoned, nil)
}

func (c *Chain) RecordDeleteFailure(ctx context.Context, subjectID, recordKey, requestID string, cause error) error {
	return c.record(ctx, subjectID, recordKey, "", requestID, models.EventDeleteItemFailure, errorDetails(cause))
}

func (c *Chain) RecordSubjectErasureRequested(ctx context.Context, subjectID, requestID string) error {
	return c.subject(ctx, subjectID, requestID, models.EventSubjectErasureRequested, nil)
}

func (c *Chain) RecordSubjectErasureStarted(ctx context.Context, subjectID, requestID string, recordCount int) error {
	return c.subject(ctx, subjectID, requestID, models.EventSubjectErasureStarted, map[string]any{"record_count": recordCount})
}

func (c *Chain) RecordSubjectErasureCompleted(ctx context.Context, subjectID, requestID string, recordsDeleted int) error {
	return c.subject(ctx, subjectID, requestID, models.EventSubjectErasureCompleted, map[string]any{"records_deleted": recordsDeleted})
}

func (c *Chain) RecordSubjectErasureFailure(ctx context.Context, subjectID, requestID string, cause error) error {
	return c.subject(ctx, subjectID, requestID, models.EventSubjectErasureFailed, errorDetails(cause))
}

func (c *Chain) RecordPurgeCandidateIdentified(ctx context.Context, subjectID, recordKey, purpose, jobRequestID string, purgeDueAt int64) error {
	return c.record(ctx, subjectID, recordKey, purpose, jobRequestID, models.EventPurgeCandidateIdentified, map[string]any{"purge_due_at": purgeDueAt})
}

func (c *Chain) RecordPurgeCandidateSuccessful(ctx context.Context, subjectID, recordKey, purpose, jobRequestID string) error {
	return c.record(ctx, subjectID, recordKey, purpose, jobRequestID, models.EventPurgeCandidateSuccessful, nil)
}

func (c *Chain) RecordPurgeCandidateFailed(ctx context.Context, subjectID, recordKey, purpose, jobRequestID string, cause error) error {
	return c.record(ctx, subjectID, recordKey, purpose, jobRequestID, models.EventPurgeCandidateFailed, errorDetails(cause))
}
