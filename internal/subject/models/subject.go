package models

import (
	"strings"

	dErrors "gdprkv/pkg/domain-errors"
)

// Subject is a data subject. It is created once; afterwards only the
// erasure markers change.
type Subject struct {
	SubjectID          string `json:"subject_id"`
	CreatedAt          int64  `json:"created_at"`
	Version            int64  `json:"version"`
	Residency          string `json:"residency,omitempty"`
	ErasureInProgress  bool   `json:"erasure_in_progress"`
	ErasureRequestedAt *int64 `json:"erasure_requested_at,omitempty"`
	RequestID          string `json:"request_id"`
}

// NewSubject returns a subject at version 1.
func NewSubject(subjectID, residency, requestID string, now int64) (*Subject, error) {
	s := &Subject{
		SubjectID: strings.TrimSpace(subjectID),
		CreatedAt: now,
		Version:   1,
		Residency: strings.TrimSpace(residency),
		RequestID: requestID,
	}
	if s.SubjectID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "subject id is required")
	}
	if strings.TrimSpace(requestID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "request id is required")
	}
	return s, nil
}

// MarkErasure flags the subject for erasure as of now. Repeated calls move
// the request time forward and bump the version.
func (s *Subject) MarkErasure(now int64, requestID string) {
	s.ErasureInProgress = true
	s.ErasureRequestedAt = &now
	s.RequestID = requestID
	s.Version++
}

// Clone returns a deep copy.
func (s *Subject) Clone() Subject {
	out := *s
	if s.ErasureRequestedAt != nil {
		v := *s.ErasureRequestedAt
		out.ErasureRequestedAt = &v
	}
	return out
}
