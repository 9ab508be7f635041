package models

import (
	"fmt"
	"time"
)

// EventType names an audited action. The vocabulary is fixed; stores persist
// the string form.
type EventType string

const (
	EventCreateSubject          EventType = "CREATE_SUBJECT"
	EventCreateSubjectRequested EventType = "CREATE_SUBJECT_REQUESTED"
	EventCreateSubjectCompleted EventType = "CREATE_SUBJECT_COMPLETED"
	EventCreateSubjectFailed    EventType = "CREATE_SUBJECT_FAILED"

	EventPutRequested         EventType = "PUT_REQUESTED"
	EventPutFailed            EventType = "PUT_FAILED"
	EventPutSuccess           EventType = "PUT_SUCCESS"
	EventPutNewItemSuccess    EventType = "PUT_NEW_ITEM_SUCCESS"
	EventPutUpdateItemSuccess EventType = "PUT_UPDATE_ITEM_SUCCESS"

	EventGetRequested EventType = "GET_REQUESTED"
	EventGetFailure   EventType = "GET_FAILURE"
	EventGetSuccess   EventType = "GET_SUCCESS"

	EventDeleteItemRequested         EventType = "DELETE_ITEM_REQUESTED"
	EventDeleteItemFailure           EventType = "DELETE_ITEM_FAILURE"
	EventDeleteItemAlreadyTombstoned EventType = "DELETE_ITEM_ALREADY_TOMBSTONED"
	EventDeleteItemSuccessful        EventType = "DELETE_ITEM_SUCCESSFUL"

	EventDeleteSubjectRequested EventType = "DELETE_SUBJECT_REQUESTED"
	EventDeleteSubjectNoSubject EventType = "DELETE_SUBJECT_NO_SUBJECT"
	EventDeleteSubjectFailure   EventType = "DELETE_SUBJECT_FAILURE"
	EventDeleteSubjectSuccess   EventType = "DELETE_SUBJECT_SUCCESS"

	EventSubjectErasureRequested EventType = "SUBJECT_ERASURE_REQUESTED"
	EventSubjectErasureStarted   EventType = "SUBJECT_ERASURE_STARTED"
	EventSubjectErasureFailed    EventType = "SUBJECT_ERASURE_FAILED"
	EventSubjectErasureCompleted EventType = "SUBJECT_ERASURE_COMPLETED"

	EventPurgeCandidateIdentified EventType = "PURGE_CANDIDATE_IDENTIFIED"
	EventPurgeCandidateSuccessful EventType = "PURGE_CANDIDATE_SUCCESSFUL"
	EventPurgeCandidateFailed     EventType = "PURGE_CANDIDATE_FAILED"
)

var knownEventTypes = map[EventType]struct{}{
	EventCreateSubject: {}, EventCreateSubjectRequested: {}, EventCreateSubjectCompleted: {}, EventCreateSubjectFailed: {},
	EventPutRequested: {}, EventPutFailed: {}, EventPutSuccess: {}, EventPutNewItemSuccess: {}, EventPutUpdateItemSuccess: {},
	EventGetRequested: {}, EventGetFailure: {}, EventGetSuccess: {},
	EventDeleteItemRequested: {}, EventDeleteItemFailure: {}, EventDeleteItemAlreadyTombstoned: {}, EventDeleteItemSuccessful: {},
	EventDeleteSubjectRequested: {}, EventDeleteSubjectNoSubject: {}, EventDeleteSubjectFailure: {}, EventDeleteSubjectSuccess: {},
	EventSubjectErasureRequested: {}, EventSubjectErasureStarted: {}, EventSubjectErasureFailed: {}, EventSubjectErasureCompleted: {},
	EventPurgeCandidateIdentified: {}, EventPurgeCandidateSuccessful: {}, EventPurgeCandidateFailed: {},
}

// ParseEventType validates a persisted event type.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if _, ok := knownEventTypes[t]; !ok {
		return "", fmt.Errorf("unknown audit event type %q", s)
	}
	return t, nil
}

// Event is one immutable entry in a subject's audit chain.
//
// Invariants:
//   - Hash == ComputeHash(event)
//   - PrevHash is the Hash of the previous event for SubjectID, or ZeroHash
//   - events sort by TsUlid in append order
type Event struct {
	SubjectID string         `json:"subject_id"`
	TsUlid    string         `json:"ts_ulid"`
	EventType EventType      `json:"event_type"`
	RequestID string         `json:"request_id"`
	Timestamp int64          `json:"timestamp"`
	PrevHash  string         `json:"prev_hash"`
	Hash      string         `json:"hash"`
	ItemKey   string         `json:"item_key,omitempty"`
	Purpose   string         `json:"purpose,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Time returns the event timestamp as a UTC time.
func (e *Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Seal computes and stores the event hash.
func (e *Event) Seal() error {
	h, err := ComputeHash(e)
	if err != nil {
		return err
	}
	e.Hash = h
	return nil
}
