// Package domainerrors defines coded errors returned by services.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them into coded errors so transports can map them without inspecting
// infrastructure details.
package domainerrors

import "errors"

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest           Code = "bad_request"
	CodeValidation           Code = "validation_error"
	CodeInvalidPurpose       Code = "invalid_purpose"
	CodeSubjectNotFound      Code = "subject_not_found"
	CodeSubjectAlreadyExists Code = "subject_already_exists"
	CodeRecordNotFound       Code = "record_not_found"
	CodeVersionConflict      Code = "version_conflict"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeInternal             Code = "internal_error"
)

// Error is a coded domain error. Cause is kept for logging and errors.Is.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Cause
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is is errors.Is re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
