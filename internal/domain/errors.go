package domain

import "errors"

type ErrorCode string

const (
	ErrorCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrorCodeBadRequest  ErrorCode = "BAD_REQUEST"
	ErrorCodeConflict    ErrorCode = "CONFLICT"
	ErrorCodeUnavailable ErrorCode = "UNAVAILABLE"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func NotFound(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeNotFound, Message: msg}
}

func BadRequest(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeBadRequest, Message: msg}
}

func Unavailable(msg string, err error) *DomainError {
	return &DomainError{Code: ErrorCodeUnavailable, Message: msg, Err: err}
}

// CodeOf returns the code of the first DomainError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsPermanent reports whether retrying the operation that produced err cannot succeed.
func IsPermanent(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeNotFound, ErrorCodeBadRequest:
		return true
	}
	return false
}
