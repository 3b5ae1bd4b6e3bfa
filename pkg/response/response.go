package response

import (
	"errors"
	"strings"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	LOCKED            ErrCode = "LOCKED"
	CONFLICT          ErrCode = "CONFLICT"
	VALIDATION        ErrCode = "VALIDATION_FAILED"
	DATE_NOT_BOOKABLE ErrCode = "DATE_NOT_BOOKABLE"
	FORBIDDEN         ErrCode = "FORBIDDEN"
	UNAUTHORIZED      ErrCode = "UNAUTHORIZED"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrInvalidId       = errors.New("invalid id")
	ErrNotFound        = errors.New("resource not found")
	ErrLocked          = errors.New("resource is locked")
	ErrConflict        = errors.New("conflict")
	ErrDateNotBookable = errors.New("date is not bookable")
	ErrForbidden       = errors.New("forbidden")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// ValidationError carries the accumulated human-readable messages from a
// draft validation pass. It travels the normal error path; handlers unpack
// the messages into the response body.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func ValidationFailed(messages []string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(VALIDATION),
			Message: "validation failed",
			Details: messages,
		},
	}
}
