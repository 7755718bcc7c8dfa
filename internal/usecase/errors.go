package usecase

import "fmt"

// ErrorCode classifies a failed exchange for logs. Users never see it; every
// failure surfaces as the same connect-failure message.
type ErrorCode string

const (
	ErrorTransport      ErrorCode = "TRANSPORT_ERROR"
	ErrorMalformedReply ErrorCode = "MALFORMED_REPLY"
	ErrorInternal       ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
