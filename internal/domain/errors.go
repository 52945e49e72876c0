package domain

import (
	"fmt"
	"math"
	"time"
)

type Code string

const (
	CodeUnauthenticated Code = "unauthenticated"
	CodeRateLimited     Code = "rate_limited"
	CodeNotFound        Code = "not_found"
	CodeForbidden       Code = "forbidden"
	CodeInvalidArgument Code = "invalid_argument"
)

// Error is a request failure surfaced to the caller as-is.
type Error struct {
	Code       Code
	Message    string
	RetryAfter time.Duration // set for CodeRateLimited only
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Is matches any *Error with the same code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// RetryAfterMs rounds RetryAfter up to whole milliseconds.
func (e *Error) RetryAfterMs() int64 {
	return int64(math.Ceil(float64(e.RetryAfter) / float64(time.Millisecond)))
}

var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrRateLimited     = &Error{Code: CodeRateLimited}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrForbidden       = &Error{Code: CodeForbidden}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument}
)

func Unauthenticated() error {
	return &Error{Code: CodeUnauthenticated, Message: "Not authenticated"}
}

func RateLimited(retryAfter time.Duration) error {
	e := &Error{Code: CodeRateLimited, RetryAfter: retryAfter}
	e.Message = fmt.Sprintf("Rate limit exceeded. Retry after %dms", e.RetryAfterMs())
	return e
}

func NotFound(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}
