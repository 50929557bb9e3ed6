package ratbag

import (
	"errors"
	"fmt"
)

// Error codes for device tool invocations.
const (
	// ErrCodeToolNotFound means the tool executable is not installed.
	ErrCodeToolNotFound = "TOOL_NOT_FOUND"
	// ErrCodeToolFailed means the tool ran but exited non-zero or
	// produced no usable output.
	ErrCodeToolFailed = "TOOL_FAILED"
)

// Error represents a device tool failure with a code.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsToolNotFound reports whether err means the tool is missing.
func IsToolNotFound(err error) bool {
	return hasCode(err, ErrCodeToolNotFound)
}

// IsToolFailed reports whether err means the tool reported an error.
func IsToolFailed(err error) bool {
	return hasCode(err, ErrCodeToolFailed)
}

func hasCode(err error, code string) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Code == code
}
