package session

import (
	"errors"
	"fmt"

	"github.com/smazurov/keycolor/internal/ratbag"
)

// ErrCodeValidation marks input rejected before any tool invocation.
const ErrCodeValidation = "VALIDATION"

// ErrStale is returned when a discovery result was superseded by a newer
// discovery or a user selection.
var ErrStale = errors.New("discovery result is stale")

// Error represents a rejected apply request.
type Error struct {
	Code    string
	Field   string
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

func validationError(field, message string, cause error) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Code == ErrCodeValidation
}

// ErrorCode returns the code carried by a session or device tool error,
// or an empty string.
func ErrorCode(err error) string {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Code
	}
	var rerr *ratbag.Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return ""
}

// ErrorMessage returns the user facing text of err without its code prefix.
func ErrorMessage(err error) string {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Message
	}
	var rerr *ratbag.Error
	if errors.As(err, &rerr) {
		if rerr.Code == ratbag.ErrCodeToolFailed && rerr.Cause != nil {
			return rerr.Message + ": " + rerr.Cause.Error()
		}
		return rerr.Message
	}
	return err.Error()
}
