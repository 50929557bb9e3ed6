package prefs

import "fmt"

// ErrCodeConfigIO marks a preference file read or write failure. Callers
// treat it as a warning; the workflow continues with in-memory values.
const ErrCodeConfigIO = "CONFIG_IO"

// Error represents a preference store failure with a code.
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

func ioError(message string, cause error) *Error {
	return &Error{Code: ErrCodeConfigIO, Message: message, Cause: cause}
}
