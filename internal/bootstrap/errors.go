package bootstrap

import "fmt"

// Error codes for dependency bootstrap.
const (
	ErrCodeCheckFailed   = "CHECK_FAILED"
	ErrCodeInstallFailed = "INSTALL_FAILED"
	ErrCodeServiceFailed = "SERVICE_FAILED"
)

// Error represents a bootstrap failure with a code.
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
