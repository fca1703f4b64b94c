package quotes

import (
	"fmt"
	"strings"
)

const (
	CodeValidation = "validation"
	CodeTransition = "invalid_transition"
	CodeExpired    = "expired"
	CodeMismatch   = "entity_mismatch"
)

// Error is the lifecycle error type for requests and quotes. Incorrect state
// transitions corrupt the audit trail, so lifecycle components report these
// explicitly instead of degrading the way the extraction components do.
type Error struct {
	Code     string
	Message  string
	Problems []string
}

func (e *Error) Error() string {
	if len(e.Problems) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError wraps a list of field-level problems. The problems stay
// addressable so callers can surface them individually.
func NewValidationError(message string, problems []string) *Error {
	return &Error{Code: CodeValidation, Message: message, Problems: problems}
}
