package matching

import (
	"errors"
	"fmt"
)

// Error codes for the matching taxonomy.
const (
	CodeInvalidInput        = "invalidInput"
	CodeUpstreamUnavailable = "upstreamUnavailable"
)

type MatchError struct {
	Code    string
	Message string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput reports a request the caller must fix: bad job type,
// out-of-range coordinates, missing required fields. Never retried.
func NewInvalidInput(format string, args ...any) error {
	return &MatchError{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err carries the invalid-input code.
func IsInvalidInput(err error) bool {
	var me *MatchError
	return errors.As(err, &me) && me.Code == CodeInvalidInput
}
