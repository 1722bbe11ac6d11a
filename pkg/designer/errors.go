package designer

import (
	"errors"
	"fmt"
)

// PreconditionError reports a mutation rejected before any state
// changed. Op names the operation and Reason the specific check that
// failed.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Op + ": " + e.Reason
}

// AsPrecondition extracts a PreconditionError if err carries one.
func AsPrecondition(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func reject(op, format string, args ...any) error {
	return &PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
