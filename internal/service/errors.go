package service

import (
	"errors"
	"fmt"
)

// Error taxonomy for the dispatch and tracking operations. Handlers map
// these onto HTTP statuses; everything else is a 500.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrNoVehicleAssigned  = errors.New("no vehicle assigned to this driver")
	ErrMissingCoordinates = errors.New("missing latitude/longitude")
)

// ValidationError marks malformed input on create/update operations. It is
// not retried; callers must fix the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
