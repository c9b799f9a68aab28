package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks lifecycle transitions that are not allowed
	// from the record's current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict marks optimistic-lock or concurrent-update failures.
	// Callers may retry the whole operation.
	ErrConflict = errors.New("conflict")
	// ErrMalformedFlow marks flow definitions the engine cannot interpret.
	ErrMalformedFlow = errors.New("malformed flow definition")
	// ErrScreenNotFound marks a current screen missing from its flow.
	ErrScreenNotFound = errors.New("screen not found in flow")
)
