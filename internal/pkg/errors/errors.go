package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyRecorded is returned when an episode already carries an outcome.
	ErrAlreadyRecorded = errors.New("outcome already recorded")
)
