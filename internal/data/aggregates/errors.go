package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorCode classifies store failures for callers and metrics.
type ErrorCode string

const (
	CodeValidation ErrorCode = "validation"
	CodeNotFound   ErrorCode = "not_found"
	CodeConflict   ErrorCode = "conflict"
	CodeRetryable  ErrorCode = "retryable"
	CodeInternal   ErrorCode = "internal"
)

// ErrValidation tags caller input that cannot be written.
var ErrValidation = errors.New("aggregate validation")

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("%s (%s)", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message), Cause: cause}
}

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// CodeOf extracts the code from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// MapError maps driver and domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	wrap := func(code ErrorCode) error { return NewError(code, op, err.Error(), err) }
	switch {
	case errors.Is(err, ErrValidation):
		return wrap(CodeValidation)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrap(CodeNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return wrap(CodeConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrap(CodeRetryable)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return wrap(CodeConflict) // unique_violation
		case "40001", "40P01", "55P03":
			return wrap(CodeRetryable) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return wrap(CodeConflict)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"):
		return wrap(CodeRetryable)
	default:
		return wrap(CodeInternal)
	}
}
