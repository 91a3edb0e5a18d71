// ================== pkg/errors/errors.go =================
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicate        = errors.New("resource already exists")
	ErrAlreadyResolved  = errors.New("report already resolved")
	ErrPhotoAttached    = errors.New("report photo already attached")
	ErrStore            = errors.New("backing store failure")
)

// Op names the user-facing operation an OperationError belongs to.
type Op string

const (
	OpCreate  Op = "create"
	OpConfirm Op = "confirm"
	OpResolve Op = "resolve"
	OpUpload  Op = "upload"
)

var opMessages = map[Op]string{
	OpCreate:  "could not create the report",
	OpConfirm: "could not confirm the report",
	OpResolve: "could not resolve the report",
	OpUpload:  "could not upload the photo",
}

// OperationError attaches the failing operation to an underlying cause.
type OperationError struct {
	Op  Op
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Message is safe to show to end users; it never contains the cause text.
func (e *OperationError) Message() string {
	if msg, ok := opMessages[e.Op]; ok {
		return msg
	}
	return "the operation could not be completed"
}

// Wrap returns nil for a nil err.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}

// Validation builds an ErrValidation carrying a field-level reason.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StoreFailure marks err as an ErrStore failure of the named backend call.
func StoreFailure(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, ErrStore, err)
}

// UserMessage returns the human readable message for err, falling back to fallback.
func UserMessage(err error, fallback string) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Message()
	}
	return fallback
}

// Is and As re-export the standard helpers so callers only import one errors package.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
