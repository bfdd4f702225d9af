// Package errors provides the typed error taxonomy shared by the
// storage layer and the stores.
package errors

import (
	"errors"
	"fmt"
)

// StorageError wraps any persistence engine failure. Callers never see
// the raw engine error directly; Op names the failing operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// NotFoundError reports an update/action against a nonexistent record.
type NotFoundError struct {
	Kind string // "recipient" or "event"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given record kind.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// FormatError reports a malformed import payload, kept distinct from
// StorageError so the caller can say "check the file format".
type FormatError struct {
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid data format: %s", e.Detail)
}

// NewFormatError creates a FormatError with the given detail.
func NewFormatError(detail string) *FormatError {
	return &FormatError{Detail: detail}
}

// IsStorage reports whether err is or wraps a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsFormat reports whether err is or wraps a FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
