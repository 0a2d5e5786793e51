package fileservice

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates a file or user does not exist
	ErrNotFound = errors.New("not found")

	// ErrTooLarge indicates a file exceeds the configured size limit
	ErrTooLarge = errors.New("file too large")

	// ErrPermissionDenied indicates the storage layer refused access
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidEncoding indicates file bytes are not valid UTF-8 text
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrIO indicates any other storage failure
	ErrIO = errors.New("io failure")

	// ErrDuplicateEmail indicates the email is already registered
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrInvalidEmail indicates the email is not a valid address
	ErrInvalidEmail = errors.New("invalid email")

	// ErrConfigMissing indicates a required setting was absent
	ErrConfigMissing = errors.New("config missing")

	// ErrInvalidName indicates a file name that would escape the base directory
	ErrInvalidName = errors.New("invalid file name")
)

// ErrorKind is a stable, renderable name for an error category.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindTooLarge         ErrorKind = "too_large"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindInvalidEncoding  ErrorKind = "invalid_encoding"
	KindIO               ErrorKind = "io_failure"
	KindDuplicateEmail   ErrorKind = "duplicate_email"
	KindInvalidEmail     ErrorKind = "invalid_email"
	KindConfigMissing    ErrorKind = "config_missing"
	KindUnknown          ErrorKind = "unknown"
)

var kinds = []struct {
	sentinel error
	kind     ErrorKind
}{
	{ErrNotFound, KindNotFound},
	{ErrTooLarge, KindTooLarge},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrInvalidEncoding, KindInvalidEncoding},
	{ErrIO, KindIO},
	{ErrDuplicateEmail, KindDuplicateEmail},
	{ErrInvalidEmail, KindInvalidEmail},
	{ErrConfigMissing, KindConfigMissing},
}

// KindOf reports the category of err. It returns "" for a nil error and
// KindUnknown for errors outside the model, such as context cancellation.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// NotFoundError reports a missing file or user
type NotFoundError struct {
	Resource string // "file" or "user"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TooLargeError reports a file whose size exceeds the store limit
type TooLargeError struct {
	Key    string
	Actual int64
	Limit  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file %q too large: %d bytes exceeds limit of %d bytes", e.Key, e.Actual, e.Limit)
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}

// PermissionDeniedError reports a refused access to a file
type PermissionDeniedError struct {
	Key string
	Err error
}

func (e *PermissionDeniedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("permission denied for file %q", e.Key)
	}
	return fmt.Sprintf("permission denied for file %q: %v", e.Key, e.Err)
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func (e *PermissionDeniedError) Unwrap() error {
	return e.Err
}

// InvalidEncodingError reports file content that is not valid UTF-8
type InvalidEncodingError struct {
	Key string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("file %q is not valid UTF-8 text", e.Key)
}

func (e *InvalidEncodingError) Is(target error) bool {
	return target == ErrInvalidEncoding
}

// IOError represents any other storage failure. Err keeps the underlying
// system error for diagnostics.
type IOError struct {
	Op  string
	Key string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage operation %s failed for file %q: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// DuplicateEmailError reports an email already owned by another user
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %q is already registered", e.Email)
}

func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

// InvalidEmailError reports a malformed email address
type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email address %q", e.Email)
}

func (e *InvalidEmailError) Is(target error) bool {
	return target == ErrInvalidEmail
}

// ConfigMissingError reports a required setting that was not provided
type ConfigMissingError struct {
	Variable string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("required setting %s is not set", e.Variable)
}

func (e *ConfigMissingError) Is(target error) bool {
	return target == ErrConfigMissing
}
