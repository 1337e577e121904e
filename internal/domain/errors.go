package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExists is returned when a run reuses an identifier that already has a session.
	ErrSessionExists = errors.New("session already exists")
	// ErrPostImmutable is returned when a stored session's chosen post would change.
	ErrPostImmutable = errors.New("chosen post is immutable for a session")
	// ErrNoVariations means every approach failed before a post could be chosen.
	ErrNoVariations = errors.New("failed to generate variations")
)

// ProviderError reports a failed call to a remote text or image capability.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedReplyError reports a reply that could not be read as a JSON object.
type MalformedReplyError struct {
	Reply string
	Err   error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("malformed reply: %v", e.Err)
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }

// ValidationError reports a missing or unrecognized caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// UploadError reports a blob persistence failure.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// NotFoundError reports a missing session or template.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
