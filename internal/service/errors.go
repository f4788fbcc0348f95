package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrIntentExpiredOrMissing = errors.New("booking intent expired or missing")
	ErrEntityNotFound         = errors.New("listing or user referenced by payment no longer exists")
	ErrInvalidMetadata        = errors.New("payment metadata is malformed")
	ErrListingNotFound        = errors.New("listing not found")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrTooManyAttempts        = errors.New("too many attempts, try again later")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrPaymentUnavailable     = errors.New("payment session could not be opened")
)

// FieldErrors maps a form field to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (f FieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f FieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}
