package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("unauthorized: invalid or missing credential")
	ErrUnverified         = errors.New("forbidden: email not verified, please verify your email to submit reviews")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDomainRejected     = errors.New("email address is outside the institution domain")
	ErrConflict           = errors.New("user already exists")
	ErrVersionConflict    = errors.New("review was modified by another request")
	ErrOwnershipMismatch  = errors.New("forbidden: review belongs to another account")
	ErrNotFound           = errors.New("not found")
	ErrNotificationFailed = errors.New("failed to send verification email, please try again or contact support")
	ErrVerificationFailed = errors.New("invalid or expired verification token")
	ErrInternal           = errors.New("an error occurred, please try again")
)

// ContentRejectedError reports a moderation violation in Field.
type ContentRejectedError struct {
	Field string
}

func (e *ContentRejectedError) Error() string {
	return fmt.Sprintf("forbidden: your %s contains inappropriate language, please revise your content and try again", e.Field)
}

// ValidationError carries field-level messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "missing or invalid required fields: " + strings.Join(parts, "; ")
}

// IsContentRejected reports whether err is a moderation rejection and returns it.
func IsContentRejected(err error) (*ContentRejectedError, bool) {
	var cr *ContentRejectedError
	ok := errors.As(err, &cr)
	return cr, ok
}

func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
