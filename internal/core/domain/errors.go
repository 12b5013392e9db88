package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrHomeNotFound    = fmt.Errorf("home %w", ErrNotFound)
	ErrNewsNotFound    = fmt.Errorf("news item %w", ErrNotFound)
	ErrFAQNotFound     = fmt.Errorf("faq %w", ErrNotFound)
	ErrVacancyNotFound = fmt.Errorf("vacancy %w", ErrNotFound)
	ErrTourNotFound    = fmt.Errorf("scheduled tour %w", ErrNotFound)
	ErrReviewNotFound  = fmt.Errorf("review %w", ErrNotFound)
	ErrMealNotFound    = fmt.Errorf("meal plan %w", ErrNotFound)
	ErrCheckInNotFound = fmt.Errorf("check-in %w", ErrNotFound)
	ErrEventNotFound   = fmt.Errorf("event %w", ErrNotFound)
	ErrBackupNotFound  = fmt.Errorf("backup %w", ErrNotFound)

	ErrUserExists      = errors.New("user already exists")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrRateLimited        = errors.New("too many requests")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenMalformed = errors.New("token malformed")

	ErrCSRFInvalid = errors.New("csrf token missing or invalid")
)

// FieldError is one itemized validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a ValidationError with a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// InvalidCredentialsError is returned by a failed login and carries the
// number of attempts left before the account locks.
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string { return ErrInvalidCredentials.Error() }
func (e *InvalidCredentialsError) Unwrap() error { return ErrInvalidCredentials }

// LockedError is returned while an account is locked out.
type LockedError struct {
	Info LockInfo
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.Info.MinutesRemaining)
}
func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// RateLimitedError is returned when a client exceeded its request quota.
type RateLimitedError struct {
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter.Round(time.Second))
}
func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// RetryAfterSeconds rounds the hint up so clients never retry early.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
