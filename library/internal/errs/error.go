package errs

import (
	"errors"
	"fmt"
	"time"
)

// Kinds. Every error returned by the service wraps exactly one of them.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation")
	ErrUpstream     = errors.New("upstream")
)

var (
	ErrBookNotFound       = fmt.Errorf("%w: book not found or inactive", ErrNotFound)
	ErrIssueNotFound      = fmt.Errorf("%w: issue not found", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrNoCopies           = fmt.Errorf("%w: no available copies left", ErrConflict)
	ErrAlreadyIssued      = fmt.Errorf("%w: book is already issued to this user", ErrConflict)
	ErrAlreadyReturned    = fmt.Errorf("%w: book already returned", ErrConflict)
	ErrNotReturned        = fmt.Errorf("%w: book is not returned yet", ErrConflict)
	ErrNothingOwed        = fmt.Errorf("%w: no penalty to pay", ErrConflict)
	ErrPenaltyPaid        = fmt.Errorf("%w: penalty already paid", ErrConflict)
	ErrEmailTaken         = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrNotOwner           = fmt.Errorf("%w: not allowed to return this issue", ErrForbidden)
	ErrCopies             = fmt.Errorf("%w: availableCopies cannot exceed totalCopies", ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInactiveAccount    = fmt.Errorf("%w: account is inactive", ErrUnauthorized)
)

// ErrTxConflict marks a transaction aborted by the database (serialization
// failure, deadlock). The whole transaction can be run again.
var ErrTxConflict = errors.New("transaction conflict")

type UpstreamKind string

const (
	UpstreamAuth        UpstreamKind = "auth"
	UpstreamBilling     UpstreamKind = "billing"
	UpstreamRateLimited UpstreamKind = "rate_limited"
	UpstreamTransient   UpstreamKind = "transient"
)

// UpstreamError is a failure of the AI provider.
type UpstreamError struct {
	Kind       UpstreamKind
	Retryable  bool
	RetryAfter time.Duration
	Err        error
}

func NewUpstreamError(kind UpstreamKind, retryAfter time.Duration, err error) *UpstreamError {
	return &UpstreamError{
		Kind:       kind,
		Retryable:  kind == UpstreamRateLimited || kind == UpstreamTransient,
		RetryAfter: retryAfter,
		Err:        err,
	}
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream %s", e.Kind)
	}
	return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Message() string {
	switch e.Kind {
	case UpstreamAuth:
		return "AI provider authentication failed. Please check the API key."
	case UpstreamBilling:
		return "AI provider billing issue. The account may be out of credits."
	case UpstreamRateLimited:
		return "AI provider rate limit exceeded. Please wait and try again."
	default:
		return "AI service temporarily unavailable. Please try again in a few minutes."
	}
}

type ErrorResponse struct {
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}
