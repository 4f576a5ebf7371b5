package services

import (
	"errors"
	"fmt"
)

// Kind classifies failures crossing the service boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotVerified
	KindIncorrectCode
	KindNotFound
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotVerified:
		return "not_verified"
	case KindIncorrectCode:
		return "incorrect_code"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "server_error"
	}
}

// Error is a classified service failure. Message is safe to show to callers;
// Err carries internal detail for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	errInvalidCredentials = newError(KindUnauthorized, "invalid email or password")
	errInvalidToken       = newError(KindUnauthorized, "invalid or expired token")
	errMissingToken       = newError(KindUnauthorized, "missing authorization token")
	errNotVerified        = newError(KindNotVerified, "account is not verified")
	errIncorrectCode      = newError(KindIncorrectCode, "incorrect or expired verification code")
	errUserNotFound       = newError(KindNotFound, "user not found")
	errProfileNotFound    = newError(KindNotFound, "profile not found")
	errCouponNotFound     = newError(KindNotFound, "coupon not found")
	errOTPRateLimited     = newError(KindRateLimited, "too many verification codes requested, try again later")
)
