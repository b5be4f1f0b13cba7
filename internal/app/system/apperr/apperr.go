// internal/app/system/apperr/apperr.go

// Package apperr defines the error kinds every RPC procedure reports and
// their HTTP and wire mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/bilanhub/internal/app/store"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindExternalFailure
	KindUnavailable
)

var kindInfo = map[Kind]struct {
	code   string
	status int
}{
	KindInternal:        {"INTERNAL", http.StatusInternalServerError},
	KindValidation:      {"VALIDATION", http.StatusBadRequest},
	KindUnauthorized:    {"UNAUTHORIZED", http.StatusUnauthorized},
	KindForbidden:       {"FORBIDDEN", http.StatusForbidden},
	KindNotFound:        {"NOT_FOUND", http.StatusNotFound},
	KindConflict:        {"CONFLICT", http.StatusConflict},
	KindRateLimited:     {"TOO_MANY_REQUESTS", http.StatusTooManyRequests},
	KindExternalFailure: {"EXTERNAL_FAILURE", http.StatusBadGateway},
	KindUnavailable:     {"UNAVAILABLE", http.StatusServiceUnavailable},
}

// Code is the stable wire name of the kind.
func (k Kind) Code() string { return kindInfo[k].code }

// HTTPStatus is the status written for the kind.
func (k Kind) HTTPStatus() int { return kindInfo[k].status }

func (k Kind) String() string { return k.Code() }

// Error is a classified failure. Message is safe to show to the caller;
// Err is the underlying cause and is only logged. Fields maps invalid input
// field names to a short reason.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// ValidationFields reports invalid input with per-field detail.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: fields}
}

func Unauthorized() *Error { return newf(KindUnauthorized, "authentication required") }

func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }

// NotFound reports a missing entity by name, e.g. NotFound("bilan").
func NotFound(entity string) *Error { return newf(KindNotFound, "%s not found", entity) }

func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

func RateLimited() *Error { return newf(KindRateLimited, "too many requests") }

// External wraps a failing third-party call. service names the collaborator.
func External(service string, err error) *Error {
	return &Error{Kind: KindExternalFailure, Message: service + " request failed", Err: err}
}

func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "service temporarily unavailable", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From classifies err. Existing *Error values pass through; store sentinels
// map to NotFound, Conflict or Unavailable; anything else is Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "not found", Err: err}
	case errors.Is(err, store.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: "already exists", Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return Unavailable(err)
	}
	return Internal(err)
}

// FromStore classifies a store error for a lookup of entity, naming the
// entity in NotFound messages.
func FromStore(entity string, err error) *Error {
	if errors.Is(err, store.ErrNotFound) {
		e := NotFound(entity)
		e.Err = err
		return e
	}
	return From(err)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return From(err).Kind
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
