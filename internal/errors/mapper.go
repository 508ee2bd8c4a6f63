package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"google.golang.org/grpc/codes"
	"gorm.io/gorm"
)

// Kind classifies a failure for the transports.
type Kind string

const (
	KindValidation   Kind = "validation_failed"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
)

// Error is the service-level error carried up to the HTTP layer.
//
// Fields holds field-level reasons for KindValidation (field -> reason).
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Msg + " (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed input for a single field.
func Validation(field, reason string) error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Fields: map[string]string{field: reason}}
}

// ValidationFields reports malformed input for several fields at once.
func ValidationFields(fields map[string]string) error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Fields: fields}
}

func Conflict(msg string) error     { return &Error{Kind: KindConflict, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }

// Internal wraps an unexpected failure.
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Msg: fmt.Sprintf("%s failed", op), Err: err}
}

// Map converts repo/infra errors into service errors.
// Errors that are already *Error pass through untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Msg: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Msg: "already exists", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindInternal, Msg: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindInternal, Msg: "request was canceled", Err: err}

	default:
		return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
	}
}

// KindOf reports the kind of err after mapping.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(Map(err), &se) {
		return se.Kind
	}
	return KindInternal
}

// Is reports whether err maps to kind k.
func Is(err error, k Kind) bool { return KindOf(err) == k }

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode returns the gRPC status code for err.
func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case "":
		return codes.OK
	case KindValidation:
		return codes.InvalidArgument
	case KindConflict:
		return codes.AlreadyExists
	case KindUnauthorized:
		return codes.Unauthenticated
	case KindForbidden:
		return codes.PermissionDenied
	case KindNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}
