package errors

import (
	"errors"
	"net/http"
)

// StatusCode maps an error to the HTTP status a handler should respond with.
//
// Authentication and authorization failures both map to 401: the service
// deliberately does not distinguish "who are you" from "you may not" in its
// responses. Exhaustion of every identity candidate is an effective
// authentication failure and maps the same way. Unrecognized errors are
// treated as internal failures.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthentication), errors.Is(err, ErrAuthorization), errors.Is(err, ErrNetwork):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable identifier for an error kind,
// suitable for the "error" field of a JSON error body.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAuthentication):
		return "authentication_failed"
	case errors.Is(err, ErrAuthorization):
		return "authorization_failed"
	case errors.Is(err, ErrNetwork):
		return "authentication_failed"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
