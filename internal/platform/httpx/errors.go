package httpx

import (
	"errors"
	"net/http"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// RespondError maps taxonomy errors to HTTP responses. Unexpected failures
// collapse to a 500 with the raw error exposed only outside production.
func RespondError(w http.ResponseWriter, err error, production bool) {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		JSON(w, http.StatusBadRequest, Envelope{
			Success: false,
			Message: "Validation error",
			Errors:  verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, messageOf(err, "Unauthorized"))
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, messageOf(err, "Forbidden"))
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, messageOf(err, "Not found"))
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, messageOf(err, "Conflict"))
	case errors.Is(err, shared.ErrBadRequest):
		Fail(w, http.StatusBadRequest, messageOf(err, "Bad request"))
	default:
		msg := "Internal server error"
		if !production && err != nil {
			msg = err.Error()
		}
		Fail(w, http.StatusInternalServerError, msg)
	}
}

// messageOf extracts the human-readable part of a wrapped taxonomy error.
// Errors are built as fmt.Errorf("%w: reason", sentinel); the reason is what
// callers should see.
func messageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := err.Error()
	for _, sentinel := range []error{
		shared.ErrUnauthorized,
		shared.ErrForbidden,
		shared.ErrNotFound,
		shared.ErrConflict,
		shared.ErrBadRequest,
	} {
		prefix := sentinel.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return capitalize(msg[len(prefix):])
		}
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-('a'-'A')) + s[1:]
	}
	return s
}
