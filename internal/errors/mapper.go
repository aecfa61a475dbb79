package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Map converts service/repo/infra errors into an HTTP status code and a
// client-safe message. Keeps the handler layer clean by centralizing error
// classification.
func Map(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrSelfSwipe),
		errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, ErrBadCredentials),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotApproved),
		errors.Is(err, ErrSuspended),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrBlocked):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrMatchNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"

	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, err.Error()

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return 499, "request was canceled"

	default:
		// fallback → bubble up error message for debugging
		return http.StatusInternalServerError, err.Error()
	}
}
