package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// writeServiceError maps a service error to its HTTP status and error code.
// Anything that is not a known domain error is logged and reported as an
// opaque 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "you are not the owner of this event")
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrDuplicateUser):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "username or email already registered")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, helpers.MsgInternalError)
	}
}

// requireUserID reads the authenticated user from the request context and
// writes a 401 when it is absent.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
