package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// serviceErrors maps domain sentinels to user-facing reasons. The first match wins.
var serviceErrors = []errorMapping{
	{domain.ErrCapacityExceeded, http.StatusBadRequest, helpers.ErrCodeEventFull, "This event is currently full."},
	{domain.ErrAlreadyRegistered, http.StatusBadRequest, helpers.ErrCodeAlreadyRegistered, "You are already registered for this event."},
	{domain.ErrRegistrationClosed, http.StatusBadRequest, helpers.ErrCodeRegistrationClosed, "Registration is closed because this event has already taken place."},
	{domain.ErrEventNotYetOccurred, http.StatusBadRequest, helpers.ErrCodeEventNotYetOccurred, "Certificate is available only after the event has taken place."},
	{domain.ErrNotRegistered, http.StatusForbidden, helpers.ErrCodeNotRegistered, "You were not registered for this event."},
	{domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden, "You are not allowed to manage this event."},
	{domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound, "Event not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, helpers.ErrCodeNotFound, "User not found"},
	{domain.ErrDuplicateEmail, http.StatusBadRequest, helpers.ErrCodeConflict, "An account with this email or username already exists."},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "Invalid email or password"},
	{domain.ErrAccountPending, http.StatusUnauthorized, helpers.ErrCodeAccountPending, "Your organizer account is still pending approval."},
}

// writeServiceError writes the response for err. Unmapped errors are logged and become a 500.
// notFound overrides the 404 message when the missing thing is not an event.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msg)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			msg := m.message
			if m.status == http.StatusNotFound && notFound != "" {
				msg = notFound
			}
			helpers.WriteJSONError(w, m.status, m.code, msg)
			return
		}
	}
	logger.ErrorContext(r.Context(), "request failed",
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"method", r.Method,
		"err", err,
	)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
}

func writeUnauthorized(w http.ResponseWriter) {
	helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
}
