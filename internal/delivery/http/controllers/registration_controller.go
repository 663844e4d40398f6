package controllers

import (
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// RegistrationSuccessResponse is the success response envelope for POST /events/{eventID}/register (201).
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// UnregisterResponse is the data payload for DELETE /events/{eventID}/register.
type UnregisterResponse struct {
	Result  domain.UnregisterResult `json:"result"`
	Message string                  `json:"message"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Students only. Fails with event_full, already_registered or registration_closed.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: event_full, already_registered, registration_closed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	reg, err := c.Service.Register(r.Context(), studentID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Unregister godoc
// @Summary Unregister from an event
// @Description Students only. Repeating the call reports not_registered.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.result: unregistered"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_registered"
// @Router /events/{eventID}/register [delete]
func (c *RegistrationController) Unregister(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	result, err := c.Service.Unregister(r.Context(), studentID, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	if result == domain.NotRegistered {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotRegistered, "You are not registered for this event.")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UnregisterResponse{Result: result, Message: "Successfully unregistered from the event."})
}

// ListAttendees godoc
// @Summary List an event's attendees
// @Description Event owner or super-admin only.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the attendees"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendees [get]
func (c *RegistrationController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	attendees, err := c.Service.ListAttendees(r.Context(), eventID, principal)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendees)
}

// ListMyEvents godoc
// @Summary List the caller's registered events
// @Description Students only. Ordered by event date, soonest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /registrations/my-events [get]
func (c *RegistrationController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), studentID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
