package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Capacity    *int      `json:"capacity"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if !domain.EventCategory(c.Category).Valid() {
		errs = append(errs, "category must be one of the listed event types")
	}
	if c.Capacity != nil && *c.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. All fields are optional;
// omitted fields are unchanged. clear_capacity removes the limit.
type UpdateEventRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Date          *time.Time `json:"date"`
	Location      *string    `json:"location"`
	Category      *string    `json:"category"`
	ImageURL      *string    `json:"image_url"`
	Capacity      *int       `json:"capacity"`
	ClearCapacity bool       `json:"clear_capacity"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	if u.Date != nil && u.Date.IsZero() {
		errs = append(errs, "date cannot be empty")
	}
	if u.Category != nil && !domain.EventCategory(*u.Category).Valid() {
		errs = append(errs, "category must be one of the listed event types")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	if u.Capacity != nil && u.ClearCapacity {
		errs = append(errs, "capacity and clear_capacity are mutually exclusive")
	}
	return errs
}

func (u UpdateEventRequest) toDomain() *domain.EventUpdate {
	upd := &domain.EventUpdate{
		Title:         u.Title,
		Description:   u.Description,
		Date:          u.Date,
		Location:      u.Location,
		ImageURL:      u.ImageURL,
		Capacity:      u.Capacity,
		ClearCapacity: u.ClearCapacity,
	}
	if u.Category != nil {
		c := domain.EventCategory(*u.Category)
		upd.Category = &c
	}
	return upd
}

// ListEventsResponse is the data payload for GET /events.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID}.
type DeleteEventResponse struct {
	Message              string `json:"message"`
	RegistrationsRemoved int64  `json:"registrations_removed"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListUpcomingEvents godoc
// @Summary List upcoming events
// @Description Public. Events dated now or later, soonest first.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListUpcomingEvents(r.Context(), params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMyOrganizedEvents godoc
// @Summary List events owned by the caller
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/mine [get]
func (c *EventController) ListMyOrganizedEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	events, err := c.Service.ListEventsByOwner(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Organizers and super-admins only. The caller becomes the owner. Omit capacity for unlimited seats.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	now := time.Now()
	event := domain.NewEvent(req.Title, req.Description, req.Date, req.Location, domain.EventCategory(req.Category), req.ImageURL, req.Capacity, userID, now, now)
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Owner or super-admin only. A capacity change moves the remaining seats by the same amount and may not drop below current registrations.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, principal, req.toDomain())
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Owner or super-admin only. Removes every registration for the event first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains message and registrations_removed"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	removed, err := c.Service.DeleteEvent(r.Context(), eventID, principal)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{
		Message:              "Event and associated registrations removed",
		RegistrationsRemoved: removed,
	})
}
