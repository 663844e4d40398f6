package controllers

import (
	"log/slog"
	"net/http"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

const pendingRequestNotFound = "Pending organizer request not found."

// AdminController handles the super-admin organizer onboarding endpoints.
type AdminController struct {
	Logger  *slog.Logger
	Service domain.AdminService
}

func NewAdminController(logger *slog.Logger, svc domain.AdminService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// ListOrganizerRequests godoc
// @Summary List pending organizer requests
// @Tags superadmin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains pending organizers"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /superadmin/organizer-requests [get]
func (c *AdminController) ListOrganizerRequests(w http.ResponseWriter, r *http.Request) {
	users, err := c.Service.ListOrganizerRequests(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// ApproveOrganizer godoc
// @Summary Approve an organizer request
// @Tags superadmin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the approved user"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /superadmin/organizer-requests/{userID}/approve [post]
func (c *AdminController) ApproveOrganizer(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	user, err := c.Service.ApproveOrganizer(r.Context(), userID, reviewerID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err, pendingRequestNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// RejectOrganizer godoc
// @Summary Reject an organizer request
// @Description Removes the pending account.
// @Tags superadmin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /superadmin/organizer-requests/{userID}/reject [post]
func (c *AdminController) RejectOrganizer(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathUUID(w, r, "userID")
	if !ok {
		return
	}
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	if err := c.Service.RejectOrganizer(r.Context(), userID, reviewerID); err != nil {
		writeServiceError(c.Logger, w, r, err, pendingRequestNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.MessageResponse{Message: "Organizer request rejected and user removed."})
}
