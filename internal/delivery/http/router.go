package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
	Certificate  *controllers.CertificateController
	Admin        *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(verifier, logger)
	student := middleware.RequireAuth(verifier, logger, domain.RoleStudent)
	organizer := middleware.RequireAuth(verifier, logger, domain.RoleOrganizer, domain.RoleSuperAdmin)
	superAdmin := middleware.RequireAuth(verifier, logger, domain.RoleSuperAdmin)

	// Auth
	mux.HandleFunc("POST /auth/signup/student", c.Auth.SignUpStudent)
	mux.HandleFunc("POST /auth/signup/organizer", c.Auth.SignUpOrganizer)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/logout", c.Auth.Logout)
	mux.HandleFunc("GET /users/me", authed(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /events", c.Event.ListUpcomingEvents)
	mux.HandleFunc("GET /events/mine", organizer(c.Event.ListMyOrganizedEvents))
	mux.HandleFunc("GET /events/{eventID}", c.Event.GetEvent)
	mux.HandleFunc("POST /events", organizer(c.Event.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", organizer(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", organizer(c.Event.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/register", student(c.Registration.Register))
	mux.HandleFunc("DELETE /events/{eventID}/register", student(c.Registration.Unregister))
	mux.HandleFunc("GET /events/{eventID}/attendees", organizer(c.Registration.ListAttendees))
	mux.HandleFunc("GET /registrations/my-events", student(c.Registration.ListMyEvents))

	// Certificates
	mux.HandleFunc("GET /certificates/events/{eventID}", student(c.Certificate.Download))

	// Super-admin
	mux.HandleFunc("GET /superadmin/organizer-requests", superAdmin(c.Admin.ListOrganizerRequests))
	mux.HandleFunc("POST /superadmin/organizer-requests/{userID}/approve", superAdmin(c.Admin.ApproveOrganizer))
	mux.HandleFunc("POST /superadmin/organizer-requests/{userID}/reject", superAdmin(c.Admin.RejectOrganizer))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
