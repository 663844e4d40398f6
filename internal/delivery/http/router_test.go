package http_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/adapters/auth"
	httpdelivery "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

const (
	routerSecret  = "router-test-secret"
	routerEventID = "0b6f5d4e-8f3b-4a52-9d2c-3e1f2a4b5c6d"
)

type stubEvents struct {
	domain.EventService
}

func (stubEvents) ListUpcomingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return []*domain.Event{}, 0, nil
}

type stubRegistrations struct {
	domain.RegistrationService
	calls int
}

func (s *stubRegistrations) Register(ctx context.Context, studentID, eventID string) (*domain.Registration, error) {
	s.calls++
	return &domain.Registration{ID: "r1", EventID: eventID, StudentID: studentID}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubRegistrations) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	regs := &stubRegistrations{}
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:         controllers.NewAuthController(logger, nil, time.Hour, false),
		Event:        controllers.NewEventController(logger, stubEvents{}),
		Registration: controllers.NewRegistrationController(logger, regs),
		Certificate:  controllers.NewCertificateController(logger, nil),
		Admin:        controllers.NewAdminController(logger, nil),
	}, auth.NewJWTVerifier(routerSecret), logger)
	return mux, regs
}

func issueToken(t *testing.T, roles ...string) string {
	t.Helper()
	token, err := auth.NewJWTIssuer(routerSecret).Issue("7c9e6679-7425-40de-944b-e07fc1f90ae7", "u@uni.edu", roles, time.Hour)
	require.NoError(t, err)
	return token
}

func TestRouter_PublicEventListing(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_RegisterRequiresStudent(t *testing.T) {
	tests := []struct {
		name       string
		authorize  func(r *http.Request)
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "anonymous",
			authorize:  func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "organizer token",
			authorize: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+issueToken(t, domain.RoleOrganizer))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "forged token",
			authorize: func(r *http.Request) {
				token, err := auth.NewJWTIssuer("other-secret").Issue("x", "x@uni.edu", []string{domain.RoleStudent}, time.Hour)
				require.NoError(t, err)
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "student cookie",
			authorize: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middleware.TokenCookieName, Value: issueToken(t, domain.RoleStudent)})
			},
			wantStatus: http.StatusCreated,
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, regs := newTestRouter(t)
			req := httptest.NewRequest(http.MethodPost, "/events/"+routerEventID+"/register", nil)
			tt.authorize(req)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalls, regs.calls)
		})
	}
}

func TestRouter_SuperAdminOnly(t *testing.T) {
	h, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/superadmin/organizer-requests", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, domain.RoleOrganizer))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
