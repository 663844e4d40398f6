package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

const (
	testEventID = "0b6f5d4e-8f3b-4a52-9d2c-3e1f2a4b5c6d"
	testUserID  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

var testLogger = slog.New(slog.DiscardHandler)

// asUser attaches a principal to the request context the way RequireAuth does.
func asUser(ctx context.Context, userID string, roles ...string) context.Context {
	return middleware.SetPrincipal(ctx, &domain.Principal{UserID: userID, Roles: roles})
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, rr)
	require.NotNil(t, env.Error, "expected an error envelope")
	return env.Error.Code
}

type mockAuthService struct {
	signUpInput *domain.SignUpInput
	user        *domain.User
	token       string
	err         error
}

func (m *mockAuthService) SignUp(ctx context.Context, in *domain.SignUpInput) (*domain.User, string, error) {
	m.signUpInput = in
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.token, m.user, nil
}

func (m *mockAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

type mockEventService struct {
	event     *domain.Event
	events    []*domain.Event
	total     int
	removed   int64
	err       error
	created   *domain.Event
	update    *domain.EventUpdate
	principal *domain.Principal
	params    domain.PaginationParams
}

func (m *mockEventService) CreateEvent(ctx context.Context, e *domain.Event) error {
	m.created = e
	if m.err != nil {
		return m.err
	}
	e.ID = testEventID
	return nil
}

func (m *mockEventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return m.event, m.err
}

func (m *mockEventService) ListUpcomingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	m.params = params
	return m.events, m.total, m.err
}

func (m *mockEventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	return m.events, m.err
}

func (m *mockEventService) UpdateEvent(ctx context.Context, eventID string, p *domain.Principal, upd *domain.EventUpdate) (*domain.Event, error) {
	m.update, m.principal = upd, p
	return m.event, m.err
}

func (m *mockEventService) DeleteEvent(ctx context.Context, eventID string, p *domain.Principal) (int64, error) {
	m.principal = p
	return m.removed, m.err
}

type mockRegistrationService struct {
	reg       *domain.Registration
	result    domain.UnregisterResult
	attendees []*domain.Attendee
	events    []*domain.Event
	err       error
	studentID string
}

func (m *mockRegistrationService) Register(ctx context.Context, studentID, eventID string) (*domain.Registration, error) {
	m.studentID = studentID
	return m.reg, m.err
}

func (m *mockRegistrationService) Unregister(ctx context.Context, studentID, eventID string) (domain.UnregisterResult, error) {
	m.studentID = studentID
	return m.result, m.err
}

func (m *mockRegistrationService) ListAttendees(ctx context.Context, eventID string, p *domain.Principal) ([]*domain.Attendee, error) {
	return m.attendees, m.err
}

func (m *mockRegistrationService) ListMyEvents(ctx context.Context, studentID string) ([]*domain.Event, error) {
	m.studentID = studentID
	return m.events, m.err
}

type mockCertificateService struct {
	cert *domain.Certificate
	err  error
}

func (m *mockCertificateService) CheckEligibility(ctx context.Context, studentID, eventID string) (*domain.Event, error) {
	return nil, m.err
}

func (m *mockCertificateService) IssueCertificate(ctx context.Context, studentID, eventID string) (*domain.Certificate, error) {
	return m.cert, m.err
}

type mockAdminService struct {
	users    []*domain.User
	user     *domain.User
	err      error
	reviewer string
}

func (m *mockAdminService) ListOrganizerRequests(ctx context.Context) ([]*domain.User, error) {
	return m.users, m.err
}

func (m *mockAdminService) ApproveOrganizer(ctx context.Context, userID, reviewerID string) (*domain.User, error) {
	m.reviewer = reviewerID
	return m.user, m.err
}

func (m *mockAdminService) RejectOrganizer(ctx context.Context, userID, reviewerID string) error {
	m.reviewer = reviewerID
	return m.err
}
