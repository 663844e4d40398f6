package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"campusevents/internal/domain"
)

var testLogger = slog.New(slog.DiscardHandler)

const testTimeout = 5 * time.Second

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	nextID    int
	getErr    error
	updateErr error
	deleteErr error
	updated   *domain.EventUpdate
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		f.nextID++
		e.ID = fmt.Sprintf("event-%d", f.nextID)
	}
	f.events[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.events {
		if !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	total := len(out)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if params.PageSize <= 0 || end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.events {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, upd *domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = upd
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	switch {
	case upd.ClearCapacity:
		e.Capacity, e.SeatsRemaining = nil, nil
	case upd.Capacity != nil:
		c := *upd.Capacity
		e.Capacity = &c
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

// fakeRegistrationRepo implements domain.RegistrationRepository in memory. Seat counting
// mirrors the storage behaviour: InsertWithSeat requires a seat from the event held by events,
// Insert takes one only when any is left and both deletes give it back.
type fakeRegistrationRepo struct {
	mu        sync.Mutex
	events    *fakeEventRepo
	regs      []*domain.Registration
	attendees map[string][]*domain.Attendee
	nextID    int
	insertErr error
	deleteErr error
	inserts   int
}

func newFakeRegistrationRepo(events *fakeEventRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{events: events, attendees: make(map[string][]*domain.Attendee)}
}

func (f *fakeRegistrationRepo) find(studentID, eventID string) int {
	for i, r := range f.regs {
		if r.StudentID == studentID && r.EventID == eventID {
			return i
		}
	}
	return -1
}

func (f *fakeRegistrationRepo) CountForEvent(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationRepo) Exists(ctx context.Context, studentID, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(studentID, eventID) >= 0, nil
}

func (f *fakeRegistrationRepo) insertLocked(reg *domain.Registration) error {
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.find(reg.StudentID, reg.EventID) >= 0 {
		return &domain.DuplicateKeyError{Constraint: "event_registrations_event_id_user_id_key"}
	}
	f.nextID++
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.regs = append(f.regs, reg)
	return nil
}

func (f *fakeRegistrationRepo) Insert(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertLocked(reg); err != nil {
		return err
	}
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	if e, ok := f.events.events[reg.EventID]; ok && e.SeatsRemaining != nil && *e.SeatsRemaining > 0 {
		*e.SeatsRemaining--
	}
	return nil
}

func (f *fakeRegistrationRepo) InsertWithSeat(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events.mu.Lock()
	e, ok := f.events.events[reg.EventID]
	f.events.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	if e.SeatsRemaining != nil && *e.SeatsRemaining <= 0 {
		return domain.ErrCapacityExceeded
	}
	if err := f.insertLocked(reg); err != nil {
		return err
	}
	if e.SeatsRemaining != nil {
		*e.SeatsRemaining--
	}
	return nil
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, studentID, eventID string) (int64, error) {
	f.mu.Lock()
	if f.deleteErr != nil {
		f.mu.Unlock()
		return 0, f.deleteErr
	}
	i := f.find(studentID, eventID)
	if i < 0 {
		f.mu.Unlock()
		return 0, nil
	}
	f.regs = append(f.regs[:i], f.regs[i+1:]...)
	f.mu.Unlock()

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	if e, ok := f.events.events[eventID]; ok && e.SeatsRemaining != nil && *e.SeatsRemaining < *e.Capacity {
		*e.SeatsRemaining++
	}
	return 1, nil
}

func (f *fakeRegistrationRepo) DeleteWithSeat(ctx context.Context, studentID, eventID string) (int64, error) {
	return f.Delete(ctx, studentID, eventID)
}

func (f *fakeRegistrationRepo) DeleteAllForEvent(ctx context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.regs[:0]
	var removed int64
	for _, r := range f.regs {
		if r.EventID == eventID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.regs = kept
	return removed, nil
}

func (f *fakeRegistrationRepo) ListForEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListForStudent(ctx context.Context, studentID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.regs {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attendees[eventID], nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	roles     map[string][]string
	nextID    int
	createErr error
	getErr    error
	updateErr error
	deleted   []string
	reviewer  string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		roles:   make(map[string][]string),
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListByRoleAndStatus(ctx context.Context, role string, status domain.UserStatus) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.byID {
		if u.HasRole(role) && u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus, reviewedBy string, reviewedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	f.reviewer = reviewedBy
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byID, id)
	delete(f.byEmail, u.Email)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

// fakeRoleRepo implements domain.RoleRepository for tests.
type fakeRoleRepo struct {
	byCode map[string]*domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{byCode: map[string]*domain.Role{
		domain.RoleStudent:    domain.NewRole("role-student", domain.RoleStudent),
		domain.RoleOrganizer:  domain.NewRole("role-organizer", domain.RoleOrganizer),
		domain.RoleSuperAdmin: domain.NewRole("role-admin", domain.RoleSuperAdmin),
	}}
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	if r, ok := f.byCode[code]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err   error
	roles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.roles = roles
	return "token-" + userID, nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	mu            sync.Mutex
	confirmations []*domain.RegistrationConfirmedEmailData
	decisions     []*domain.OrganizerDecisionEmailData
	err           error
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, data)
	return f.err
}

func (f *fakeEmailService) SendOrganizerDecision(ctx context.Context, data *domain.OrganizerDecisionEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, data)
	return f.err
}

var errStorage = errors.New("storage unavailable")
