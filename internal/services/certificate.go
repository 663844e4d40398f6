package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type certificateService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	renderer         domain.CertificateRenderer
	issuerName       string
	contextTimeout   time.Duration
	now              func() time.Time
}

func NewCertificateService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	renderer domain.CertificateRenderer,
	issuerName string,
	timeout time.Duration,
) domain.CertificateService {
	return &certificateService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		renderer:         renderer,
		issuerName:       issuerName,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

// CheckEligibility is evaluated fresh on every call: registration first, then the event date.
func (s *certificateService) CheckEligibility(ctx context.Context, studentID, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	registered, err := s.registrationRepo.Exists(ctx, studentID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if !registered {
		return nil, domain.ErrNotRegistered
	}
	if !event.HasOccurred(s.now()) {
		return nil, domain.ErrEventNotYetOccurred
	}
	return event, nil
}

func (s *certificateService) IssueCertificate(ctx context.Context, studentID, eventID string) (*domain.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.CheckEligibility(ctx, studentID, eventID)
	if err != nil {
		return nil, err
	}
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	content, err := s.renderer.Render(&domain.CertificateData{
		IssuerName:    s.issuerName,
		RecipientName: student.DisplayName(),
		EventTitle:    event.Title,
		EventDate:     event.Date,
		IssuedAt:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return &domain.Certificate{
		EventID:     eventID,
		StudentID:   studentID,
		FileName:    certificateFileName(event.Title),
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func certificateFileName(title string) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(title, "_"), "_")
	if slug == "" {
		slug = "event"
	}
	return "certificate_" + slug + ".pdf"
}
