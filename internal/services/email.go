package services

import (
	"context"
	"fmt"
	"log/slog"

	"campusevents/internal/domain"
)

const (
	templateRegistrationConfirmed = "registration_confirmed"
	templateOrganizerApproved     = "organizer_approved"
	templateOrganizerRejected     = "organizer_rejected"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("registration confirmation data is nil")
	}
	return s.send(ctx, templateRegistrationConfirmed, data.Email, data)
}

// SendOrganizerDecision picks the approved or rejected template from data.Approved.
func (s *emailService) SendOrganizerDecision(ctx context.Context, data *domain.OrganizerDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("organizer decision data is nil")
	}
	name := templateOrganizerRejected
	if data.Approved {
		name = templateOrganizerApproved
	}
	return s.send(ctx, name, data.Email, data)
}

func (s *emailService) send(ctx context.Context, templateName, to string, data any) error {
	if to == "" {
		return fmt.Errorf("%s email has no recipient", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", templateName, "to", to)
	return nil
}
