package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmedEmailData holds data for the registration confirmation email.
type RegistrationConfirmedEmailData struct {
	Email         string
	Name          string
	EventTitle    string
	EventDate     time.Time
	EventLocation string
}

// OrganizerDecisionEmailData holds data for the organizer approval or rejection email.
type OrganizerDecisionEmailData struct {
	Email    string
	Name     string
	ClubName string
	Approved bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmedEmailData) error
	SendOrganizerDecision(ctx context.Context, data *OrganizerDecisionEmailData) error
}
