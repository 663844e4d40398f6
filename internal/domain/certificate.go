package domain

import (
	"context"
	"time"
)

// Certificate is a rendered proof of participation.
type Certificate struct {
	EventID     string
	StudentID   string
	FileName    string
	ContentType string
	Content     []byte
}

// CertificateData is what the renderer puts on the page.
type CertificateData struct {
	IssuerName    string
	RecipientName string
	EventTitle    string
	EventDate     time.Time
	IssuedAt      time.Time
}

// CertificateRenderer turns certificate data into a document.
type CertificateRenderer interface {
	ContentType() string
	Render(data *CertificateData) ([]byte, error)
}

// CertificateService gates and issues participation certificates.
type CertificateService interface {
	// CheckEligibility returns the event when the student may receive a certificate for it.
	// Fails with ErrNotFound, ErrNotRegistered, or ErrEventNotYetOccurred.
	CheckEligibility(ctx context.Context, studentID, eventID string) (*Event, error)
	IssueCertificate(ctx context.Context, studentID, eventID string) (*Certificate, error)
}
