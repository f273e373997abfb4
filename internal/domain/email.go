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

// RegistrationConfirmationData holds data for the registration confirmation email.
type RegistrationConfirmationData struct {
	Email          string
	FullName       string
	EventTitle     string
	EventDate      time.Time
	EventLocation  string
	RegistrationID string
}

// FormattedDate renders the event date the way the confirmation email shows it.
func (d RegistrationConfirmationData) FormattedDate() string {
	if d.EventDate.IsZero() {
		return "the scheduled date"
	}
	return d.EventDate.Format("Monday, January 2, 2006")
}

// ConfirmationSender sends the registration confirmation for a registration id.
// Delivery is best effort: callers log failures and never roll back.
type ConfirmationSender interface {
	SendRegistrationConfirmation(ctx context.Context, registrationID string) error
}
