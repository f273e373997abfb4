package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"

	"lumaevents/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// RegistrationConfirmed is the template set sent after a successful registration.
const RegistrationConfirmed = "registration_confirmed"

// messageTemplates is one parsed template set: subject line, HTML body and plain-text body.
type messageTemplates struct {
	subject *template.Template
	html    *htmltemplate.Template
	text    *template.Template
	check   func(data any) error
}

type templateRenderer struct {
	sets map[string]*messageTemplates
}

// NewTemplateRenderer parses the embedded template sets once. Broken embedded
// templates are a build defect, so parsing failures panic at startup.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		sets: map[string]*messageTemplates{
			RegistrationConfirmed: mustParseSet(RegistrationConfirmed, checkRegistrationConfirmed),
		},
	}
}

func mustParseSet(name string, check func(any) error) *messageTemplates {
	return &messageTemplates{
		subject: template.Must(template.ParseFS(templateFS, "templates/"+name+"_subject.txt")),
		html:    htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/"+name+".html")),
		text:    template.Must(template.ParseFS(templateFS, "templates/"+name+".txt")),
		check:   check,
	}
}

// checkRegistrationConfirmed rejects data the confirmation cannot be sent without.
func checkRegistrationConfirmed(data any) error {
	var d domain.RegistrationConfirmationData
	switch v := data.(type) {
	case *domain.RegistrationConfirmationData:
		if v == nil {
			return fmt.Errorf("%w: confirmation data is required", domain.ErrInvalidInput)
		}
		d = *v
	case domain.RegistrationConfirmationData:
		d = v
	default:
		return fmt.Errorf("%w: %s expects RegistrationConfirmationData, got %T", domain.ErrInvalidInput, RegistrationConfirmed, data)
	}
	var missing []string
	if strings.TrimSpace(d.EventTitle) == "" {
		missing = append(missing, "event title")
	}
	if d.RegistrationID == "" {
		missing = append(missing, "registration id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: confirmation is missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// Render executes the named template set with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	set, ok := r.sets[templateName]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	if err := set.check(data); err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err := set.subject.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	// Header injection guard: a subject is a single line.
	subject = strings.Join(strings.Fields(buf.String()), " ")

	buf.Reset()
	if err := set.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	htmlBody = buf.String()

	buf.Reset()
	if err := set.text.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return subject, htmlBody, buf.String(), nil
}
