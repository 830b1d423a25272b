package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrMailerDisabled is returned when no SendGrid API key is configured.
// Callers treat dispatch as best-effort, so this only ever shows up in logs.
var ErrMailerDisabled = errors.New("email: no API key configured")

// EmailMessage is one outbound email before letterhead rendering. Body is an
// HTML fragment; when CTAURL is set a branded button linking to it is
// appended below the body.
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
	CTAText string
	CTAURL  string
}

// EmailService renders the pharmacy letterhead and delivers through SendGrid.
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService builds the dispatcher. An empty API key yields a disabled
// service whose Send always errors (and is swallowed upstream).
func NewEmailService(apiKey, sender string) *EmailService {
	es := &EmailService{sender: sender}
	if apiKey != "" {
		es.client = sendgrid.NewSendClient(apiKey)
	}
	return es
}

// Send renders the letterhead around the message body and dispatches it to
// every recipient in a single personalization.
func (es *EmailService) Send(msg EmailMessage) error {
	if es.client == nil {
		return ErrMailerDisabled
	}
	if len(msg.To) == 0 {
		return errors.New("email: no recipients")
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("Maryland Pharmacy", es.sender))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, addr := range msg.To {
		p.AddTos(mail.NewEmail("", addr))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", renderLetterhead(msg)))

	resp, err := es.client.Send(m)
	if err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("email: provider returned status %d", resp.StatusCode)
	}
	return nil
}

// renderLetterhead wraps the body in the fixed Maryland Pharmacy template:
// red masthead, content block, optional CTA button, notification note and
// footer.
func renderLetterhead(msg EmailMessage) string {
	body := msg.Body
	if body == "" {
		body = `<p style="font-size: 16px; margin-bottom: 20px;">No specific message text provided.</p>`
	}

	button := ""
	if msg.CTAURL != "" {
		label := msg.CTAText
		if label == "" {
			label = "Click Here"
		}
		button = fmt.Sprintf(`
      <div style="text-align: center; margin: 30px 0;">
        <a href="%[1]s" style="background-color: #DC2626; color: white; padding: 14px 28px; text-decoration: none; border-radius: 8px; font-weight: bold; font-size: 16px; display: inline-block;">%[2]s</a>
      </div>
      <p style="font-size: 14px; color: #64748b; margin-top: 20px; text-align: center;">
        If the button above doesn't work, use this link:
        <br>
        <a href="%[1]s" style="color: #DC2626; word-break: break-all;">%[1]s</a>
      </p>`, msg.CTAURL, label)
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 600px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 12px; overflow: hidden; background-color: #ffffff;">`)
	b.WriteString(`<div style="background-color: #DC2626; padding: 30px; text-align: center;">`)
	b.WriteString(`<h1 style="color: #ffffff; margin: 0; font-size: 26px; font-weight: 800;">Maryland Pharmacy</h1>`)
	b.WriteString(`<p style="color: rgba(255,255,255,0.9); margin: 8px 0 0; font-size: 14px; font-weight: 500;">Your Trusted Healthcare Partner</p>`)
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding: 40px 30px; color: #334155; line-height: 1.6;">`)
	b.WriteString(`<h2 style="color: #1e293b; font-size: 20px; margin-top: 0; font-weight: 700;">Hello,</h2>`)
	b.WriteString(body)
	b.WriteString(button)
	b.WriteString(`<div style="margin-top: 30px; padding: 15px; background-color: #f8fafc; border-left: 4px solid #DC2626; border-radius: 4px; font-size: 13px; color: #475569;">`)
	b.WriteString(`<strong>Notification:</strong> This is an automated email from Maryland Pharmacy system.`)
	b.WriteString(`</div></div>`)
	b.WriteString(fmt.Sprintf(`<div style="background-color: #f1f5f9; padding: 20px; text-align: center; font-size: 12px; color: #94a3b8; border-top: 1px solid #e2e8f0;">
      <p style="margin: 0; font-weight: 600;">&copy; %d Maryland Pharmacy</p>
      <p style="margin: 5px 0;">Alexandria, Egypt</p>
    </div>`, time.Now().Year()))
	b.WriteString(`</div>`)
	return b.String()
}
