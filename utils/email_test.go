package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLetterhead(t *testing.T) {
	html := renderLetterhead(EmailMessage{
		Body:    "<p>New order placed</p>",
		CTAText: "View in Dashboard",
		CTAURL:  "http://localhost:5173/management-panel",
	})

	assert.Contains(t, html, "Maryland Pharmacy")
	assert.Contains(t, html, "Your Trusted Healthcare Partner")
	assert.Contains(t, html, "<p>New order placed</p>")
	assert.Contains(t, html, "View in Dashboard")
	assert.Contains(t, html, "http://localhost:5173/management-panel")
	assert.Contains(t, html, "Alexandria, Egypt")
}

func TestRenderLetterheadDefaults(t *testing.T) {
	html := renderLetterhead(EmailMessage{CTAURL: "https://example.com"})

	assert.Contains(t, html, "No specific message text provided.")
	assert.Contains(t, html, "Click Here")
}

func TestRenderLetterheadWithoutCTA(t *testing.T) {
	html := renderLetterhead(EmailMessage{Body: "<p>hi</p>"})

	assert.NotContains(t, html, "use this link")
}

func TestSendWithoutAPIKey(t *testing.T) {
	es := NewEmailService("", "sender@example.com")

	err := es.Send(EmailMessage{To: []string{"a@example.com"}, Subject: "x"})
	assert.ErrorIs(t, err, ErrMailerDisabled)
}
