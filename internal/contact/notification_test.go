package contact_test

import (
	"strings"
	"testing"

	"github.com/davidbraun/portfolio-api/internal/contact"
	"github.com/stretchr/testify/assert"
)

func TestComposeNotificationEscapesFields(t *testing.T) {
	data := &contact.ContactFormData{
		Name:    "<script>alert(1)</script>",
		Email:   "test@example.com",
		Subject: `"quoted"`,
		Message: "<img src=x onerror=alert(1)>",
	}

	n := contact.ComposeNotification(data)

	assert.NotContains(t, n.HTML, "<script>")
	assert.Contains(t, n.HTML, "&lt;script&gt;")
	assert.NotContains(t, n.HTML, "<img")
	assert.Contains(t, n.HTML, "&lt;img")
	assert.Contains(t, n.HTML, "&quot;quoted&quot;")
}

func TestComposeNotificationMessageLineBreaks(t *testing.T) {
	data := &contact.ContactFormData{
		Name:    "Test User",
		Email:   "test@example.com",
		Subject: "Hi",
		Message: "line one\nline two\nline three",
	}

	n := contact.ComposeNotification(data)
	assert.Contains(t, n.HTML, "line one<br>line two<br>line three")
}

func TestComposeNotificationOptionalRows(t *testing.T) {
	data := &contact.ContactFormData{
		Name:        "Test User",
		Email:       "test@example.com",
		Subject:     "Hi",
		Message:     "Hello",
		ProjectType: "business",
		Urgency:     "today",
	}

	n := contact.ComposeNotification(data)
	assert.Contains(t, n.HTML, "Project Type:</strong> business")
	assert.Contains(t, n.HTML, "Urgency:</strong> today")
	assert.NotContains(t, n.HTML, "Service Needed")
}

func TestComposeNotificationSubjectAndReplyTo(t *testing.T) {
	data := &contact.ContactFormData{
		Name:    "Test User",
		Email:   "reply@example.com",
		Subject: "Need a bugfix",
		Message: "Hello",
	}

	n := contact.ComposeNotification(data)
	assert.Equal(t, "Portfolio Contact: Need a bugfix", n.Subject)
	assert.Equal(t, "reply@example.com", n.ReplyTo)
}

func TestComposeNotificationTruncatesDefensively(t *testing.T) {
	data := &contact.ContactFormData{
		Name:    strings.Repeat("x", 500),
		Email:   "test@example.com",
		Subject: "Hi",
		Message: "Hello",
	}

	n := contact.ComposeNotification(data)
	assert.NotContains(t, n.HTML, strings.Repeat("x", 101))
	assert.Contains(t, n.HTML, strings.Repeat("x", 100))
}
