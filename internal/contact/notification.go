package contact

import (
	"fmt"
	"strings"
)

// Notification is the mail payload composed from a validated submission.
// Every embedded field is individually HTML-escaped and defensively truncated
// to its field limit a second time; the message has newlines converted to
// <br> for display.
type Notification struct {
	Subject string
	HTML    string
	ReplyTo string
}

// ComposeNotification builds the notification email for a validated
// submission. Escaping happens here, not in validation, so rejection messages
// reflect raw user intent while the rendered payload is always safe.
func ComposeNotification(data *ContactFormData) Notification {
	name := SanitizeInput(data.Name, MaxNameLength)
	email := SanitizeEmail(data.Email)
	subject := SanitizeInput(data.Subject, MaxSubjectLength)
	message := SanitizeInput(data.Message, MaxMessageLength)
	message = strings.ReplaceAll(message, "\n", "<br>")

	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", name)
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", email)
	if data.ProjectType != "" {
		fmt.Fprintf(&b, "<p><strong>Project Type:</strong> %s</p>\n", EscapeHTML(data.ProjectType))
	}
	if data.ServiceNeeded != "" {
		fmt.Fprintf(&b, "<p><strong>Service Needed:</strong> %s</p>\n", EscapeHTML(data.ServiceNeeded))
	}
	if data.Urgency != "" {
		fmt.Fprintf(&b, "<p><strong>Urgency:</strong> %s</p>\n", EscapeHTML(data.Urgency))
	}
	fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>\n", subject)
	b.WriteString("<p><strong>Message:</strong></p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", message)

	return Notification{
		Subject: "Portfolio Contact: " + subject,
		HTML:    b.String(),
		ReplyTo: email,
	}
}
