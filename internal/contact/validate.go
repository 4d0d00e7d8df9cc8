package contact

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Field length limits for the contact form.
const (
	MaxNameLength    = 100
	MaxSubjectLength = 200
	MaxMessageLength = 2000
)

// Allowlists for the optional dropdown fields. Anything outside these sets is
// rejected outright.
var (
	ProjectTypes  = []string{"home", "business", "school", "fun", "other"}
	ServiceTypes  = []string{"bugfix", "feature", "infra", "security", "ai", "other"}
	UrgencyLevels = []string{"today", "this-week", "this-month"}
)

// ContactFormData is a validated, normalized contact submission. Required
// fields are trimmed but not HTML-escaped; escaping happens at notification
// composition. Optional fields hold an allowlisted value or are empty, which
// means "not provided"; the empty string is not a member of any allowlist,
// so the two states cannot collide.
type ContactFormData struct {
	Name          string
	Email         string
	Subject       string
	Message       string
	ProjectType   string
	ServiceNeeded string
	Urgency       string
}

// Validate checks an untyped request body and produces a ContactFormData or a
// field-specific rejection. Checks run in a fixed order and the first failure
// wins. Rejection messages are safe to return to clients: they never echo the
// submitted values.
func Validate(body any) (*ContactFormData, error) {
	fields, ok := body.(map[string]any)
	if !ok || fields == nil {
		return nil, errors.New("Invalid request body")
	}

	name, err := requiredString(fields, "name", "Name is required")
	if err != nil {
		return nil, err
	}
	email, ok := fields["email"].(string)
	if !ok || email == "" {
		return nil, errors.New("Email is required")
	}
	subject, err := requiredString(fields, "subject", "Subject is required")
	if err != nil {
		return nil, err
	}
	message, err := requiredString(fields, "message", "Message is required")
	if err != nil {
		return nil, err
	}

	// Lengths are checked on the raw, untrimmed value.
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, errors.New("Name must be 100 characters or less")
	}
	if utf8.RuneCountInString(subject) > MaxSubjectLength {
		return nil, errors.New("Subject must be 200 characters or less")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, errors.New("Message must be 2,000 characters or less")
	}

	if !IsValidEmail(email) {
		return nil, errors.New("Invalid email address")
	}

	data := &ContactFormData{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Subject: strings.TrimSpace(subject),
		Message: strings.TrimSpace(message),
	}

	// Optional dropdowns: absent and empty-string both mean "not provided";
	// anything else must be a string from the allowlist.
	if err := optionalAllowlisted(fields, "projectType", ProjectTypes, "Invalid project type", &data.ProjectType); err != nil {
		return nil, err
	}
	if err := optionalAllowlisted(fields, "serviceNeeded", ServiceTypes, "Invalid service type", &data.ServiceNeeded); err != nil {
		return nil, err
	}
	if err := optionalAllowlisted(fields, "urgency", UrgencyLevels, "Invalid urgency level", &data.Urgency); err != nil {
		return nil, err
	}

	return data, nil
}

func requiredString(fields map[string]any, key, reason string) (string, error) {
	value, ok := fields[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", errors.New(reason)
	}
	return value, nil
}

func optionalAllowlisted(fields map[string]any, key string, allowed []string, reason string, out *string) error {
	value, present := fields[key]
	if !present {
		return nil
	}
	s, ok := value.(string)
	if ok && s == "" {
		return nil
	}
	if !ok || !contains(allowed, s) {
		return errors.New(reason)
	}
	*out = s
	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
