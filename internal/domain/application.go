package domain

import (
	"time"

	"github.com/utafrali/authd/internal/resourceid"
)

// Application type constants define the allowed application types.
const (
	AppTypeClient  = "client"
	AppTypeService = "service"
)

// ValidAppTypes returns the set of valid application types.
func ValidAppTypes() []string {
	return []string{AppTypeClient, AppTypeService}
}

// IsValidAppType checks whether the given string is a valid application type.
func IsValidAppType(t string) bool {
	for _, v := range ValidAppTypes() {
		if v == t {
			return true
		}
	}
	return false
}

const (
	redactKeepChars = 3
	redactMask      = "**********"

	// Credentials are shown in full for a short window after creation so the
	// operator can copy them, then masked for display.
	redactGracePeriod = 5 * time.Minute
)

// Application represents a registered client application that may call the
// platform. Its client_id/client_secret pair is the credential bundle
// transmitted by clients as a resource identifier.
type Application struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ResourceID returns the composite credential string clients send in the
// Resource-Id header.
func (a *Application) ResourceID() string {
	return resourceid.Encode(a.ClientID, a.ClientSecret)
}

// RedactedClientID returns the client ID with all but the first three
// characters masked. Display-only; not a security control.
func (a *Application) RedactedClientID() string {
	return redact(a.ClientID)
}

// RedactedClientSecret returns the client secret with all but the first three
// characters masked.
func (a *Application) RedactedClientSecret() string {
	return redact(a.ClientSecret)
}

// ShouldRedactFields reports whether credentials should be masked for display.
func (a *Application) ShouldRedactFields(now time.Time) bool {
	return now.After(a.CreatedAt.Add(redactGracePeriod))
}

func redact(s string) string {
	if len(s) > redactKeepChars {
		s = s[:redactKeepChars]
	}
	return s + redactMask
}
