package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/authd/internal/service"
)

// ApplicationValidator is the slice of the application service the authorizer
// needs.
type ApplicationValidator interface {
	IsValid(ctx context.Context, input service.IsValidInput) (bool, error)
}

// Authorizer decides whether a request comes from a known, active
// application. Authorization is a pure yes/no: malformed identifiers, unknown
// credentials, and backend failures all answer no.
type Authorizer struct {
	apps   ApplicationValidator
	logger *slog.Logger
}

// NewAuthorizer creates a new authorizer.
func NewAuthorizer(apps ApplicationValidator, logger *slog.Logger) *Authorizer {
	return &Authorizer{apps: apps, logger: logger}
}

// Authorize reports whether the request carries a resource identifier that
// resolves to an active application.
func (a *Authorizer) Authorize(ctx context.Context, r *http.Request) bool {
	resourceID := ResourceID(r)
	if resourceID == "" {
		return false
	}

	valid, err := a.apps.IsValid(ctx, service.IsValidInput{ResourceID: resourceID})
	if err != nil {
		a.logger.DebugContext(ctx, "application authorization failed",
			slog.String("error", err.Error()),
		)
		return false
	}

	return valid
}
