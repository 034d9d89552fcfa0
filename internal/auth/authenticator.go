package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/internal/repository"
	apperrors "github.com/utafrali/authd/pkg/errors"
)

// Authenticator resolves bearer tokens to users. Every failure mode after
// token extraction collapses to the same unauthorized error so callers leak
// nothing about why a token was rejected.
type Authenticator struct {
	accessRepo repository.AccessTokenRepository
	appRepo    repository.ApplicationRepository
	userRepo   repository.UserRepository
	logger     *slog.Logger
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(
	accessRepo repository.AccessTokenRepository,
	appRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *Authenticator {
	return &Authenticator{
		accessRepo: accessRepo,
		appRepo:    appRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Authenticate extracts the bearer token from the request and resolves it to
// an active user, returning the user and the raw token it presented. The
// token must exist, be unexpired, and belong to an active application; the
// user account must be active.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*domain.User, string, error) {
	raw, ok := BearerToken(r)
	if !ok {
		return nil, "", apperrors.Unauthorized("no token presented")
	}

	tok, err := a.accessRepo.GetByToken(ctx, raw)
	if err != nil {
		a.logTokenRejection(ctx, "token lookup failed", err)
		return nil, "", apperrors.Unauthorized("invalid token")
	}

	app, err := a.appRepo.GetByID(ctx, tok.ApplicationID)
	if err != nil {
		a.logTokenRejection(ctx, "application lookup failed", err)
		return nil, "", apperrors.Unauthorized("invalid token")
	}

	if !tok.IsValid(app, time.Now().UTC()) {
		return nil, "", apperrors.Unauthorized("invalid token")
	}

	user, err := a.userRepo.GetByID(ctx, tok.UserID)
	if err != nil {
		a.logTokenRejection(ctx, "user lookup failed", err)
		return nil, "", apperrors.Unauthorized("invalid token")
	}

	if !user.IsActive {
		return nil, "", apperrors.Unauthorized("invalid token")
	}

	return user, raw, nil
}

func (a *Authenticator) logTokenRejection(ctx context.Context, reason string, err error) {
	a.logger.DebugContext(ctx, "bearer token rejected",
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
}
