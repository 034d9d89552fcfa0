package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/internal/event"
	"github.com/utafrali/authd/internal/repository"
	apperrors "github.com/utafrali/authd/pkg/errors"
)

// TokenGenerator produces opaque token strings.
type TokenGenerator interface {
	Generate() (string, error)
}

// TokenConfig holds the lifetime policy for issued tokens.
type TokenConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// UseRefreshExpiration toggles whether refresh tokens expire at all.
	// When false, refresh tokens are issued with a far-future expiration.
	UseRefreshExpiration bool
}

// nonExpiringYears is how far in the future non-expiring refresh tokens are
// dated when UseRefreshExpiration is off.
const nonExpiringYears = 100

// TokenService implements token issuance, login, and refresh.
type TokenService struct {
	userRepo    repository.UserRepository
	appRepo     repository.ApplicationRepository
	accessRepo  repository.AccessTokenRepository
	refreshRepo repository.RefreshTokenRepository
	generator   TokenGenerator
	producer    Publisher
	cfg         TokenConfig
	logger      *slog.Logger
}

// NewTokenService creates a new token service.
func NewTokenService(
	userRepo repository.UserRepository,
	appRepo repository.ApplicationRepository,
	accessRepo repository.AccessTokenRepository,
	refreshRepo repository.RefreshTokenRepository,
	generator TokenGenerator,
	producer Publisher,
	cfg TokenConfig,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		userRepo:    userRepo,
		appRepo:     appRepo,
		accessRepo:  accessRepo,
		refreshRepo: refreshRepo,
		generator:   generator,
		producer:    producer,
		cfg:         cfg,
		logger:      logger,
	}
}

// IssueRefreshToken mints a refresh token binding the user to the application.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID, applicationID string) (*domain.RefreshToken, error) {
	raw, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	expiration := now.Add(s.cfg.RefreshTokenTTL)
	if !s.cfg.UseRefreshExpiration {
		expiration = now.AddDate(nonExpiringYears, 0, 0)
	}

	tok := &domain.RefreshToken{
		ID:            uuid.New().String(),
		UserID:        userID,
		ApplicationID: applicationID,
		Token:         raw,
		Expiration:    expiration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.refreshRepo.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.publishTokenIssued(ctx, event.TokenIssuedData{
		TokenID:       tok.ID,
		Kind:          "refresh",
		UserID:        tok.UserID,
		ApplicationID: tok.ApplicationID,
		Expiration:    tok.Expiration,
	})

	return tok, nil
}

// IssueAccessToken mints an access token binding the user to the application.
// refreshTokenID is optional: a token issued without one cannot be rotated.
func (s *TokenService) IssueAccessToken(ctx context.Context, userID, applicationID string, refreshTokenID *string) (*domain.AccessToken, error) {
	raw, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	now := time.Now().UTC()
	tok := &domain.AccessToken{
		ID:             uuid.New().String(),
		UserID:         userID,
		ApplicationID:  applicationID,
		RefreshTokenID: refreshTokenID,
		Token:          raw,
		Expiration:     now.Add(s.cfg.AccessTokenTTL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.accessRepo.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}

	s.publishTokenIssued(ctx, event.TokenIssuedData{
		TokenID:       tok.ID,
		Kind:          "access",
		UserID:        tok.UserID,
		ApplicationID: tok.ApplicationID,
		Expiration:    tok.Expiration,
	})

	return tok, nil
}

// LoginInput holds the parameters for user login against an application.
type LoginInput struct {
	Username    string
	Password    string
	Application *domain.Application
}

// Login authenticates a user with username and password and issues a fresh
// refresh/access token pair bound to the calling application.
func (s *TokenService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Username == "" {
		return nil, nil, apperrors.InvalidInput("username is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}
	if input.Application == nil || !input.Application.Active {
		return nil, nil, apperrors.Unauthorized("unknown application")
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid username or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid username or password")
	}

	refresh, err := s.IssueRefreshToken(ctx, user.ID, input.Application.ID)
	if err != nil {
		return nil, nil, err
	}

	access, err := s.IssueAccessToken(ctx, user.ID, input.Application.ID, &refresh.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("application_id", input.Application.ID),
	)

	return user, &domain.TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresAt:    access.Expiration,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself is kept; only the access token is re-minted.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	stored, err := s.refreshRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	now := time.Now().UTC()
	if stored.Expired(now) {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	app, err := s.appRepo.GetByID(ctx, stored.ApplicationID)
	if err != nil || !app.Active {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil || !user.IsActive {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	access, err := s.IssueAccessToken(ctx, user.ID, app.ID, &stored.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "access token refreshed",
		slog.String("user_id", user.ID),
		slog.String("application_id", app.ID),
	)

	return &domain.TokenPair{
		AccessToken:  access.Token,
		RefreshToken: stored.Token,
		ExpiresAt:    access.Expiration,
	}, nil
}

// PurgeExpired deletes access tokens past their expiration. Intended to be
// run periodically by the application loop.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.accessRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired access tokens purged",
			slog.Int64("count", n),
		)
	}
	return n, nil
}

func (s *TokenService) publishTokenIssued(ctx context.Context, data event.TokenIssuedData) {
	if err := s.producer.PublishTokenIssued(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish token.issued event",
			slog.String("token_id", data.TokenID),
			slog.String("error", err.Error()),
		)
	}
}
