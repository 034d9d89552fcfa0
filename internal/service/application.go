package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/internal/event"
	"github.com/utafrali/authd/internal/repository"
	"github.com/utafrali/authd/internal/resourceid"
	apperrors "github.com/utafrali/authd/pkg/errors"
)

// maxCredentialRetries bounds how many times credential generation is retried
// when an insert is rejected by the uniqueness constraint.
const maxCredentialRetries = 3

// Publisher is the subset of the event producer used by the services.
type Publisher interface {
	PublishApplicationCreated(ctx context.Context, app *domain.Application) error
	PublishApplicationDeactivated(ctx context.Context, app *domain.Application) error
	PublishTokenIssued(ctx context.Context, data event.TokenIssuedData) error
}

// ApplicationService implements registration and credential validation for
// client applications.
type ApplicationService struct {
	appRepo  repository.ApplicationRepository
	codec    *resourceid.Codec
	producer Publisher
	logger   *slog.Logger
}

// NewApplicationService creates a new application service.
func NewApplicationService(
	appRepo repository.ApplicationRepository,
	codec *resourceid.Codec,
	producer Publisher,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:  appRepo,
		codec:    codec,
		producer: producer,
		logger:   logger,
	}
}

// CreateInput holds the parameters for registering a new application.
type CreateInput struct {
	Name string
	Type string
}

// Create registers a new application with freshly generated credentials.
// Credential collisions are retried with new values.
func (s *ApplicationService) Create(ctx context.Context, input CreateInput) (*domain.Application, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !domain.IsValidAppType(input.Type) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("type must be one of %v", domain.ValidAppTypes()))
	}

	var app *domain.Application
	for attempt := 0; ; attempt++ {
		now := time.Now().UTC()
		app = &domain.Application{
			ID:           uuid.New().String(),
			Name:         input.Name,
			Type:         input.Type,
			ClientID:     newCredential(),
			ClientSecret: newCredential(),
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err := s.appRepo.Create(ctx, app)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) && attempt < maxCredentialRetries-1 {
			s.logger.WarnContext(ctx, "credential collision on application insert, regenerating",
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	if err := s.producer.PublishApplicationCreated(ctx, app); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish application.created event",
			slog.String("application_id", app.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "application registered",
		slog.String("application_id", app.ID),
		slog.String("name", app.Name),
		slog.String("type", app.Type),
	)

	return app, nil
}

// IsValidInput holds the credentials passed to IsValid. Callers supply either
// ResourceID alone, or both ClientID and ClientSecret.
type IsValidInput struct {
	ResourceID   string
	ClientID     string
	ClientSecret string
}

// IsValid reports whether an application with exactly these credentials exists
// and is active. Existence and the active flag are collapsed into one boolean
// so callers cannot skip the active check.
func (s *ApplicationService) IsValid(ctx context.Context, input IsValidInput) (bool, error) {
	clientID, clientSecret := input.ClientID, input.ClientSecret

	switch {
	case input.ResourceID != "":
		creds, err := s.codec.Decode(input.ResourceID)
		if err != nil {
			return false, err
		}
		clientID, clientSecret = creds.ClientID, creds.ClientSecret
	case clientID != "" && clientSecret != "":
		// Explicit pair provided.
	default:
		return false, apperrors.InvalidInput("either resource_id or both client_id and client_secret are required")
	}

	apps, err := s.appRepo.FindByCredentials(ctx, clientID, clientSecret)
	if err != nil {
		return false, fmt.Errorf("find application by credentials: %w", err)
	}

	switch len(apps) {
	case 0:
		return false, nil
	case 1:
		return apps[0].Active, nil
	default:
		// Uniqueness constraints should make this unreachable. Treat as a
		// validation failure rather than trusting ambiguous credentials.
		s.logger.WarnContext(ctx, "multiple applications matched one credential pair",
			slog.Int("matches", len(apps)),
		)
		return false, nil
	}
}

// GetByResourceID resolves a resource identifier to the single application it
// encodes. It does not check the active flag; callers decide what an inactive
// application means for them.
func (s *ApplicationService) GetByResourceID(ctx context.Context, resourceID string) (*domain.Application, error) {
	creds, err := s.codec.Decode(resourceID)
	if err != nil {
		return nil, err
	}

	apps, err := s.appRepo.FindByCredentials(ctx, creds.ClientID, creds.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("find application by credentials: %w", err)
	}
	if len(apps) != 1 {
		return nil, apperrors.NotFound("application", resourceID)
	}

	return &apps[0], nil
}

// Get retrieves an application by ID.
func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("application", id)
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// List returns all registered applications.
func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.appRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Deactivate disables an application. Its tokens immediately stop validating.
func (s *ApplicationService) Deactivate(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.setActive(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishApplicationDeactivated(ctx, app); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish application.deactivated event",
			slog.String("application_id", app.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "application deactivated",
		slog.String("application_id", app.ID),
	)

	return app, nil
}

// Activate re-enables a previously deactivated application.
func (s *ApplicationService) Activate(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.setActive(ctx, id, true)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "application activated",
		slog.String("application_id", app.ID),
	)

	return app, nil
}

func (s *ApplicationService) setActive(ctx context.Context, id string, active bool) (*domain.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	app.Active = active
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	return app, nil
}

// Delete removes an application; its tokens are cascade-deleted by the store.
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	if err := s.appRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("application", id)
		}
		return fmt.Errorf("delete application: %w", err)
	}

	s.logger.InfoContext(ctx, "application deleted",
		slog.String("application_id", id),
	)

	return nil
}

// newCredential returns a fresh UUID rendered as 32 hex characters, so
// credentials always match the \w+ segments of the resource-id pattern.
func newCredential() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
