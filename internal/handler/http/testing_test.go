package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/authd/internal/auth"
	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/internal/event"
	"github.com/utafrali/authd/internal/resourceid"
	"github.com/utafrali/authd/internal/service"
	"github.com/utafrali/authd/internal/token"
	"github.com/utafrali/authd/pkg/health"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockApplicationRepository struct {
	mock.Mock
}

func (m *mockApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) FindByCredentials(ctx context.Context, clientID, clientSecret string) ([]domain.Application, error) {
	args := m.Called(ctx, clientID, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) List(ctx context.Context) ([]domain.Application, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *mockApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockApplicationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAccessTokenRepository struct {
	mock.Mock
}

func (m *mockAccessTokenRepository) Create(ctx context.Context, tok *domain.AccessToken) error {
	args := m.Called(ctx, tok)
	return args.Error(0)
}

func (m *mockAccessTokenRepository) GetByToken(ctx context.Context, tok string) (*domain.AccessToken, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessToken), args.Error(1)
}

func (m *mockAccessTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, tok *domain.RefreshToken) error {
	args := m.Called(ctx, tok)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByToken(ctx context.Context, tok string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishApplicationCreated(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockPublisher) PublishApplicationDeactivated(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *mockPublisher) PublishTokenIssued(ctx context.Context, data event.TokenIssuedData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

// ============================================================================
// Test fixtures
// ============================================================================

type testMocks struct {
	appRepo     *mockApplicationRepository
	userRepo    *mockUserRepository
	accessRepo  *mockAccessTokenRepository
	refreshRepo *mockRefreshTokenRepository
	producer    *mockPublisher
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRouter wires the full router over mock repositories, the way the
// service runs in production minus the database and broker.
func newTestRouter() (http.Handler, *testMocks) {
	m := &testMocks{
		appRepo:     new(mockApplicationRepository),
		userRepo:    new(mockUserRepository),
		accessRepo:  new(mockAccessTokenRepository),
		refreshRepo: new(mockRefreshTokenRepository),
		producer:    new(mockPublisher),
	}

	logger := newTestLogger()
	codec := resourceid.NewDefaultCodec()
	generator := token.NewGenerator(64)

	appService := service.NewApplicationService(m.appRepo, codec, m.producer, logger)
	tokenService := service.NewTokenService(
		m.userRepo, m.appRepo, m.accessRepo, m.refreshRepo,
		generator, m.producer,
		service.TokenConfig{
			AccessTokenTTL:       5 * time.Hour,
			RefreshTokenTTL:      48 * time.Hour,
			UseRefreshExpiration: true,
		},
		logger,
	)
	userService := service.NewUserService(m.userRepo, logger)

	authorizer := auth.NewAuthorizer(appService, logger)
	authenticator := auth.NewAuthenticator(m.accessRepo, m.appRepo, m.userRepo, logger)

	router := NewRouter(
		appService, tokenService, userService,
		authorizer, authenticator,
		health.NewHandler(), logger,
		RouterConfig{
			CORS:           CORSConfig{Environment: "development"},
			LoginRateLimit: 100,
			LoginRateBurst: 100,
		},
	)

	return router, m
}

func sampleApplication(active bool, createdAt time.Time) domain.Application {
	return domain.Application{
		ID:           "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Name:         "mobile-app",
		Type:         domain.AppTypeClient,
		ClientID:     "0123456789abcdef0123456789abcdef",
		ClientSecret: "fedcba9876543210fedcba9876543210",
		Active:       active,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}
