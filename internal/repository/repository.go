package repository

import (
	"context"

	"github.com/utafrali/authd/internal/domain"
)

// ApplicationRepository defines the interface for application persistence.
type ApplicationRepository interface {
	// Create inserts a new application into the store.
	Create(ctx context.Context, app *domain.Application) error

	// GetByID retrieves an application by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Application, error)

	// FindByCredentials returns all applications whose client_id and
	// client_secret both match exactly. Uniqueness constraints make more
	// than one match unreachable in practice, but callers apply their own
	// zero/one/many policy.
	FindByCredentials(ctx context.Context, clientID, clientSecret string) ([]domain.Application, error)

	// List returns all registered applications.
	List(ctx context.Context) ([]domain.Application, error)

	// Update modifies an existing application in the store.
	Update(ctx context.Context, app *domain.Application) error

	// Delete removes an application and cascades to its tokens.
	Delete(ctx context.Context, id string) error
}

// AccessTokenRepository defines the interface for access token persistence.
type AccessTokenRepository interface {
	// Create stores a new access token.
	Create(ctx context.Context, tok *domain.AccessToken) error

	// GetByToken retrieves an access token by exact token string match.
	GetByToken(ctx context.Context, token string) (*domain.AccessToken, error)

	// DeleteExpired removes access tokens whose expiration has passed and
	// returns how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence.
type RefreshTokenRepository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, tok *domain.RefreshToken) error

	// GetByToken retrieves a refresh token by exact token string match.
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Delete removes a user and cascades to their tokens.
	Delete(ctx context.Context, id string) error
}
