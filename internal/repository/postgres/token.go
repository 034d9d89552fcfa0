package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/pkg/database"
	apperrors "github.com/utafrali/authd/pkg/errors"
)

// AccessTokenRepository implements repository.AccessTokenRepository using PostgreSQL.
type AccessTokenRepository struct {
	pool database.DBTX
}

// NewAccessTokenRepository creates a new PostgreSQL-backed access token repository.
func NewAccessTokenRepository(pool database.DBTX) *AccessTokenRepository {
	return &AccessTokenRepository{pool: pool}
}

// Create inserts a new access token into the database.
func (r *AccessTokenRepository) Create(ctx context.Context, t *domain.AccessToken) error {
	query := `
		INSERT INTO access_tokens (id, user_id, application_id, refresh_token_id, token, expiration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.ApplicationID,
		t.RefreshTokenID,
		t.Token,
		t.Expiration,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}

	return nil
}

// GetByToken retrieves an access token by exact token string match.
func (r *AccessTokenRepository) GetByToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	query := `
		SELECT id, user_id, application_id, refresh_token_id, token, expiration, created_at, updated_at
		FROM access_tokens
		WHERE token = $1`

	var t domain.AccessToken
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.ApplicationID,
		&t.RefreshTokenID,
		&t.Token,
		&t.Expiration,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan access token: %w", err)
	}

	return &t, nil
}

// DeleteExpired removes access tokens past their expiration.
func (r *AccessTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM access_tokens WHERE expiration <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired access tokens: %w", err)
	}
	return ct.RowsAffected(), nil
}

// RefreshTokenRepository implements repository.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	pool database.DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(pool database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Create inserts a new refresh token into the database.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, application_id, token, expiration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.ApplicationID,
		t.Token,
		t.Expiration,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByToken retrieves a refresh token by exact token string match.
func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, application_id, token, expiration, created_at, updated_at
		FROM refresh_tokens
		WHERE token = $1`

	var t domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&t.ID,
		&t.UserID,
		&t.ApplicationID,
		&t.Token,
		&t.Expiration,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &t, nil
}
