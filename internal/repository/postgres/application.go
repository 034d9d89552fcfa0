package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/authd/internal/domain"
	"github.com/utafrali/authd/pkg/database"
	apperrors "github.com/utafrali/authd/pkg/errors"
)

// ApplicationRepository implements repository.ApplicationRepository using PostgreSQL.
type ApplicationRepository struct {
	pool database.DBTX
}

// NewApplicationRepository creates a new PostgreSQL-backed application repository.
func NewApplicationRepository(pool database.DBTX) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create inserts a new application into the database.
func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	query := `
		INSERT INTO applications (id, name, type, client_id, client_secret, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		a.Type,
		a.ClientID,
		a.ClientSecret,
		a.Active,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("application", "credentials", a.ClientID)
		}
		return fmt.Errorf("insert application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by its ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `
		SELECT id, name, type, client_id, client_secret, active, created_at, updated_at
		FROM applications
		WHERE id = $1`

	var a domain.Application
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Name,
		&a.Type,
		&a.ClientID,
		&a.ClientSecret,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	return &a, nil
}

// FindByCredentials returns all applications matching the exact client_id and
// client_secret pair.
func (r *ApplicationRepository) FindByCredentials(ctx context.Context, clientID, clientSecret string) ([]domain.Application, error) {
	query := `
		SELECT id, name, type, client_id, client_secret, active, created_at, updated_at
		FROM applications
		WHERE client_id = $1 AND client_secret = $2`

	rows, err := r.pool.Query(ctx, query, clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("query applications by credentials: %w", err)
	}
	defer rows.Close()

	return scanApplications(rows)
}

// List returns all registered applications ordered by creation time.
func (r *ApplicationRepository) List(ctx context.Context) ([]domain.Application, error) {
	query := `
		SELECT id, name, type, client_id, client_secret, active, created_at, updated_at
		FROM applications
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	return scanApplications(rows)
}

// Update modifies an existing application. Credentials are immutable and are
// not part of the update.
func (r *ApplicationRepository) Update(ctx context.Context, a *domain.Application) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE applications
		SET name = $1, type = $2, active = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query,
		a.Name,
		a.Type,
		a.Active,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("application", a.ID)
	}

	return nil
}

// Delete removes an application; dependent tokens are removed by the schema's
// ON DELETE CASCADE.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM applications WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("application", id)
	}

	return nil
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var apps []domain.Application
	for rows.Next() {
		var a domain.Application
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.Type,
			&a.ClientID,
			&a.ClientSecret,
			&a.Active,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application rows: %w", err)
	}
	return apps, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
