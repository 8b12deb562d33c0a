package identity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taqyim-dev/taqyim-api/internal/models"
)

// Repository persists identity credentials. Credentials are stored apart
// from user profile documents: the application can delete a profile without
// ever touching the credential row.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a credential repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail returns the credential registered under the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	const query = `SELECT id, email, password_hash, created_at FROM credentials WHERE email = $1 LIMIT 1`
	var cred models.Credential
	if err := r.db.GetContext(ctx, &cred, query, email); err != nil {
		return nil, err
	}
	return &cred, nil
}

// ExistsByEmail checks whether a credential is already registered.
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM credentials WHERE email = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check credential email: %w", err)
	}
	return true, nil
}

// Create inserts a new credential.
func (r *Repository) Create(ctx context.Context, cred *models.Credential) error {
	const query = `INSERT INTO credentials (id, email, password_hash, created_at) VALUES (:id, :email, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cred); err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}
