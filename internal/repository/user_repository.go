package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proctorguard/backend/internal/model"
)

const userColumns = `id, organization_id, email, name, password_hash, role, created_at`

// UserRepository handles user (candidate and staff) data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.OrganizationID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email. Emails are globally unique.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(querier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// Create inserts a new user. The unique constraint on email rejects
// duplicate registrations.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (organization_id, email, name, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.OrganizationID, u.Email, u.Name, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
}
