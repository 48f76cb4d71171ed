// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
)

const uniqueViolation = "23505"

// Repository owns storage of users. FindByEmail returns (nil, nil) when no
// user of tenantID has that email. Create reports a (tenant, email) conflict
// as core.ErrDuplicateKey when the store enforces uniqueness.
type Repository interface {
	FindByEmail(ctx context.Context, email, tenantID string) (*User, error)
	Create(ctx context.Context, data NewUser) (*User, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository returns a Postgres-backed Repository. Emails are compared
// exactly as stored; the users_tenant_email_key index makes the insert
// authoritative for uniqueness.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmail(
	ctx context.Context,
	email, tenantID string,
) (*User, error) {
	query := `
		SELECT id, tenant_id, name, email, password_hash, role,
		       created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND email = $2`

	var user User
	err := r.db.GetContext(ctx, &user, query, tenantID, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) Create(ctx context.Context, data NewUser) (*User, error) {
	user := &User{
		ID:           uuid.New().String(),
		TenantID:     data.TenantID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         data.Role,
	}

	query := `
		INSERT INTO users (id, tenant_id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.TenantID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role.String(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
