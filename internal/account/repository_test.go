// AngelaMos | 2026
// repository_test.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
)

// fakeDB answers GetContext only; the embedded interface panics on anything
// else the repository should not be calling.
type fakeDB struct {
	sqlx.ExtContext
	get func(dest any, query string, args ...any) error

	lastArgs []any
}

func (f *fakeDB) GetContext(
	_ context.Context,
	dest any,
	query string,
	args ...any,
) error {
	f.lastArgs = args
	return f.get(dest, query, args...)
}

func (f *fakeDB) SelectContext(context.Context, any, string, ...any) error {
	return errors.New("unexpected select")
}

func TestRepositoryFindByEmailNoRows(t *testing.T) {
	db := &fakeDB{get: func(any, string, ...any) error { return sql.ErrNoRows }}

	user, err := NewRepository(db).FindByEmail(context.Background(), "a@example.com", "t1")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, []any{"t1", "a@example.com"}, db.lastArgs)
}

func TestRepositoryFindByEmailWrapsErrors(t *testing.T) {
	boom := errors.New("conn reset")
	db := &fakeDB{get: func(any, string, ...any) error { return boom }}

	_, err := NewRepository(db).FindByEmail(context.Background(), "a@example.com", "t1")
	require.ErrorIs(t, err, boom)
}

func TestRepositoryCreate(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	db := &fakeDB{get: func(dest any, _ string, _ ...any) error {
		u, ok := dest.(*User)
		require.True(t, ok)
		u.CreatedAt, u.UpdatedAt = created, created
		return nil
	}}

	user, err := NewRepository(db).Create(context.Background(), NewUser{
		Name:         "John Doe",
		Email:        "john@example.com",
		PasswordHash: "hashed:123456",
		TenantID:     "t1",
		Role:         RoleAdmin,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, created, user.CreatedAt)
	require.Len(t, db.lastArgs, 6)
	assert.Equal(t, "admin", db.lastArgs[5])
}

func TestRepositoryCreateUniqueViolation(t *testing.T) {
	db := &fakeDB{get: func(any, string, ...any) error {
		return &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_tenant_email_key"}
	}}

	_, err := NewRepository(db).Create(context.Background(), NewUser{Email: "a", TenantID: "t"})
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepositoryCreateOtherPgError(t *testing.T) {
	db := &fakeDB{get: func(any, string, ...any) error {
		return &pgconn.PgError{Code: "23514"}
	}}

	_, err := NewRepository(db).Create(context.Background(), NewUser{Email: "a", TenantID: "t"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrDuplicateKey)
}
