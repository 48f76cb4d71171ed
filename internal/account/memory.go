// AngelaMos | 2026
// memory.go

package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
)

type tenantEmail struct {
	tenantID string
	email    string
}

// MemoryRepository is a process-local Repository. Create enforces
// (tenant, email) uniqueness under its lock, so it behaves like a store with
// a unique index. Used for the memory database driver and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users []User
	index map[tenantEmail]int
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		index: make(map[tenantEmail]int),
		now:   time.Now,
	}
}

func (m *MemoryRepository) FindByEmail(
	ctx context.Context,
	email, tenantID string,
) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[tenantEmail{tenantID: tenantID, email: email}]
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error
	}

	user := m.users[i]
	return &user, nil
}

func (m *MemoryRepository) Create(
	ctx context.Context,
	data NewUser,
) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	key := tenantEmail{tenantID: data.TenantID, email: data.Email}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[key]; exists {
		return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	now := m.now().UTC()
	user := User{
		ID:           uuid.New().String(),
		TenantID:     data.TenantID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         data.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m.users = append(m.users, user)
	m.index[key] = len(m.users) - 1

	return &user, nil
}

// Count returns the number of persisted users.
func (m *MemoryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// Ping satisfies health.Checker.
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
