// AngelaMos | 2026
// service_test.go

package account

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
)

type prefixHasher struct {
	calls atomic.Int32
}

func (h *prefixHasher) GenerateHash(
	_ context.Context,
	plaintext string,
) (string, error) {
	h.calls.Add(1)
	return "hashed:" + plaintext, nil
}

type failingHasher struct {
	err error
}

func (h failingHasher) GenerateHash(context.Context, string) (string, error) {
	return "", h.err
}

type stubRepository struct {
	findUser  *User
	findErr   error
	createErr error
	creates   int
}

func (s *stubRepository) FindByEmail(
	context.Context,
	string,
	string,
) (*User, error) {
	return s.findUser, s.findErr
}

func (s *stubRepository) Create(_ context.Context, data NewUser) (*User, error) {
	s.creates++
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &User{
		ID:           "stub-id",
		TenantID:     data.TenantID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         data.Role,
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, *prefixHasher) {
	t.Helper()

	repo := NewMemoryRepository()
	hasher := &prefixHasher{}
	svc := NewService(repo, hasher, WithLogger(discardLogger()))

	return svc, repo, hasher
}

func johnDoe(tenantID string) CreateAccountRequest {
	return CreateAccountRequest{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "123456",
		TenantID: tenantID,
	}
}

func TestExecuteCreatesAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)

	user, err := svc.Execute(context.Background(), johnDoe("tenant-1"))
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, "tenant-1", user.TenantID)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "hashed:123456", user.PasswordHash)
	assert.Equal(t, 1, repo.Count())
}

func TestExecuteKeepsRequestedRole(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleManager, RoleUser} {
		t.Run(role.String(), func(t *testing.T) {
			svc, _, _ := newTestService(t)

			req := johnDoe("tenant-1")
			req.Role = role

			user, err := svc.Execute(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, role, user.Role)
		})
	}
}

func TestExecuteRejectsDuplicateEmailInSameTenant(t *testing.T) {
	svc, repo, hasher := newTestService(t)
	ctx := context.Background()

	_, err := svc.Execute(ctx, johnDoe("tenant-1"))
	require.NoError(t, err)

	again := johnDoe("tenant-1")
	again.Name = "Another John"

	user, err := svc.Execute(ctx, again)
	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Nil(t, user)
	assert.Equal(t, "email already in use", err.Error())
	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, int32(1), hasher.calls.Load(), "duplicate must not be hashed")
}

func TestExecuteAllowsSameEmailAcrossTenants(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Execute(ctx, johnDoe("tenant-1"))
	require.NoError(t, err)

	second, err := svc.Execute(ctx, johnDoe("tenant-2"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "tenant-2", second.TenantID)
	assert.Equal(t, 2, repo.Count())
}

func TestExecuteNeverReturnsPlaintext(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := johnDoe("tenant-1")
	req.Password = "s3cr3t-passphrase"

	user, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, req.Password, user.PasswordHash)
	for _, field := range []string{
		user.ID,
		user.TenantID,
		user.Name,
		user.Email,
		user.Role.String(),
	} {
		assert.NotContains(t, field, req.Password)
	}
}

func TestExecuteDoesNotLogSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	svc := NewService(NewMemoryRepository(), &prefixHasher{}, WithLogger(logger))

	req := johnDoe("tenant-1")
	req.Password = "s3cr3t-passphrase"

	_, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrDuplicateEmail)

	out := buf.String()
	assert.Contains(t, out, "account created")
	assert.Contains(t, out, "duplicate email rejected")
	assert.NotContains(t, out, req.Password)
}

func TestExecuteValidatesRequestShape(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateAccountRequest)
	}{
		{
			name:   "empty name",
			mutate: func(r *CreateAccountRequest) { r.Name = "" },
		},
		{
			name:   "empty password",
			mutate: func(r *CreateAccountRequest) { r.Password = "" },
		},
		{
			name:   "unknown role",
			mutate: func(r *CreateAccountRequest) { r.Role = Role("owner") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepository{}
			hasher := &prefixHasher{}
			svc := NewService(repo, hasher, WithLogger(discardLogger()))

			req := johnDoe("tenant-1")
			tt.mutate(&req)

			_, err := svc.Execute(context.Background(), req)
			require.ErrorIs(t, err, core.ErrInvalidInput)
			assert.Zero(t, repo.creates)
			assert.Zero(t, hasher.calls.Load())
		})
	}
}

func TestExecuteUnknownRoleWrapsErrInvalidRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := johnDoe("tenant-1")
	req.Role = Role("root")

	_, err := svc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestExecutePropagatesLookupFailure(t *testing.T) {
	storageDown := errors.New("storage unavailable")
	repo := &stubRepository{findErr: storageDown}
	hasher := &prefixHasher{}
	svc := NewService(repo, hasher, WithLogger(discardLogger()))

	_, err := svc.Execute(context.Background(), johnDoe("tenant-1"))
	require.Same(t, storageDown, err)
	assert.Zero(t, hasher.calls.Load())
	assert.Zero(t, repo.creates)
}

func TestExecutePropagatesHashFailure(t *testing.T) {
	hashErr := errors.New("entropy exhausted")
	repo := &stubRepository{}
	svc := NewService(repo, failingHasher{err: hashErr}, WithLogger(discardLogger()))

	_, err := svc.Execute(context.Background(), johnDoe("tenant-1"))
	require.Same(t, hashErr, err)
	assert.Zero(t, repo.creates)
}

func TestExecutePropagatesCreateFailure(t *testing.T) {
	writeErr := errors.New("disk full")
	repo := &stubRepository{createErr: writeErr}
	svc := NewService(repo, &prefixHasher{}, WithLogger(discardLogger()))

	_, err := svc.Execute(context.Background(), johnDoe("tenant-1"))
	require.Same(t, writeErr, err)
	assert.Equal(t, 1, repo.creates)
}

func TestExecuteMapsStorageConflictToDuplicateEmail(t *testing.T) {
	// The lookup misses but the store's unique index rejects the insert,
	// as happens when a concurrent request wins the race.
	repo := &stubRepository{
		createErr: errors.Join(errors.New("create user"), core.ErrDuplicateKey),
	}
	svc := NewService(repo, &prefixHasher{}, WithLogger(discardLogger()))

	_, err := svc.Execute(context.Background(), johnDoe("tenant-1"))
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestExecuteConcurrentSameEmailCreatesOne(t *testing.T) {
	svc, repo, _ := newTestService(t)

	const workers = 16

	var (
		wg         sync.WaitGroup
		succeeded  atomic.Int32
		duplicates atomic.Int32
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Execute(context.Background(), johnDoe("tenant-1"))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrDuplicateEmail):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())
	assert.Equal(t, 1, repo.Count())
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	svc, repo, hasher := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Execute(ctx, johnDoe("tenant-1"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, repo.Count())
	assert.Zero(t, hasher.calls.Load())
}

func TestExecuteRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	svc := NewService(
		NewMemoryRepository(),
		&prefixHasher{},
		WithLogger(discardLogger()),
		WithTracer(provider.Tracer("test")),
	)

	req := johnDoe("tenant-1")
	req.Role = RoleManager

	user, err := svc.Execute(context.Background(), req)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "account.Execute", spans[0].Name())

	attrs := make(map[attribute.Key]string)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.AsString()
	}
	assert.Equal(t, "tenant-1", attrs["tenant.id"])
	assert.Equal(t, "manager", attrs["account.role"])
	assert.Equal(t, user.ID, attrs["account.id"])
}

func TestExecuteRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	svc := NewService(
		NewMemoryRepository(),
		&prefixHasher{},
		WithLogger(discardLogger()),
		WithMetrics(metrics),
	)
	ctx := context.Background()

	admin := johnDoe("tenant-1")
	admin.Role = RoleAdmin
	_, err = svc.Execute(ctx, admin)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, johnDoe("tenant-1"))
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Execute(ctx, johnDoe("tenant-2"))
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.createdTotal.WithLabelValues("admin")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.createdTotal.WithLabelValues("user")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(
		metrics.rejectedTotal.WithLabelValues(reasonDuplicateEmail)), 0)
}

func TestNewMetricsRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	var already prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
}
