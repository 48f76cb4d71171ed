// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
)

const tracerName = "github.com/carterperez-dev/templates/tenant-accounts/internal/account"

var (
	ErrDuplicateEmail = errors.New("email already in use")
	ErrInvalidRole    = errors.New("invalid role")
)

// HashProvider turns a plaintext credential into an opaque stored hash.
type HashProvider interface {
	GenerateHash(ctx context.Context, plaintext string) (string, error)
}

// CreateAccountRequest is the input of Service.Execute. The plaintext
// password lives only for the duration of the call.
type CreateAccountRequest struct {
	Name     string
	Email    string
	Password string
	TenantID string
	Role     Role
}

func (r CreateAccountRequest) role() (Role, error) {
	if r.Role == "" {
		return RoleUser, nil
	}
	if !r.Role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, r.Role)
	}
	return r.Role, nil
}

func (r CreateAccountRequest) validate() (Role, error) {
	if r.Name == "" {
		return "", fmt.Errorf("name is required: %w", core.ErrInvalidInput)
	}
	if r.Password == "" {
		return "", fmt.Errorf("password is required: %w", core.ErrInvalidInput)
	}

	role, err := r.role()
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
	}

	return role, nil
}

// Service creates tenant-scoped accounts. It holds no mutable state and is
// safe for concurrent use.
//
// The duplicate check and the insert are separate repository calls, so two
// concurrent requests for the same (email, tenant) can both pass the check.
// Repositories that enforce uniqueness at write time report the conflict as
// core.ErrDuplicateKey, which Execute surfaces as ErrDuplicateEmail.
type Service struct {
	repo    Repository
	hasher  HashProvider
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

func NewService(repo Repository, hasher HashProvider, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Execute checks that no user of req.TenantID already owns req.Email,
// hashes the password and persists the new user. On ErrDuplicateEmail
// nothing is hashed or written. Collaborator errors are returned as is.
func (s *Service) Execute(
	ctx context.Context,
	req CreateAccountRequest,
) (*User, error) {
	ctx, span := s.tracer.Start(ctx, "account.Execute",
		trace.WithAttributes(attribute.String("tenant.id", req.TenantID)),
	)
	defer span.End()

	role, err := req.validate()
	if err != nil {
		s.metrics.rejected(reasonInvalidInput)
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.String("account.role", role.String()))

	existing, err := s.repo.FindByEmail(ctx, req.Email, req.TenantID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if existing != nil {
		return nil, s.duplicate(ctx, span, req.TenantID)
	}

	passwordHash, err := s.hasher.GenerateHash(ctx, req.Password)
	if err != nil {
		return nil, s.fail(span, err)
	}

	user, err := s.repo.Create(ctx, NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		TenantID:     req.TenantID,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, s.duplicate(ctx, span, req.TenantID)
		}
		return nil, s.fail(span, err)
	}

	s.metrics.created(user.Role)
	span.SetAttributes(attribute.String("account.id", user.ID))
	s.logger.InfoContext(ctx, "account created",
		"tenant_id", user.TenantID,
		"user_id", user.ID,
		"role", user.Role.String(),
	)

	return user, nil
}

func (s *Service) duplicate(
	ctx context.Context,
	span trace.Span,
	tenantID string,
) error {
	s.metrics.rejected(reasonDuplicateEmail)
	span.SetStatus(codes.Error, ErrDuplicateEmail.Error())
	s.logger.InfoContext(ctx, "duplicate email rejected", "tenant_id", tenantID)
	return ErrDuplicateEmail
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
