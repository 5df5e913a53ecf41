package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/config"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

// AuthService coordinates login and password change flows.
type AuthService struct {
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.Revoker
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates collaborator requirements.
type AuthDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Revoker      auth.Revoker
	Now          func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		employees:  deps.EmployeeRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoker:    deps.Revoker,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        now,
	}
}

// Login authenticates an employee and issues a bearer token. Unknown
// email and wrong password produce the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Employee, string, time.Time, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
	}

	token, exp, err := s.tokenMgr.GenerateToken(employee)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return employee, token, exp, nil
}

// ChangePassword verifies the current password before updating the
// hash. On success a revocation stamp is written so tokens issued
// before the change stop validating.
func (s *AuthService) ChangePassword(ctx context.Context, employeeID, currentPassword, newPassword string) error {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(employee.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	employee.PasswordHash = hash
	if err := s.employees.Update(ctx, employee); err != nil {
		return apperrors.MapError(err)
	}

	if s.revoker != nil {
		// Best effort: a missing stamp only means old tokens stay valid
		// until expiry.
		_ = s.revoker.MarkPasswordChanged(ctx, employee.ID, s.now())
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
