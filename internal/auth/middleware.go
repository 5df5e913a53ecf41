package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Employee *domain.Employee
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens    *TokenManager
	employees repository.EmployeeRepository
	revoker   Revoker
}

// NewAuthMiddleware constructs middleware. The revoker is optional; when
// nil, tokens are only checked for signature and expiry.
func NewAuthMiddleware(tokens *TokenManager, employees repository.EmployeeRepository, revoker Revoker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, employees: employees, revoker: revoker}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	// Revocation fails open: when the stamp store is unreachable the
	// token is honored until its normal expiry, and every caller keeps
	// working through a Redis outage.
	if m.revoker != nil && claims.IssuedAt != nil {
		stamp, err := m.revoker.PasswordChangedAt(c.Context(), claims.EmployeeID)
		if err == nil && stamp != nil && claims.IssuedAt.Time.Before(*stamp) {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	employee, err := m.employees.GetByID(c.Context(), claims.EmployeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("employee not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Employee: employee})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated employee.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
