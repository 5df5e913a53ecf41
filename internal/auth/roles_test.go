package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

func newRoleTestApp(principal *Principal, guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	app.Get("/guarded", func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}, guard, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func requestStatus(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	principal := &Principal{Employee: &domain.Employee{ID: "emp-1", Role: domain.EmployeeRoleAdmin}}
	app := newRoleTestApp(principal, RequireAdmin())
	require.Equal(t, http.StatusOK, requestStatus(t, app))
}

func TestRequireAdminRejectsStaff(t *testing.T) {
	principal := &Principal{Employee: &domain.Employee{ID: "emp-1", Role: domain.EmployeeRoleStaff}}
	app := newRoleTestApp(principal, RequireAdmin())
	require.Equal(t, http.StatusForbidden, requestStatus(t, app))
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	app := newRoleTestApp(nil, RequireAdmin())
	require.Equal(t, http.StatusUnauthorized, requestStatus(t, app))
}

func TestRequireAuthenticatedAllowsAnyRole(t *testing.T) {
	principal := &Principal{Employee: &domain.Employee{ID: "emp-1", Role: domain.EmployeeRoleStaff}}
	app := newRoleTestApp(principal, RequireAuthenticated())
	require.Equal(t, http.StatusOK, requestStatus(t, app))
}

func TestRequireAuthenticatedRejectsAnonymous(t *testing.T) {
	app := newRoleTestApp(nil, RequireAuthenticated())
	require.Equal(t, http.StatusUnauthorized, requestStatus(t, app))
}
