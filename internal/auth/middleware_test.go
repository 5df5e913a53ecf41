package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

type stubEmployeeStore struct {
	employees map[string]*domain.Employee
}

func (s *stubEmployeeStore) Create(ctx context.Context, employee *domain.Employee) error { return nil }

func (s *stubEmployeeStore) Update(ctx context.Context, employee *domain.Employee) error { return nil }

func (s *stubEmployeeStore) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	employee, ok := s.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return employee, nil
}

func (s *stubEmployeeStore) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubEmployeeStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (s *stubEmployeeStore) List(ctx context.Context) ([]domain.Employee, error) {
	return nil, nil
}

type stubRevoker struct {
	stamp *time.Time
	err   error
}

func (r *stubRevoker) MarkPasswordChanged(ctx context.Context, employeeID string, at time.Time) error {
	return nil
}

func (r *stubRevoker) PasswordChangedAt(ctx context.Context, employeeID string) (*time.Time, error) {
	return r.stamp, r.err
}

func newMiddlewareTestApp(middleware *AuthMiddleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	app.Get("/protected", middleware.Handle, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func protectedStatus(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	employee := &domain.Employee{ID: "emp-1", Email: "ada@example.com", Role: domain.EmployeeRoleStaff}
	store := &stubEmployeeStore{employees: map[string]*domain.Employee{"emp-1": employee}}
	app := newMiddlewareTestApp(NewAuthMiddleware(tm, store, nil))

	token, _, err := tm.GenerateToken(employee)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, protectedStatus(t, app, token))
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	store := &stubEmployeeStore{employees: map[string]*domain.Employee{}}
	app := newMiddlewareTestApp(NewAuthMiddleware(tm, store, nil))

	require.Equal(t, http.StatusUnauthorized, protectedStatus(t, app, ""))
}

func TestMiddlewareRejectsTokenIssuedBeforePasswordChange(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	employee := &domain.Employee{ID: "emp-1", Email: "ada@example.com", Role: domain.EmployeeRoleStaff}
	store := &stubEmployeeStore{employees: map[string]*domain.Employee{"emp-1": employee}}

	token, _, err := tm.GenerateToken(employee)
	require.NoError(t, err)

	stamp := time.Now().Add(time.Minute)
	app := newMiddlewareTestApp(NewAuthMiddleware(tm, store, &stubRevoker{stamp: &stamp}))
	require.Equal(t, http.StatusUnauthorized, protectedStatus(t, app, token))
}

func TestMiddlewareAcceptsTokenIssuedAfterPasswordChange(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	employee := &domain.Employee{ID: "emp-1", Email: "ada@example.com", Role: domain.EmployeeRoleStaff}
	store := &stubEmployeeStore{employees: map[string]*domain.Employee{"emp-1": employee}}

	stamp := time.Now().Add(-time.Hour)
	app := newMiddlewareTestApp(NewAuthMiddleware(tm, store, &stubRevoker{stamp: &stamp}))

	token, _, err := tm.GenerateToken(employee)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, protectedStatus(t, app, token))
}

// When the stamp store is down the revocation check is skipped and the
// token stays valid until its normal expiry.
func TestMiddlewareHonorsTokenWhenStampStoreDown(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	employee := &domain.Employee{ID: "emp-1", Email: "ada@example.com", Role: domain.EmployeeRoleStaff}
	store := &stubEmployeeStore{employees: map[string]*domain.Employee{"emp-1": employee}}

	revoker := &stubRevoker{err: errors.New("connection refused")}
	app := newMiddlewareTestApp(NewAuthMiddleware(tm, store, revoker))

	token, _, err := tm.GenerateToken(employee)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, protectedStatus(t, app, token))
}
