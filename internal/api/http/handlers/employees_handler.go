package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/service"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

// EmployeesHandler manages admin employee endpoints.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employeeService *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employeeService}
}

// Create handles POST /admin/employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.FullName) == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("fullName, email, password required", nil)
	}
	if !req.Role.Valid() {
		return apperrors.NewValidationError("role must be ADMIN or STAFF", nil)
	}
	hiredFrom, err := parseDate(req.HiredFrom)
	if err != nil {
		return apperrors.NewValidationError("hiredFrom must be a YYYY-MM-DD date", nil)
	}
	input := service.EmployeeCreateInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		HiredFrom: hiredFrom,
	}
	if req.HiredUntil != nil {
		hiredUntil, err := parseDate(*req.HiredUntil)
		if err != nil {
			return apperrors.NewValidationError("hiredUntil must be a YYYY-MM-DD date", nil)
		}
		input.HiredUntil = &hiredUntil
	}

	actor := actorFromContext(c)
	employee, err := h.employees.Create(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(employeeResponse(employee))
}

// List handles GET /admin/employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	employees, err := h.employees.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, employeeResponse(&employees[i]))
	}
	return c.JSON(items)
}

// GetByID handles GET /admin/employees/:id.
func (h *EmployeesHandler) GetByID(c *fiber.Ctx) error {
	employee, err := h.employees.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(employeeResponse(employee))
}
