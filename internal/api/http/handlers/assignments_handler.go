package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/repository"
	"github.com/spec-kit/asset-service/internal/service"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

// AssignmentsHandler manages assignment endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
	now         func() time.Time
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService, now: time.Now}
}

// Create handles POST /admin/assignments.
func (h *AssignmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID == "" || req.AssetID == "" {
		return apperrors.NewValidationError("employeeId and assetId required", nil)
	}
	assignedFrom, err := parseDate(req.AssignedFrom)
	if err != nil {
		return apperrors.NewValidationError("assignedFrom must be a YYYY-MM-DD date", nil)
	}
	if assignedFrom.After(h.now()) {
		return apperrors.NewValidationError("assignedFrom cannot be in the future", nil)
	}

	actor := actorFromContext(c)
	record, err := h.assignments.Create(c.Context(), actor, service.AssignmentCreateInput{
		EmployeeID:   req.EmployeeID,
		AssetID:      req.AssetID,
		AssignedFrom: assignedFrom,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(assignmentResponse(record))
}

// End handles PUT /admin/assignments/:id/end.
func (h *AssignmentsHandler) End(c *fiber.Ctx) error {
	var req dto.EndAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	assignedUntil, err := parseDate(req.AssignedUntil)
	if err != nil {
		return apperrors.NewValidationError("assignedUntil must be a YYYY-MM-DD date", nil)
	}

	actor := actorFromContext(c)
	record, err := h.assignments.End(c.Context(), actor, c.Params("id"), assignedUntil)
	if err != nil {
		return err
	}
	return c.JSON(assignmentResponse(record))
}

// List handles GET /admin/assignments.
func (h *AssignmentsHandler) List(c *fiber.Ctx) error {
	page := parsePageQuery(c)
	filter := repository.AssignmentFilter{
		Active:   parseBoolPtr(c.Query("isActive")),
		SortBy:   page.SortBy,
		SortDesc: page.SortDesc,
		Limit:    page.Size,
		Offset:   page.Page * page.Size,
	}
	if employeeID := c.Query("employeeId"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if assetID := c.Query("assetId"); assetID != "" {
		filter.AssetID = &assetID
	}

	records, total, err := h.assignments.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPagedResponse(assignmentResponses(records), page.Page, page.Size, total))
}

// MyHistory handles GET /employee/assignments: the caller's full
// assignment history derived from the authenticated identity.
func (h *AssignmentsHandler) MyHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	records, err := h.assignments.HistoryByEmployeeEmail(c.Context(), principal.Employee.Email)
	if err != nil {
		return err
	}
	return c.JSON(assignmentResponses(records))
}
