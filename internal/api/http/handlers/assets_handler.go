package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
	"github.com/spec-kit/asset-service/internal/service"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

// AssetsHandler manages asset endpoints.
type AssetsHandler struct {
	assets      *service.AssetService
	assignments *service.AssignmentService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService, assignmentService *service.AssignmentService) *AssetsHandler {
	return &AssetsHandler{assets: assetService, assignments: assignmentService}
}

// Create handles POST /admin/assets.
func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.AssetType.Valid() {
		return apperrors.NewValidationError("assetType is not a known type", nil)
	}
	if strings.TrimSpace(req.Vendor) == "" || strings.TrimSpace(req.Model) == "" || strings.TrimSpace(req.SerialNumber) == "" {
		return apperrors.NewValidationError("vendor, model, serialNumber required", nil)
	}

	actor := actorFromContext(c)
	asset, err := h.assets.Create(c.Context(), actor, service.AssetCreateInput{
		AssetType:    req.AssetType,
		Vendor:       req.Vendor,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(assetResponse(&service.AssetDetail{Asset: *asset}))
}

// List handles GET /admin/assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	page := parsePageQuery(c)
	filter := repository.AssetFilter{
		IsActive: parseBoolPtr(c.Query("isActive")),
		Assigned: parseBoolPtr(c.Query("isAssigned")),
		SortBy:   page.SortBy,
		SortDesc: page.SortDesc,
		Limit:    page.Size,
		Offset:   page.Page * page.Size,
	}
	if typeStr := c.Query("assetType"); typeStr != "" {
		assetType := domain.AssetType(strings.ToUpper(typeStr))
		if !assetType.Valid() {
			return apperrors.NewValidationError("assetType is not a known type", nil)
		}
		filter.AssetType = &assetType
	}

	details, total, err := h.assets.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(details))
	for i := range details {
		items = append(items, assetResponse(&details[i]))
	}
	return c.JSON(dto.NewPagedResponse(items, page.Page, page.Size, total))
}

// GetByID handles GET /admin/assets/:id.
func (h *AssetsHandler) GetByID(c *fiber.Ctx) error {
	detail, err := h.assets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(assetResponse(detail))
}

// Deactivate handles PUT /admin/assets/:id/deactivate.
func (h *AssetsHandler) Deactivate(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if err := h.assets.Deactivate(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MyActiveAssets handles GET /employee/assets: the caller's
// currently-open assignments projected into an asset-centric view.
func (h *AssetsHandler) MyActiveAssets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	records, err := h.assignments.OpenAssetsByEmployeeEmail(c.Context(), principal.Employee.Email)
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeAssetResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.EmployeeAssetResponse{
			AssetType:    record.AssetType,
			Vendor:       record.Vendor,
			Model:        record.Model,
			SerialNumber: record.SerialNumber,
			AssignedFrom: formatDate(record.AssignedFrom),
		})
	}
	return c.JSON(items)
}
