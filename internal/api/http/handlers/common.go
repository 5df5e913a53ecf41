package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/repository"
	"github.com/spec-kit/asset-service/internal/service"
)

func actorFromContext(c *fiber.Ctx) *domain.Employee {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.Employee
}

const dateLayout = "2006-01-02"

func parseDate(val string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(val))
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func parseBoolPtr(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

// pageQuery captures common paging/sorting query parameters.
type pageQuery struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

func parsePageQuery(c *fiber.Ctx) pageQuery {
	page := parseInt(c.Query("page"), 0)
	size := parseInt(c.Query("size"), 20)
	if size <= 0 {
		size = 20
	}
	return pageQuery{
		Page:     page,
		Size:     size,
		SortBy:   c.Query("sortBy"),
		SortDesc: strings.EqualFold(c.Query("sortDir"), "desc"),
	}
}

func assignmentResponse(record *repository.AssignmentRecord) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:               record.ID,
		AssetID:          record.AssetID,
		AssetType:        record.AssetType,
		Vendor:           record.Vendor,
		Model:            record.Model,
		SerialNumber:     record.SerialNumber,
		EmployeeID:       record.EmployeeID,
		EmployeeFullName: record.EmployeeFullName,
		AssignedFrom:     formatDate(record.AssignedFrom),
		AssignedUntil:    formatDatePtr(record.AssignedUntil),
		IsActive:         record.IsOpen(),
	}
}

func assignmentResponses(records []repository.AssignmentRecord) []dto.AssignmentResponse {
	items := make([]dto.AssignmentResponse, 0, len(records))
	for i := range records {
		items = append(items, assignmentResponse(&records[i]))
	}
	return items
}

func assetResponse(detail *service.AssetDetail) dto.AssetResponse {
	resp := dto.AssetResponse{
		ID:           detail.Asset.ID,
		AssetType:    detail.Asset.AssetType,
		Vendor:       detail.Asset.Vendor,
		Model:        detail.Asset.Model,
		SerialNumber: detail.Asset.SerialNumber,
		IsActive:     detail.Asset.IsActive,
	}
	if detail.Holder != nil {
		resp.AssignedEmployeeID = &detail.Holder.EmployeeID
		resp.AssignedEmployeeName = &detail.Holder.FullName
		resp.AssignedEmployeeMail = &detail.Holder.Email
	}
	return resp
}

func employeeResponse(employee *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:         employee.ID,
		FullName:   employee.FullName,
		Email:      employee.Email,
		Role:       employee.Role,
		HiredFrom:  formatDate(employee.HiredFrom),
		HiredUntil: formatDatePtr(employee.HiredUntil),
	}
}
